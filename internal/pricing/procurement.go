package pricing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequiredProduct is one line of a procurement request: a product name
// to search for and how many units are needed.
type RequiredProduct struct {
	Name     string
	Quantity float64
}

// ProcurementRecommendation is one generated buying recommendation.
type ProcurementRecommendation struct {
	ProductID           uuid.UUID
	ProductName         string
	Supplier            string
	Price               float64
	Alternatives        []NormalizedPrice
	Savings             float64
	Confidence          float64
	Reasoning           string
	ExpiresAt           time.Time
}

// GenerateProcurementRecommendations matches each required product to
// its best catalog hit, picks the most competitive supplier within
// budgetLimit (if any), and explains the choice. Items with no catalog
// match, no price analysis, or no supplier within the remaining budget
// are silently skipped — a best-effort report, never an error.
func (e *Engine) GenerateProcurementRecommendations(ctx context.Context, required []RequiredProduct, budgetLimit *float64) ([]ProcurementRecommendation, error) {
	e.log.Info("generating procurement recommendations", zap.Int("item_count", len(required)))

	var recommendations []ProcurementRecommendation
	var totalCost float64

	for _, item := range required {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		candidates, err := e.store.SearchProducts(ctx, item.Name, "", 5)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			e.log.Warn("no products found for required item", zap.String("name", item.Name))
			continue
		}
		bestMatch := candidates[0]

		analysis, err := e.Analyze(ctx, bestMatch.ProductID)
		if err != nil {
			return nil, err
		}
		if analysis == nil {
			continue
		}

		recommendedCost := analysis.BestPrice.OriginalPrice * quantity
		chosen := analysis.BestPrice

		if budgetLimit != nil && totalCost+recommendedCost > *budgetLimit {
			remaining := *budgetLimit - totalCost
			maxUnitPrice := remaining / quantity

			var affordable []NormalizedPrice
			for _, s := range analysis.CompetitiveSuppliers {
				if s.OriginalPrice <= maxUnitPrice {
					affordable = append(affordable, s)
				}
			}
			if len(affordable) == 0 {
				e.log.Warn("required item exceeds budget limit", zap.String("name", item.Name))
				continue
			}
			chosen = affordable[0]
			recommendedCost = chosen.OriginalPrice * quantity
		}

		var alternatives []NormalizedPrice
		for _, s := range analysis.CompetitiveSuppliers {
			if s.Supplier == chosen.Supplier {
				continue
			}
			alternatives = append(alternatives, s)
			if len(alternatives) == 3 {
				break
			}
		}

		recommendations = append(recommendations, ProcurementRecommendation{
			ProductID:    bestMatch.ProductID,
			ProductName:  bestMatch.StandardName,
			Supplier:     chosen.Supplier,
			Price:        chosen.OriginalPrice,
			Alternatives: alternatives,
			Savings:      analysis.SavingsPotential,
			Confidence:   DealConfidence(analysis),
			Reasoning:    recommendationReasoning(analysis),
			ExpiresAt:    time.Now().UTC().AddDate(0, 0, recommendationTTLDays(e.cfg.RecommendationTTLDays)),
		})
		totalCost += recommendedCost
	}

	e.log.Info("generated procurement recommendations", zap.Int("count", len(recommendations)))
	return recommendations, nil
}

func recommendationTTLDays(configured int) int {
	if configured > 0 {
		return configured
	}
	return 7
}

// recommendationReasoning composes a human-readable explanation from
// whichever factors are actually favorable, falling back to a generic
// line when none apply.
func recommendationReasoning(a *PriceAnalysis) string {
	var reasons []string

	if a.SavingsPotential > 0 {
		reasons = append(reasons, "savings vs the worst offer")
	}
	if a.SuppliersCount > 3 {
		reasons = append(reasons, "wide supplier choice")
	}
	switch a.PriceTrend {
	case "decreasing":
		reasons = append(reasons, "prices are falling")
	case "stable":
		reasons = append(reasons, "prices are stable")
	case "increasing":
		reasons = append(reasons, "prices are rising, buy now")
	}

	if len(reasons) == 0 {
		return "best available offer"
	}
	return strings.Join(reasons, "; ")
}

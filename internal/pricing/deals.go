package pricing

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BestDeal is one row of the best-deals report.
type BestDeal struct {
	ProductID        uuid.UUID
	ProductName      string
	Brand            string
	Category         string
	BestPrice        float64
	WorstPrice       float64
	BestSupplier     string
	SavingsPercent   float64
	SuppliersCount   int
	PriceTrend       string
	ConfidenceScore  float64
}

// BestDealsReport enumerates catalog items whose savings clear
// minSavings, attaches a trend and confidence score to each, and
// returns the top limit sorted by savings descending.
func (e *Engine) BestDealsReport(ctx context.Context, category string, minSavings float64, limit int) ([]BestDeal, error) {
	e.log.Info("generating best deals report", zap.String("category", category))

	items, err := e.store.GetUnifiedCatalog(ctx, category, 1000)
	if err != nil {
		return nil, err
	}

	var deals []BestDeal
	for _, item := range items {
		if item.SavingsPercent < minSavings {
			continue
		}
		analysis, err := e.Analyze(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if analysis == nil {
			continue
		}
		deals = append(deals, BestDeal{
			ProductID:       item.ProductID,
			ProductName:     item.StandardName,
			Brand:           item.Brand,
			Category:        item.Category,
			BestPrice:       item.BestPrice,
			WorstPrice:      item.WorstPrice,
			BestSupplier:    item.BestSupplier,
			SavingsPercent:  item.SavingsPercent,
			SuppliersCount:  item.SuppliersCount,
			PriceTrend:      analysis.PriceTrend,
			ConfidenceScore: DealConfidence(analysis),
		})
	}

	sort.SliceStable(deals, func(i, j int) bool { return deals[i].SavingsPercent > deals[j].SavingsPercent })
	if limit > 0 && len(deals) > limit {
		deals = deals[:limit]
	}

	e.log.Info("best deals report complete", zap.Int("count", len(deals)), zap.Float64("min_savings", minSavings))
	return deals, nil
}

// defaultMinDealSavings is the fallback minimum savings percentage
// used by callers (e.g. the market overview) that don't specify one.
func (e *Engine) defaultMinDealSavings() float64 {
	if e.cfg.MinDealSavingsPercent > 0 {
		return e.cfg.MinDealSavingsPercent
	}
	return 5.0
}

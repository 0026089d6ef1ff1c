// Package pricing implements the price comparison engine:
// per-product price analysis, supplier competitiveness, procurement
// recommendations, and market-wide trend summaries. Every operation
// reads through a catalog.Store and returns plain data, never an error
// for missing data ("the matching and pricing engines never
// raise for missing data; they return empty or null").
package pricing

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/internal/unitalgebra"
)

// NormalizedPrice is one supplier's quote, rebased to the product's
// base unit so prices in different pack sizes can be compared
// directly.
type NormalizedPrice struct {
	Supplier        string
	OriginalPrice   float64
	NormalizedPrice float64
	PriceDate       time.Time
	Confidence      float64
}

// PriceAnalysis is analyze(product_id)'s result.
type PriceAnalysis struct {
	ProductID            uuid.UUID
	ProductName          string
	BestPrice            NormalizedPrice
	WorstPrice           NormalizedPrice
	AveragePrice         float64
	MedianPrice          float64
	PriceRange           float64
	SavingsPotential     float64
	SuppliersCount       int
	PriceTrend           string
	CompetitiveSuppliers []NormalizedPrice
	LastUpdated          time.Time
}

// Engine computes price analyses, supplier performance, procurement
// recommendations, and market trends over a catalog.Store.
type Engine struct {
	store catalog.Store
	cfg   config.PricingConfig
	log   *zap.Logger
}

// New builds an Engine over store using cfg's windows and thresholds.
// A nil logger falls back to a no-op logger.
func New(store catalog.Store, cfg config.PricingConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, cfg: cfg, log: log}
}

// Analyze loads productID's current prices, normalizes them to a
// common base unit, and derives the full price comparison summary. It
// returns (nil, nil) — not an error — when the product doesn't exist,
// has no current prices, or its unit can't be normalized.
func (e *Engine) Analyze(ctx context.Context, productID uuid.UUID) (*PriceAnalysis, error) {
	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		if kind, ok := errs.KindOf(err); ok && kind == errs.NotFound {
			return nil, nil
		}
		return nil, err
	}

	prices, err := e.store.GetCurrentPrices(ctx, productID, catalog.DefaultPriceWindow)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, nil
	}

	if product.Size == nil || product.Unit == "" {
		return nil, nil
	}
	size, _ := product.Size.Float64()
	baseSize, ok := unitalgebra.ToBaseUnits(size, product.Unit)
	if !ok || baseSize == 0 {
		e.log.Debug("unit normalization failed", zap.String("unit", product.Unit))
		return nil, nil
	}

	normalized := make([]NormalizedPrice, 0, len(prices))
	for _, p := range prices {
		original, _ := p.Price.Float64()
		confidence, _ := p.ConfidenceScore.Float64()
		if confidence == 0 {
			confidence = 0.9
		}
		normalized = append(normalized, NormalizedPrice{
			Supplier:        p.SupplierName,
			OriginalPrice:   original,
			NormalizedPrice: original / baseSize,
			PriceDate:       p.PriceDate,
			Confidence:      confidence,
		})
	}

	sort.SliceStable(normalized, func(i, j int) bool { return normalized[i].NormalizedPrice < normalized[j].NormalizedPrice })

	best := normalized[0]
	worst := normalized[len(normalized)-1]

	var sum float64
	for _, n := range normalized {
		sum += n.NormalizedPrice
	}
	average := sum / float64(len(normalized))
	median := normalized[len(normalized)/2].NormalizedPrice

	var savings float64
	if worst.NormalizedPrice > best.NormalizedPrice {
		savings = (worst.NormalizedPrice - best.NormalizedPrice) / worst.NormalizedPrice * 100
	}

	trend, err := e.priceTrend(ctx, productID)
	if err != nil {
		return nil, err
	}

	competitive := normalized
	if len(competitive) > 3 {
		competitive = competitive[:3]
	}

	return &PriceAnalysis{
		ProductID:            productID,
		ProductName:          product.StandardName,
		BestPrice:            best,
		WorstPrice:           worst,
		AveragePrice:         average,
		MedianPrice:          median,
		PriceRange:           worst.NormalizedPrice - best.NormalizedPrice,
		SavingsPotential:     savings,
		SuppliersCount:       len(normalized),
		PriceTrend:           trend,
		CompetitiveSuppliers: competitive,
		LastUpdated:          time.Now().UTC(),
	}, nil
}

// priceTrend classifies a product's recent price movement from its
// PriceHistory: fewer than two samples, or a flat average, is
// "stable"; >2% average change is "increasing"; <-2% is "decreasing".
func (e *Engine) priceTrend(ctx context.Context, productID uuid.UUID) (string, error) {
	days := e.cfg.TrendAnalysisDays
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	history, err := e.store.GetPriceHistory(ctx, productID, since)
	if err != nil {
		return "", err
	}
	if len(history) < 2 {
		return "stable", nil
	}

	var total float64
	var count int
	for _, h := range history {
		if h.ChangePercentage == nil {
			continue
		}
		pct, _ := h.ChangePercentage.Float64()
		total += pct
		count++
	}
	if count == 0 {
		return "stable", nil
	}

	avg := total / float64(count)
	switch {
	case avg > 2:
		return "increasing", nil
	case avg < -2:
		return "decreasing", nil
	default:
		return "stable", nil
	}
}

// DealConfidence weights supplier count, savings size, and trend
// stability into a single [0,1] score. Exported so callers
// outside this package (the catalog manager) can score a PriceAnalysis
// without re-deriving the formula.
func DealConfidence(a *PriceAnalysis) float64 {
	supplierFactor := float64(a.SuppliersCount) / 5.0
	if supplierFactor > 1.0 {
		supplierFactor = 1.0
	}

	var savingsFactor float64
	if a.SavingsPotential <= 50 {
		savingsFactor = a.SavingsPotential / 50.0
	} else {
		savingsFactor = 1.0 - (a.SavingsPotential-50)/100.0
		if savingsFactor < 0.5 {
			savingsFactor = 0.5
		}
	}

	trendFactor := 0.7
	if a.PriceTrend == "stable" || a.PriceTrend == "decreasing" {
		trendFactor = 1.0
	}

	score := supplierFactor*0.3 + savingsFactor*0.4 + trendFactor*0.3
	if score > 1.0 {
		score = 1.0
	}
	return score
}

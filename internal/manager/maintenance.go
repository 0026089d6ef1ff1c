package manager

import (
	"context"

	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
)

// UpdateStats is update_catalog_prices's per-run counters.
type UpdateStats struct {
	ProductsChecked int
	PricesUpdated   int
	NewBestDeals    int
	Errors          int
}

// UpdateCatalogPrices re-evaluates every active product's price
// analysis so trend and best/worst-price data stays current. A single
// product's failure is logged and counted, never fatal to the run; the
// caller's ctx can cancel mid-pass, in which case the stats gathered
// so far are returned alongside ctx.Err().
func (m *Manager) UpdateCatalogPrices(ctx context.Context) (UpdateStats, error) {
	var stats UpdateStats
	m.log.Info("starting catalog price update")

	products, err := m.store.SearchProducts(ctx, "", "", 10000)
	if err != nil {
		return stats, err
	}

	for _, product := range products {
		select {
		case <-ctx.Done():
			m.log.Warn("catalog price update cancelled", zap.Int("products_checked", stats.ProductsChecked))
			return stats, ctx.Err()
		default:
		}

		prices, err := m.store.GetCurrentPrices(ctx, product.ProductID, catalog.DefaultPriceWindow)
		if err != nil {
			m.log.Error("error updating prices for product", zap.String("product_id", product.ProductID.String()), zap.Error(err))
			stats.Errors++
			continue
		}

		if len(prices) > 0 {
			analysis, err := m.pricing.Analyze(ctx, product.ProductID)
			if err != nil {
				m.log.Error("error analyzing product", zap.String("product_id", product.ProductID.String()), zap.Error(err))
				stats.Errors++
				continue
			}
			if analysis != nil && analysis.SavingsPotential > 0 {
				stats.NewBestDeals++
			}
			stats.PricesUpdated += len(prices)
		}

		stats.ProductsChecked++
		if stats.ProductsChecked%100 == 0 {
			m.log.Info("catalog price update progress", zap.Int("checked", stats.ProductsChecked))
		}
	}

	m.log.Info("catalog update completed",
		zap.Int("products_checked", stats.ProductsChecked),
		zap.Int("prices_updated", stats.PricesUpdated),
		zap.Int("errors", stats.Errors))
	return stats, nil
}

// MergeStats is merge_duplicates's per-run counters.
type MergeStats struct {
	MatchesFound         int
	AutoMerged           int
	ManualReviewRequired int
	Errors               int
}

// MergeDuplicates consumes the matching engine's auto-merge
// suggestions at or above autoThreshold (defaulting to 0.95) and
// invokes Store.MergeProducts for every "high" confidence pair;
// anything less certain is routed to manual review instead of merged.
func (m *Manager) MergeDuplicates(ctx context.Context, autoThreshold float64) (MergeStats, error) {
	if autoThreshold <= 0 {
		autoThreshold = 0.95
	}
	var stats MergeStats
	m.log.Info("starting duplicate product merge", zap.Float64("threshold", autoThreshold))

	suggestions, err := m.matching.SuggestAutoMerges(ctx, autoThreshold)
	if err != nil {
		return stats, err
	}

	for _, suggestion := range suggestions {
		stats.MatchesFound++

		if suggestion.ConfidenceLevel != "high" {
			stats.ManualReviewRequired++
			continue
		}

		if err := m.store.MergeProducts(ctx, suggestion.ProductB.ProductID, suggestion.ProductA.ProductID); err != nil {
			m.log.Error("error merging products", zap.Error(err))
			stats.Errors++
			stats.ManualReviewRequired++
			continue
		}
		stats.AutoMerged++
	}

	m.log.Info("duplicate merge completed",
		zap.Int("matches_found", stats.MatchesFound),
		zap.Int("auto_merged", stats.AutoMerged),
		zap.Int("manual_review_required", stats.ManualReviewRequired))
	return stats, nil
}

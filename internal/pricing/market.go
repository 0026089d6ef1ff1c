package pricing

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
)

// CategorySavings summarizes one category's savings potential across
// the catalog.
type CategorySavings struct {
	Category       string
	AverageSavings float64
	MaxSavings     float64
	ProductsCount  int
}

// MarketTrendSummary is the catalog-wide trend view over the last 30
// days of PriceHistory.
type MarketTrendSummary struct {
	OverallTrend      string
	PriceChangesCount int64
	AverageChange     float64
	PriceIncreases    int64
	PriceDecreases    int64
	Volatility        string
}

// MarketOverview is get_market_overview's result.
type MarketOverview struct {
	Statistics          catalog.SystemStatistics
	TopSavingsCategories []CategorySavings
	TopDeals            []BestDeal
	Trends              MarketTrendSummary
	GeneratedAt         time.Time
}

// GetMarketOverview assembles the catalog-wide dashboard: headline
// counters, the categories with the best average savings, the top
// current deals, and the 30-day trend summary.
func (e *Engine) GetMarketOverview(ctx context.Context) (*MarketOverview, error) {
	e.log.Info("generating market overview")

	stats, err := e.store.GetSystemStatistics(ctx)
	if err != nil {
		return nil, err
	}

	items, err := e.store.GetUnifiedCatalog(ctx, "", 1000)
	if err != nil {
		return nil, err
	}

	savingsByCategory := make(map[string][]float64)
	for _, item := range items {
		if item.SavingsPercent > 0 {
			savingsByCategory[item.Category] = append(savingsByCategory[item.Category], item.SavingsPercent)
		}
	}

	categories := make([]CategorySavings, 0, len(savingsByCategory))
	for category, savingsList := range savingsByCategory {
		var sum, max float64
		for _, s := range savingsList {
			sum += s
			if s > max {
				max = s
			}
		}
		categories = append(categories, CategorySavings{
			Category:       category,
			AverageSavings: sum / float64(len(savingsList)),
			MaxSavings:     max,
			ProductsCount:  len(savingsList),
		})
	}
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].AverageSavings > categories[j].AverageSavings })
	if len(categories) > 5 {
		categories = categories[:5]
	}

	topDeals, err := e.BestDealsReport(ctx, "", e.defaultMinDealSavings(), 10)
	if err != nil {
		return nil, err
	}

	trends, err := e.marketTrends(ctx)
	if err != nil {
		return nil, err
	}

	return &MarketOverview{
		Statistics:           stats,
		TopSavingsCategories: categories,
		TopDeals:             topDeals,
		Trends:               trends,
		GeneratedAt:          time.Now().UTC(),
	}, nil
}

// marketTrends summarizes every PriceHistory row over the last 30 days
// into a change count, average change, direction, and a count-based
// volatility bucket.
func (e *Engine) marketTrends(ctx context.Context) (MarketTrendSummary, error) {
	trends, err := e.store.GetMarketTrends(ctx, 30*24*time.Hour)
	if err != nil {
		return MarketTrendSummary{}, err
	}

	if trends.TotalChanges == 0 {
		return MarketTrendSummary{OverallTrend: "stable", Volatility: "low"}, nil
	}

	overall := "stable"
	switch {
	case trends.AverageChange > 2:
		overall = "increasing"
	case trends.AverageChange < -2:
		overall = "decreasing"
	}

	volatility := "low"
	switch {
	case trends.TotalChanges > 100:
		volatility = "high"
	case trends.TotalChanges > 50:
		volatility = "medium"
	}

	e.log.Debug("market trends computed", zap.Int64("total_changes", trends.TotalChanges), zap.String("volatility", volatility))

	return MarketTrendSummary{
		OverallTrend:      overall,
		PriceChangesCount: trends.TotalChanges,
		AverageChange:     trends.AverageChange,
		PriceIncreases:    trends.PriceIncreases,
		PriceDecreases:    trends.PriceDecreases,
		Volatility:        volatility,
	}, nil
}

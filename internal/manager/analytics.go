package manager

import (
	"context"
	"sort"
)

// CategoryStats is one category's slice of get_category_analysis.
type CategoryStats struct {
	Category               string
	TotalProducts          int
	AverageSavings         float64
	MaxSavings             float64
	AverageSuppliersPerItem float64
	TopDeals               []CategoryDeal
}

// CategoryDeal is one row of a CategoryStats.TopDeals list.
type CategoryDeal struct {
	ProductName    string
	Brand          string
	SavingsPercent float64
	BestSupplier   string
}

// CategoryAnalysis groups the full catalog by category and computes
// per-category aggregates plus each category's top-5 deals.
func (m *Manager) CategoryAnalysis(ctx context.Context) (map[string]CategoryStats, error) {
	items, err := m.GenerateCatalog(ctx, "", 0, true)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]CatalogItem)
	for _, item := range items {
		byCategory[item.Category] = append(byCategory[item.Category], item)
	}

	analysis := make(map[string]CategoryStats, len(byCategory))
	for category, categoryItems := range byCategory {
		var savingsSum, maxSavings, suppliersSum float64
		for _, item := range categoryItems {
			savingsSum += item.SavingsPercentage
			if item.SavingsPercentage > maxSavings {
				maxSavings = item.SavingsPercentage
			}
			suppliersSum += float64(item.SuppliersCount)
		}
		count := float64(len(categoryItems))

		top := append([]CatalogItem(nil), categoryItems...)
		sort.SliceStable(top, func(i, j int) bool { return top[i].SavingsPercentage > top[j].SavingsPercentage })
		if len(top) > 5 {
			top = top[:5]
		}
		deals := make([]CategoryDeal, 0, len(top))
		for _, item := range top {
			deals = append(deals, CategoryDeal{
				ProductName:    item.Name,
				Brand:          item.Brand,
				SavingsPercent: item.SavingsPercentage,
				BestSupplier:   item.BestSupplier,
			})
		}

		analysis[category] = CategoryStats{
			Category:                category,
			TotalProducts:           len(categoryItems),
			AverageSavings:          savingsSum / count,
			MaxSavings:              maxSavings,
			AverageSuppliersPerItem: suppliersSum / count,
			TopDeals:                deals,
		}
	}
	return analysis, nil
}

// SupplierShare is one supplier's row of get_supplier_market_share.
type SupplierShare struct {
	SupplierName        string
	BestDealsCount      int
	MarketSharePercent  float64
	CategoriesCount     int
	Categories          []string
	AverageSavingsGiven float64
}

// SupplierMarketShare counts how often each supplier holds the best
// price across the catalog and turns that into a market-share
// percentage, category reach, and average savings granted, sorted by
// market share descending.
func (m *Manager) SupplierMarketShare(ctx context.Context) ([]SupplierShare, error) {
	items, err := m.GenerateCatalog(ctx, "", 0, true)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	type stats struct {
		count      int
		categories map[string]struct{}
		savings    []float64
	}
	bySupplier := make(map[string]*stats)
	for _, item := range items {
		s, ok := bySupplier[item.BestSupplier]
		if !ok {
			s = &stats{categories: make(map[string]struct{})}
			bySupplier[item.BestSupplier] = s
		}
		s.count++
		s.categories[item.Category] = struct{}{}
		s.savings = append(s.savings, item.SavingsPercentage)
	}

	total := float64(len(items))
	shares := make([]SupplierShare, 0, len(bySupplier))
	for supplier, s := range bySupplier {
		var savingsSum float64
		for _, v := range s.savings {
			savingsSum += v
		}
		avgSavings := 0.0
		if len(s.savings) > 0 {
			avgSavings = savingsSum / float64(len(s.savings))
		}
		categories := make([]string, 0, len(s.categories))
		for c := range s.categories {
			categories = append(categories, c)
		}
		sort.Strings(categories)

		shares = append(shares, SupplierShare{
			SupplierName:        supplier,
			BestDealsCount:      s.count,
			MarketSharePercent:  float64(s.count) / total * 100,
			CategoriesCount:     len(categories),
			Categories:          categories,
			AverageSavingsGiven: avgSavings,
		})
	}

	sort.SliceStable(shares, func(i, j int) bool { return shares[i].MarketSharePercent > shares[j].MarketSharePercent })
	return shares, nil
}

package manager

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/badno/monito/internal/pricing"
)

// CatalogStats is get_catalog_statistics's summary over the full
// catalog.
type CatalogStats struct {
	TotalProducts                 int
	TotalSuppliers                int
	CategoriesCount                int
	AverageSavings                 float64
	MaxSavings                     float64
	ProductsWithMultipleSuppliers  int
	LastUpdate                     time.Time
}

// CatalogStatistics computes aggregate counters over the unfiltered
// catalog: unique best-price suppliers, unique categories, and the
// average/max savings across products that actually have any.
func (m *Manager) CatalogStatistics(ctx context.Context) (CatalogStats, error) {
	m.log.Info("calculating catalog statistics")

	items, err := m.GenerateCatalog(ctx, "", 0, true)
	if err != nil {
		return CatalogStats{}, err
	}
	if len(items) == 0 {
		return CatalogStats{LastUpdate: time.Now().UTC()}, nil
	}

	suppliers := make(map[string]struct{})
	categories := make(map[string]struct{})
	var savingsSum, maxSavings float64
	var savingsCount, multiSupplier int
	for _, item := range items {
		suppliers[item.BestSupplier] = struct{}{}
		categories[item.Category] = struct{}{}
		if item.SavingsPercentage > 0 {
			savingsSum += item.SavingsPercentage
			savingsCount++
			if item.SavingsPercentage > maxSavings {
				maxSavings = item.SavingsPercentage
			}
		}
		if item.SuppliersCount > 1 {
			multiSupplier++
		}
	}

	var avgSavings float64
	if savingsCount > 0 {
		avgSavings = savingsSum / float64(savingsCount)
	}

	return CatalogStats{
		TotalProducts:                 len(items),
		TotalSuppliers:                len(suppliers),
		CategoriesCount:               len(categories),
		AverageSavings:                avgSavings,
		MaxSavings:                    maxSavings,
		ProductsWithMultipleSuppliers: multiSupplier,
		LastUpdate:                    time.Now().UTC(),
	}, nil
}

// CatalogExport is export_catalog_to_dict's serialization surface: the
// full catalog plus generation metadata, ready to hand to an API or
// bot layer.
type CatalogExport struct {
	GeneratedAt     time.Time
	CategoryFilter  string
	TotalItems      int
	Statistics      CatalogStats
	Catalog         []CatalogItem
}

// ExportCatalog assembles the catalog plus summary statistics into a
// single serializable value.
func (m *Manager) ExportCatalog(ctx context.Context, category string) (*CatalogExport, error) {
	items, err := m.GenerateCatalog(ctx, category, 0, true)
	if err != nil {
		return nil, err
	}
	stats, err := m.CatalogStatistics(ctx)
	if err != nil {
		return nil, err
	}

	return &CatalogExport{
		GeneratedAt:    time.Now().UTC(),
		CategoryFilter: category,
		TotalItems:     len(items),
		Statistics:     stats,
		Catalog:        items,
	}, nil
}

// ProcurementReport is generate_procurement_report's output: the
// pricing engine's per-item recommendations plus roll-up metadata.
type ProcurementReport struct {
	GeneratedAt               time.Time
	ProductsRequested         int
	RecommendationsGenerated  int
	BudgetLimit               *float64
	TotalEstimatedCost        float64
	AverageSavingsPercentage  float64
	AverageConfidenceScore    float64
	Recommendations           []pricing.ProcurementRecommendation
}

// ProcurementReport turns the pricing engine's recommendations for
// required into a reporting surface with totals the caller doesn't
// have to recompute.
func (m *Manager) ProcurementReport(ctx context.Context, required []pricing.RequiredProduct, budgetLimit *float64) (*ProcurementReport, error) {
	m.log.Info("generating procurement report", zap.Int("products_requested", len(required)))

	recommendations, err := m.pricing.GenerateProcurementRecommendations(ctx, required, budgetLimit)
	if err != nil {
		return nil, err
	}

	var totalCost, totalSavings, totalConfidence float64
	for i, rec := range recommendations {
		quantity := 1.0
		if i < len(required) && required[i].Quantity > 0 {
			quantity = required[i].Quantity
		}
		totalCost += rec.Price * quantity
		totalSavings += rec.Savings
		totalConfidence += rec.Confidence
	}

	var avgSavings, avgConfidence float64
	if len(recommendations) > 0 {
		avgSavings = totalSavings / float64(len(recommendations))
		avgConfidence = totalConfidence / float64(len(recommendations))
	}

	return &ProcurementReport{
		GeneratedAt:              time.Now().UTC(),
		ProductsRequested:        len(required),
		RecommendationsGenerated: len(recommendations),
		BudgetLimit:              budgetLimit,
		TotalEstimatedCost:       totalCost,
		AverageSavingsPercentage: avgSavings,
		AverageConfidenceScore:   avgConfidence,
		Recommendations:          recommendations,
	}, nil
}

// Package manager implements the unified catalog manager:
// the composition layer that turns Store aggregates and pricing
// analysis into the catalog views, analytics, maintenance jobs, and
// reports external callers actually consume. It owns no storage or
// scoring logic of its own — every operation fans out to
// catalog.Store, matching.Engine, or pricing.Engine and assembles
// their results.
package manager

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/matching"
	"github.com/badno/monito/internal/pricing"
)

// CatalogItem is generate_catalog's per-product row.
type CatalogItem struct {
	ProductID         uuid.UUID
	Name              string
	Brand             string
	Category          string
	Size              *float64
	Unit              string
	BestPrice         float64
	BestSupplier      string
	WorstPrice        float64
	SuppliersCount    int
	SavingsPercentage float64
	PriceTrend        string
	ConfidenceScore   float64
	LastUpdated       time.Time
}

// Manager is the Unified Catalog Manager: it composes a catalog.Store
// with the matching and pricing engines.
type Manager struct {
	store    catalog.Store
	matching *matching.Engine
	pricing  *pricing.Engine
	log      *zap.Logger
}

// New builds a Manager over the given store and engines. A nil logger
// falls back to a no-op logger.
func New(store catalog.Store, matchingEngine *matching.Engine, pricingEngine *pricing.Engine, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{store: store, matching: matchingEngine, pricing: pricingEngine, log: log}
}

// GenerateCatalog builds one CatalogItem per product whose
// suppliers_count clears minSuppliers (0 or less means 2), optionally filtered by category, sorted by savings
// descending. Single-supplier products are included only when
// includeSingle is true. Products the pricing engine can't currently
// analyze are silently skipped, same as the original's "no price
// analysis, no catalog entry" rule.
func (m *Manager) GenerateCatalog(ctx context.Context, category string, minSuppliers int, includeSingle bool) ([]CatalogItem, error) {
	if minSuppliers <= 0 {
		minSuppliers = 2
	}
	m.log.Info("generating unified catalog", zap.String("category", category))

	raw, err := m.store.GetUnifiedCatalog(ctx, category, 5000)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(raw))
	for _, entry := range raw {
		if entry.SuppliersCount < minSuppliers {
			singleSupplierException := includeSingle && entry.SuppliersCount == 1
			if !singleSupplierException {
				continue
			}
		}

		analysis, err := m.pricing.Analyze(ctx, entry.ProductID)
		if err != nil {
			return nil, err
		}
		if analysis == nil {
			continue
		}

		brand := entry.Brand
		if brand == "" {
			brand = "Unknown"
		}
		unit := entry.Unit
		if unit == "" {
			unit = "pcs"
		}

		items = append(items, CatalogItem{
			ProductID:         entry.ProductID,
			Name:              entry.StandardName,
			Brand:             brand,
			Category:          entry.Category,
			Size:              entry.Size,
			Unit:              unit,
			BestPrice:         entry.BestPrice,
			BestSupplier:      entry.BestSupplier,
			WorstPrice:        entry.WorstPrice,
			SuppliersCount:    entry.SuppliersCount,
			SavingsPercentage: entry.SavingsPercent,
			PriceTrend:        analysis.PriceTrend,
			ConfidenceScore:   pricing.DealConfidence(analysis),
			LastUpdated:       time.Now().UTC(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].SavingsPercentage > items[j].SavingsPercentage })
	m.log.Info("generated catalog", zap.Int("items", len(items)))
	return items, nil
}

// TopDeals is a convenience wrapper over GenerateCatalog: the
// unfiltered catalog, kept only above minSavings, capped at limit.
func (m *Manager) TopDeals(ctx context.Context, limit int, minSavings float64) ([]CatalogItem, error) {
	catalogItems, err := m.GenerateCatalog(ctx, "", 0, true)
	if err != nil {
		return nil, err
	}

	var deals []CatalogItem
	for _, item := range catalogItems {
		if item.SavingsPercentage >= minSavings {
			deals = append(deals, item)
		}
	}
	sort.SliceStable(deals, func(i, j int) bool {
		if deals[i].SavingsPercentage != deals[j].SavingsPercentage {
			return deals[i].SavingsPercentage > deals[j].SavingsPercentage
		}
		return deals[i].ConfidenceScore > deals[j].ConfidenceScore
	})
	if limit > 0 && len(deals) > limit {
		deals = deals[:limit]
	}
	return deals, nil
}

// SearchCatalog finds products matching term, attaches their price
// analysis, and ranks hits by (savings, confidence) descending.
// Products with no recorded prices or no price analysis are skipped.
func (m *Manager) SearchCatalog(ctx context.Context, term, category string, limit int) ([]CatalogItem, error) {
	products, err := m.store.SearchProducts(ctx, term, category, limit)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(products))
	for _, product := range products {
		comparison, err := m.store.GetPriceComparisonForProduct(ctx, product.ProductID)
		if err != nil {
			return nil, err
		}
		if comparison == nil || len(comparison.Prices) == 0 {
			continue
		}

		analysis, err := m.pricing.Analyze(ctx, product.ProductID)
		if err != nil {
			return nil, err
		}
		if analysis == nil {
			continue
		}

		brand := product.Brand
		if brand == "" {
			brand = "Unknown"
		}
		unit := product.Unit
		if unit == "" {
			unit = "pcs"
		}
		var size *float64
		if product.Size != nil {
			f, _ := product.Size.Float64()
			size = &f
		}

		items = append(items, CatalogItem{
			ProductID:         product.ProductID,
			Name:              product.StandardName,
			Brand:             brand,
			Category:          product.Category,
			Size:              size,
			Unit:              unit,
			BestPrice:         analysis.BestPrice.OriginalPrice,
			BestSupplier:      analysis.BestPrice.Supplier,
			WorstPrice:        analysis.WorstPrice.OriginalPrice,
			SuppliersCount:    analysis.SuppliersCount,
			SavingsPercentage: analysis.SavingsPotential,
			PriceTrend:        analysis.PriceTrend,
			ConfidenceScore:   pricing.DealConfidence(analysis),
			LastUpdated:       time.Now().UTC(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SavingsPercentage != items[j].SavingsPercentage {
			return items[i].SavingsPercentage > items[j].SavingsPercentage
		}
		return items[i].ConfidenceScore > items[j].ConfidenceScore
	})
	return items, nil
}

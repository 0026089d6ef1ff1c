package manager

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/internal/matching"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/internal/pricing"
	"github.com/badno/monito/pkg/models"
)

// fakeStore is an in-memory catalog.Store stand-in sized to exercise
// the catalog manager without a database.
type fakeStore struct {
	products     map[uuid.UUID]models.MasterProduct
	prices       map[uuid.UUID][]models.SupplierPrice
	unifiedItems []catalog.UnifiedCatalogEntry
	comparisons  map[uuid.UUID]*catalog.PriceComparison
	unreviewed   []models.ProductMatch
	merged       [][2]uuid.UUID
	searchResult []models.MasterProduct
}

func (f *fakeStore) UpsertMasterProduct(context.Context, catalog.UpsertFields) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (f *fakeStore) RecordSupplierPrice(context.Context, catalog.RecordPriceInput) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (f *fakeStore) BulkImport(context.Context, string, []catalog.ImportRecord) (catalog.ImportStats, error) {
	return catalog.ImportStats{}, nil
}
func (f *fakeStore) GetProduct(_ context.Context, id uuid.UUID) (*models.MasterProduct, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "product not found")
	}
	return &p, nil
}
func (f *fakeStore) SearchProducts(context.Context, string, string, int) ([]models.MasterProduct, error) {
	return f.searchResult, nil
}
func (f *fakeStore) GetCurrentPrices(_ context.Context, productID uuid.UUID, _ time.Duration) ([]models.SupplierPrice, error) {
	return f.prices[productID], nil
}
func (f *fakeStore) GetBestPrice(context.Context, uuid.UUID) (*models.SupplierPrice, error) { return nil, nil }
func (f *fakeStore) GetSupplierPerformance(context.Context, string) (catalog.SupplierPerformance, error) {
	return catalog.SupplierPerformance{}, errs.New(errs.NotFound, "supplier not found")
}
func (f *fakeStore) GetUnifiedCatalog(context.Context, string, int) ([]catalog.UnifiedCatalogEntry, error) {
	return f.unifiedItems, nil
}
func (f *fakeStore) GetPriceComparisonForProduct(_ context.Context, productID uuid.UUID) (*catalog.PriceComparison, error) {
	return f.comparisons[productID], nil
}
func (f *fakeStore) GetUnreviewedMatches(context.Context, int) ([]models.ProductMatch, error) {
	return f.unreviewed, nil
}
func (f *fakeStore) GetProductMatches(context.Context, uuid.UUID, float64) ([]models.ProductMatch, error) {
	return nil, nil
}
func (f *fakeStore) RecordMatch(context.Context, uuid.UUID, uuid.UUID, float64, models.MatchType, catalog.MatchDetails) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (f *fakeStore) ApproveMatch(context.Context, uuid.UUID, string) error { return nil }
func (f *fakeStore) CreateOrUpdateSupplier(context.Context, string) (models.Supplier, error) {
	return models.Supplier{}, nil
}
func (f *fakeStore) GetSystemStatistics(context.Context) (catalog.SystemStatistics, error) {
	return catalog.SystemStatistics{}, nil
}
func (f *fakeStore) GetPriceHistory(context.Context, uuid.UUID, time.Time) ([]models.PriceHistory, error) {
	return nil, nil
}
func (f *fakeStore) GetSupplierCategoryPerformance(context.Context, string) (map[string]catalog.CategoryPerformance, error) {
	return nil, nil
}
func (f *fakeStore) GetSupplierPriceVolatility(context.Context, string, time.Duration) (float64, error) {
	return 0, nil
}
func (f *fakeStore) GetMarketTrends(context.Context, time.Duration) (catalog.MarketTrends, error) {
	return catalog.MarketTrends{}, nil
}
func (f *fakeStore) MergeProducts(_ context.Context, sourceID, targetID uuid.UUID) error {
	f.merged = append(f.merged, [2]uuid.UUID{sourceID, targetID})
	return nil
}

func newTestManager(store *fakeStore) *Manager {
	norm := normalize.New(nil, nil)
	matchingEngine := matching.New(store, norm, config.MatchingConfig{
		FuzzyThreshold: 0.8, ExactThreshold: 0.95, ExactSizeTolerance: 0.02, CandidateFetchLimit: 100,
	}, nil)
	pricingEngine := pricing.New(store, config.PricingConfig{
		TrendAnalysisDays: 30, SupplierVolatilityWindowDays: 90, MinDealSavingsPercent: 5, RecommendationTTLDays: 7,
	}, nil)
	return New(store, matchingEngine, pricingEngine, nil)
}

func makeProduct(name string) (uuid.UUID, models.MasterProduct) {
	id := uuid.New()
	size := decimal.NewFromInt(500)
	return id, models.MasterProduct{ProductID: id, StandardName: name, Category: "grocery", Size: &size, Unit: "g"}
}

func TestGenerateCatalogFiltersBySuppliersAndSortsBySavings(t *testing.T) {
	idA, productA := makeProduct("Rice")
	idB, productB := makeProduct("Beans")

	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{idA: productA, idB: productB},
		prices: map[uuid.UUID][]models.SupplierPrice{
			idA: {
				{SupplierName: "S1", Price: decimal.NewFromInt(10)},
				{SupplierName: "S2", Price: decimal.NewFromInt(20)},
			},
			idB: {
				{SupplierName: "S1", Price: decimal.NewFromInt(10)},
				{SupplierName: "S2", Price: decimal.NewFromInt(12)},
			},
		},
		unifiedItems: []catalog.UnifiedCatalogEntry{
			{ProductID: idA, StandardName: "Rice", Category: "grocery", SuppliersCount: 2, BestPrice: 10, WorstPrice: 20, BestSupplier: "S1", SavingsPercent: 50},
			{ProductID: idB, StandardName: "Beans", Category: "grocery", SuppliersCount: 2, BestPrice: 10, WorstPrice: 12, BestSupplier: "S1", SavingsPercent: 16.6},
		},
	}
	mgr := newTestManager(store)

	items, err := mgr.GenerateCatalog(context.Background(), "", 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Rice" {
		t.Errorf("items[0].Name = %q, want Rice (highest savings)", items[0].Name)
	}
}

func TestGenerateCatalogExcludesSingleSupplierByDefault(t *testing.T) {
	idA, productA := makeProduct("Rice")
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{idA: productA},
		prices: map[uuid.UUID][]models.SupplierPrice{
			idA: {{SupplierName: "S1", Price: decimal.NewFromInt(10)}},
		},
		unifiedItems: []catalog.UnifiedCatalogEntry{
			{ProductID: idA, StandardName: "Rice", Category: "grocery", SuppliersCount: 1, BestPrice: 10, WorstPrice: 10, BestSupplier: "S1", SavingsPercent: 0},
		},
	}
	mgr := newTestManager(store)

	items, err := mgr.GenerateCatalog(context.Background(), "", 2, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0 (single-supplier excluded)", len(items))
	}
}

func TestGenerateCatalogIncludesSingleSupplierWhenRequested(t *testing.T) {
	idA, productA := makeProduct("Rice")
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{idA: productA},
		prices: map[uuid.UUID][]models.SupplierPrice{
			idA: {{SupplierName: "S1", Price: decimal.NewFromInt(10)}},
		},
		unifiedItems: []catalog.UnifiedCatalogEntry{
			{ProductID: idA, StandardName: "Rice", Category: "grocery", SuppliersCount: 1, BestPrice: 10, WorstPrice: 10, BestSupplier: "S1", SavingsPercent: 0},
		},
	}
	mgr := newTestManager(store)

	items, err := mgr.GenerateCatalog(context.Background(), "", 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (single-supplier item included via include_single)", len(items))
	}
}

func TestTopDealsFiltersByMinSavingsAndCaps(t *testing.T) {
	idA, productA := makeProduct("Rice")
	idB, productB := makeProduct("Beans")
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{idA: productA, idB: productB},
		prices: map[uuid.UUID][]models.SupplierPrice{
			idA: {{SupplierName: "S1", Price: decimal.NewFromInt(10)}, {SupplierName: "S2", Price: decimal.NewFromInt(20)}},
			idB: {{SupplierName: "S1", Price: decimal.NewFromInt(10)}, {SupplierName: "S2", Price: decimal.NewFromInt(10.5)}},
		},
		unifiedItems: []catalog.UnifiedCatalogEntry{
			{ProductID: idA, StandardName: "Rice", Category: "grocery", SuppliersCount: 2, BestPrice: 10, WorstPrice: 20, BestSupplier: "S1", SavingsPercent: 50},
			{ProductID: idB, StandardName: "Beans", Category: "grocery", SuppliersCount: 2, BestPrice: 10, WorstPrice: 10.5, BestSupplier: "S1", SavingsPercent: 4.7},
		},
	}
	mgr := newTestManager(store)

	deals, err := mgr.TopDeals(context.Background(), 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(deals) != 1 || deals[0].Name != "Rice" {
		t.Errorf("deals = %+v, want only Rice (savings >= 5%%)", deals)
	}
}

func TestCatalogStatisticsEmptyCatalog(t *testing.T) {
	store := &fakeStore{}
	mgr := newTestManager(store)

	stats, err := mgr.CatalogStatistics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalProducts != 0 {
		t.Errorf("TotalProducts = %d, want 0", stats.TotalProducts)
	}
}

func TestUpdateCatalogPricesCountsProducts(t *testing.T) {
	idA, productA := makeProduct("Rice")
	store := &fakeStore{
		products:     map[uuid.UUID]models.MasterProduct{idA: productA},
		searchResult: []models.MasterProduct{productA},
		prices: map[uuid.UUID][]models.SupplierPrice{
			idA: {{SupplierName: "S1", Price: decimal.NewFromInt(10)}, {SupplierName: "S2", Price: decimal.NewFromInt(15)}},
		},
	}
	mgr := newTestManager(store)

	stats, err := mgr.UpdateCatalogPrices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProductsChecked != 1 {
		t.Errorf("ProductsChecked = %d, want 1", stats.ProductsChecked)
	}
	if stats.PricesUpdated != 2 {
		t.Errorf("PricesUpdated = %d, want 2", stats.PricesUpdated)
	}
}

func TestMergeDuplicatesInvokesStoreForHighConfidence(t *testing.T) {
	idA, productA := makeProduct("Rice")
	idB, productB := makeProduct("Rice")
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{idA: productA, idB: productB},
		unreviewed: []models.ProductMatch{
			{MatchID: uuid.New(), ProductAID: idA, ProductBID: idB, SimilarityScore: decimal.NewFromFloat(0.98), MatchType: models.MatchTypeExact},
		},
	}
	mgr := newTestManager(store)

	stats, err := mgr.MergeDuplicates(context.Background(), 0.95)
	if err != nil {
		t.Fatal(err)
	}
	if stats.AutoMerged != 1 {
		t.Errorf("AutoMerged = %d, want 1", stats.AutoMerged)
	}
	if len(store.merged) != 1 {
		t.Fatalf("store.merged = %v, want 1 call", store.merged)
	}
	if store.merged[0][1] != idA {
		t.Errorf("merge target = %v, want %v (product A kept)", store.merged[0][1], idA)
	}
}

func TestExportCatalogIncludesStatistics(t *testing.T) {
	store := &fakeStore{}
	mgr := newTestManager(store)

	export, err := mgr.ExportCatalog(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if export.TotalItems != 0 {
		t.Errorf("TotalItems = %d, want 0", export.TotalItems)
	}
}

func TestProcurementReportComputesAverages(t *testing.T) {
	idA, productA := makeProduct("Rice")
	store := &fakeStore{
		products:     map[uuid.UUID]models.MasterProduct{idA: productA},
		searchResult: []models.MasterProduct{productA},
		prices: map[uuid.UUID][]models.SupplierPrice{
			idA: {{SupplierName: "S1", Price: decimal.NewFromInt(10)}, {SupplierName: "S2", Price: decimal.NewFromInt(20)}},
		},
	}
	mgr := newTestManager(store)

	report, err := mgr.ProcurementReport(context.Background(), []pricing.RequiredProduct{{Name: "Rice", Quantity: 2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if report.RecommendationsGenerated != 1 {
		t.Fatalf("RecommendationsGenerated = %d, want 1", report.RecommendationsGenerated)
	}
	if report.TotalEstimatedCost != 20 {
		t.Errorf("TotalEstimatedCost = %v, want 20 (10 * qty 2)", report.TotalEstimatedCost)
	}
}

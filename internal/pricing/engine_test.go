package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/pkg/models"
)

// fakeStore is an in-memory catalog.Store stand-in sized to exercise
// the pricing engine without a database.
type fakeStore struct {
	products      map[uuid.UUID]models.MasterProduct
	prices        map[uuid.UUID][]models.SupplierPrice
	history       map[uuid.UUID][]models.PriceHistory
	performance   map[string]catalog.SupplierPerformance
	categoryPerf  map[string]map[string]catalog.CategoryPerformance
	volatility    map[string]float64
	unifiedItems  []catalog.UnifiedCatalogEntry
	marketTrends  catalog.MarketTrends
	searchResults []models.MasterProduct
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
	return f.searchResults, nil
}
func (f *fakeStore) GetCurrentPrices(_ context.Context, productID uuid.UUID, _ time.Duration) ([]models.SupplierPrice, error) {
	return f.prices[productID], nil
}
func (f *fakeStore) GetBestPrice(context.Context, uuid.UUID) (*models.SupplierPrice, error) { return nil, nil }
func (f *fakeStore) GetSupplierPerformance(_ context.Context, name string) (catalog.SupplierPerformance, error) {
	perf, ok := f.performance[name]
	if !ok {
		return catalog.SupplierPerformance{}, errs.New(errs.NotFound, "supplier not found")
	}
	return perf, nil
}
func (f *fakeStore) GetUnifiedCatalog(context.Context, string, int) ([]catalog.UnifiedCatalogEntry, error) {
	return f.unifiedItems, nil
}
func (f *fakeStore) GetPriceComparisonForProduct(context.Context, uuid.UUID) (*catalog.PriceComparison, error) {
	return nil, nil
}
func (f *fakeStore) GetUnreviewedMatches(context.Context, int) ([]models.ProductMatch, error) { return nil, nil }
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
func (f *fakeStore) GetPriceHistory(_ context.Context, productID uuid.UUID, _ time.Time) ([]models.PriceHistory, error) {
	return f.history[productID], nil
}
func (f *fakeStore) GetSupplierCategoryPerformance(_ context.Context, name string) (map[string]catalog.CategoryPerformance, error) {
	return f.categoryPerf[name], nil
}
func (f *fakeStore) GetSupplierPriceVolatility(_ context.Context, name string, _ time.Duration) (float64, error) {
	return f.volatility[name], nil
}
func (f *fakeStore) GetMarketTrends(context.Context, time.Duration) (catalog.MarketTrends, error) {
	return f.marketTrends, nil
}
func (f *fakeStore) MergeProducts(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func testConfig() config.PricingConfig {
	return config.PricingConfig{
		TrendAnalysisDays:            30,
		SupplierVolatilityWindowDays: 90,
		MinDealSavingsPercent:        5,
		RecommendationTTLDays:        7,
	}
}

func pctr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestAnalyzeComputesBestWorstAndSavings(t *testing.T) {
	productID := uuid.New()
	size := decimal.NewFromInt(100)
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{
			productID: {ProductID: productID, StandardName: "Cooking Oil", Size: &size, Unit: "g"},
		},
		prices: map[uuid.UUID][]models.SupplierPrice{
			productID: {
				{SupplierName: "Supplier A", Price: decimal.NewFromInt(10), ConfidenceScore: decimal.NewFromFloat(0.9)},
				{SupplierName: "Supplier B", Price: decimal.NewFromInt(20), ConfidenceScore: decimal.NewFromFloat(0.9)},
			},
		},
	}
	e := New(store, testConfig(), nil)

	analysis, err := e.Analyze(context.Background(), productID)
	if err != nil {
		t.Fatal(err)
	}
	if analysis == nil {
		t.Fatal("expected a non-nil analysis")
	}
	if analysis.BestPrice.Supplier != "Supplier A" {
		t.Errorf("BestPrice.Supplier = %q, want Supplier A", analysis.BestPrice.Supplier)
	}
	if analysis.WorstPrice.Supplier != "Supplier B" {
		t.Errorf("WorstPrice.Supplier = %q, want Supplier B", analysis.WorstPrice.Supplier)
	}
	if analysis.SavingsPotential != 50 {
		t.Errorf("SavingsPotential = %v, want 50", analysis.SavingsPotential)
	}
	if analysis.PriceTrend != "stable" {
		t.Errorf("PriceTrend = %q, want stable (no history)", analysis.PriceTrend)
	}
}

func TestAnalyzeUnknownProductReturnsNilNotError(t *testing.T) {
	store := &fakeStore{products: map[uuid.UUID]models.MasterProduct{}}
	e := New(store, testConfig(), nil)

	analysis, err := e.Analyze(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if analysis != nil {
		t.Errorf("expected nil analysis for unknown product")
	}
}

func TestAnalyzeNoCurrentPricesReturnsNil(t *testing.T) {
	productID := uuid.New()
	size := decimal.NewFromInt(100)
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{
			productID: {ProductID: productID, StandardName: "X", Size: &size, Unit: "g"},
		},
	}
	e := New(store, testConfig(), nil)

	analysis, err := e.Analyze(context.Background(), productID)
	if err != nil {
		t.Fatal(err)
	}
	if analysis != nil {
		t.Errorf("expected nil analysis when there are no current prices")
	}
}

func TestAnalyzeUnknownUnitReturnsNil(t *testing.T) {
	productID := uuid.New()
	size := decimal.NewFromInt(100)
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{
			productID: {ProductID: productID, StandardName: "X", Size: &size, Unit: "glorbs"},
		},
		prices: map[uuid.UUID][]models.SupplierPrice{
			productID: {{SupplierName: "A", Price: decimal.NewFromInt(10)}},
		},
	}
	e := New(store, testConfig(), nil)

	analysis, err := e.Analyze(context.Background(), productID)
	if err != nil {
		t.Fatal(err)
	}
	if analysis != nil {
		t.Errorf("expected nil analysis for an unresolvable unit")
	}
}

func TestPriceTrendClassification(t *testing.T) {
	productID := uuid.New()
	size := decimal.NewFromInt(100)
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{
			productID: {ProductID: productID, StandardName: "X", Size: &size, Unit: "g"},
		},
		prices: map[uuid.UUID][]models.SupplierPrice{
			productID: {{SupplierName: "A", Price: decimal.NewFromInt(10)}},
		},
		history: map[uuid.UUID][]models.PriceHistory{
			productID: {
				{ChangePercentage: pctr(5)},
				{ChangePercentage: pctr(4)},
			},
		},
	}
	e := New(store, testConfig(), nil)

	analysis, err := e.Analyze(context.Background(), productID)
	if err != nil {
		t.Fatal(err)
	}
	if analysis.PriceTrend != "increasing" {
		t.Errorf("PriceTrend = %q, want increasing", analysis.PriceTrend)
	}
}

func TestDealConfidenceWithinUnitRange(t *testing.T) {
	a := &PriceAnalysis{SuppliersCount: 5, SavingsPotential: 30, PriceTrend: "stable"}
	got := DealConfidence(a)
	if got <= 0 || got > 1.0 {
		t.Errorf("dealConfidence = %v, want in (0,1]", got)
	}
}

func TestAnalyzeSupplierMissingPerformanceReturnsZeroValue(t *testing.T) {
	store := &fakeStore{performance: map[string]catalog.SupplierPerformance{}}
	e := New(store, testConfig(), nil)

	analysis, err := e.AnalyzeSupplier(context.Background(), "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if analysis.SupplierName != "Acme" || analysis.TotalProducts != 0 {
		t.Errorf("expected zero-value analysis, got %+v", analysis)
	}
}

func TestAnalyzeSupplierDerivesStrengths(t *testing.T) {
	store := &fakeStore{
		performance: map[string]catalog.SupplierPerformance{
			"Acme": {SupplierName: "Acme", TotalProducts: 150, PriceCompetitiveness: 80, ReliabilityScore: 0.9},
		},
		categoryPerf: map[string]map[string]catalog.CategoryPerformance{
			"Acme": {"noodles": {Competitiveness: 80}},
		},
		volatility: map[string]float64{"Acme": 2},
	}
	e := New(store, testConfig(), nil)

	analysis, err := e.AnalyzeSupplier(context.Background(), "Acme")
	if err != nil {
		t.Fatal(err)
	}
	if len(analysis.Strengths) == 0 {
		t.Error("expected at least one strength for a high-performing supplier")
	}
	if len(analysis.RecommendedCategories) != 1 {
		t.Errorf("RecommendedCategories = %v, want 1 category at >=50%% competitiveness", analysis.RecommendedCategories)
	}
}

func TestGenerateProcurementRecommendationsRespectsBudget(t *testing.T) {
	productID := uuid.New()
	size := decimal.NewFromInt(100)
	product := models.MasterProduct{ProductID: productID, StandardName: "Rice", Size: &size, Unit: "g"}
	store := &fakeStore{
		products: map[uuid.UUID]models.MasterProduct{productID: product},
		prices: map[uuid.UUID][]models.SupplierPrice{
			productID: {
				{SupplierName: "Expensive", Price: decimal.NewFromInt(100)},
				{SupplierName: "Cheap", Price: decimal.NewFromInt(10)},
			},
		},
		searchResults: []models.MasterProduct{product},
	}
	e := New(store, testConfig(), nil)

	budget := 50.0
	recs, err := e.GenerateProcurementRecommendations(context.Background(), []RequiredProduct{{Name: "Rice", Quantity: 1}}, &budget)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(recs))
	}
	if recs[0].Price > budget {
		t.Errorf("Price = %v, exceeds budget %v", recs[0].Price, budget)
	}
}

func TestGetMarketOverviewStableWithNoHistory(t *testing.T) {
	store := &fakeStore{}
	e := New(store, testConfig(), nil)

	overview, err := e.GetMarketOverview(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if overview.Trends.OverallTrend != "stable" || overview.Trends.Volatility != "low" {
		t.Errorf("Trends = %+v, want stable/low with zero history", overview.Trends)
	}
}

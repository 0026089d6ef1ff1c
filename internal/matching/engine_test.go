package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/pkg/models"
)

// fakeStore is an in-memory catalog.Store stand-in sized to exercise
// the matching engine without a database.
type fakeStore struct {
	products []models.MasterProduct
	matches  []models.ProductMatch
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
	for _, p := range f.products {
		if p.ProductID == id {
			return &p, nil
		}
	}
	return nil, errs.New(errs.NotFound, "product not found")
}
func (f *fakeStore) SearchProducts(_ context.Context, term, category string, limit int) ([]models.MasterProduct, error) {
	var out []models.MasterProduct
	for _, p := range f.products {
		if category != "" && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (f *fakeStore) GetCurrentPrices(context.Context, uuid.UUID, time.Duration) ([]models.SupplierPrice, error) {
	return nil, nil
}
func (f *fakeStore) GetBestPrice(context.Context, uuid.UUID) (*models.SupplierPrice, error) { return nil, nil }
func (f *fakeStore) GetSupplierPerformance(context.Context, string) (catalog.SupplierPerformance, error) {
	return catalog.SupplierPerformance{}, nil
}
func (f *fakeStore) GetUnifiedCatalog(context.Context, string, int) ([]catalog.UnifiedCatalogEntry, error) {
	return nil, nil
}
func (f *fakeStore) GetPriceComparisonForProduct(context.Context, uuid.UUID) (*catalog.PriceComparison, error) {
	return nil, nil
}
func (f *fakeStore) GetUnreviewedMatches(_ context.Context, limit int) ([]models.ProductMatch, error) {
	return f.matches, nil
}
func (f *fakeStore) GetProductMatches(context.Context, uuid.UUID, float64) ([]models.ProductMatch, error) {
	return nil, nil
}
func (f *fakeStore) RecordMatch(_ context.Context, a, b uuid.UUID, score float64, matchType models.MatchType, details catalog.MatchDetails) (uuid.UUID, error) {
	id := uuid.New()
	f.matches = append(f.matches, models.ProductMatch{
		MatchID: id, ProductAID: a, ProductBID: b,
		SimilarityScore: decimal.NewFromFloat(score), MatchType: matchType,
	})
	return id, nil
}
func (f *fakeStore) ApproveMatch(context.Context, uuid.UUID, string) error { return nil }
func (f *fakeStore) CreateOrUpdateSupplier(context.Context, string) (models.Supplier, error) {
	return models.Supplier{}, nil
}
func (f *fakeStore) GetSystemStatistics(context.Context) (catalog.SystemStatistics, error) {
	return catalog.SystemStatistics{}, nil
}
func (f *fakeStore) MergeProducts(context.Context, uuid.UUID, uuid.UUID) error { return nil }
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

func testEngine(store catalog.Store) *Engine {
	norm := normalize.New(
		[]string{"the", "and", "premium", "original"},
		map[string]string{"coca cola": "coca-cola", "coke": "coca-cola"},
	)
	cfg := config.MatchingConfig{
		FuzzyThreshold:      0.80,
		ExactThreshold:      0.95,
		ExactSizeTolerance:  0.05,
		CandidateFetchLimit: 100,
	}
	return New(store, norm, cfg, nil)
}

func newProduct(name, brand, category string, size float64, unit string) models.MasterProduct {
	d := decimal.NewFromFloat(size)
	return models.MasterProduct{
		ProductID: uuid.New(), StandardName: name, Brand: brand,
		Category: category, Size: &d, Unit: unit, Status: models.ProductStatusActive,
	}
}

func TestFindMatchesExactShortCircuitsFuzzy(t *testing.T) {
	a := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	b := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	c := newProduct("Indomie Goreng Spicy", "Indomie", "noodles", 85, "g")
	store := &fakeStore{products: []models.MasterProduct{a, b, c}}
	e := testEngine(store)

	matches, err := e.FindMatches(context.Background(), a, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want exactly 1 exact match (fuzzy candidate c should be excluded)", len(matches))
	}
	if matches[0].Product.ProductID != b.ProductID {
		t.Errorf("matched wrong product")
	}
	if matches[0].MatchType != models.MatchTypeExact {
		t.Errorf("MatchType = %v, want EXACT", matches[0].MatchType)
	}
}

func TestFindMatchesFuzzyFallback(t *testing.T) {
	a := newProduct("Indomie Goreng Spicy", "Indomie", "noodles", 85, "g")
	b := newProduct("Indomie Goreng Original", "Indomie", "noodles", 85, "g")
	store := &fakeStore{products: []models.MasterProduct{a, b}}
	e := testEngine(store)

	matches, err := e.FindMatches(context.Background(), a, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 fuzzy match", len(matches))
	}
	if matches[0].MatchType != models.MatchTypeFuzzy && matches[0].MatchType != models.MatchTypeExact {
		t.Errorf("unexpected match type %v", matches[0].MatchType)
	}
}

func TestFindMatchesNoCandidatesInCategory(t *testing.T) {
	a := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	store := &fakeStore{products: []models.MasterProduct{a}}
	e := testEngine(store)

	matches, err := e.FindMatches(context.Background(), a, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0 (only candidate is itself)", len(matches))
	}
}

func TestProcessAllRecordsMatches(t *testing.T) {
	a := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	b := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	store := &fakeStore{products: []models.MasterProduct{a, b}}
	e := testEngine(store)

	stats, err := e.ProcessAll(context.Background(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProductsProcessed != 2 {
		t.Errorf("ProductsProcessed = %d, want 2", stats.ProductsProcessed)
	}
	if stats.MatchesFound == 0 {
		t.Errorf("expected at least one match to be recorded")
	}
	if len(store.matches) != stats.MatchesFound {
		t.Errorf("store has %d recorded matches, stats say %d", len(store.matches), stats.MatchesFound)
	}
}

func TestGetSimilarProductsUnknownIDReturnsEmpty(t *testing.T) {
	store := &fakeStore{}
	e := testEngine(store)

	matches, err := e.GetSimilarProducts(context.Background(), uuid.New(), 10)
	if err != nil {
		t.Fatalf("expected nil error for an unknown product, got %v", err)
	}
	if matches != nil {
		t.Errorf("expected nil matches, got %v", matches)
	}
}

func TestSuggestAutoMergesFiltersByThreshold(t *testing.T) {
	a := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	b := newProduct("Indomie Goreng", "Indomie", "noodles", 85, "g")
	store := &fakeStore{
		products: []models.MasterProduct{a, b},
		matches: []models.ProductMatch{
			{MatchID: uuid.New(), ProductAID: a.ProductID, ProductBID: b.ProductID, SimilarityScore: decimal.NewFromFloat(0.98), MatchType: models.MatchTypeExact},
			{MatchID: uuid.New(), ProductAID: a.ProductID, ProductBID: b.ProductID, SimilarityScore: decimal.NewFromFloat(0.80), MatchType: models.MatchTypeFuzzy},
		},
	}
	e := testEngine(store)

	suggestions, err := e.SuggestAutoMerges(context.Background(), 0.95)
	if err != nil {
		t.Fatal(err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1 (only the 0.98 match clears 0.95)", len(suggestions))
	}
	if suggestions[0].SuggestedAction != "auto_merge" {
		t.Errorf("SuggestedAction = %q, want auto_merge", suggestions[0].SuggestedAction)
	}
}

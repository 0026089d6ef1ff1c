package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/pkg/models"
)

// countingStore is a minimal catalog.Store stand-in that just counts
// BulkImport calls, for exercising the worker pool without a database.
type countingStore struct {
	calls int
}

func (s *countingStore) UpsertMasterProduct(context.Context, catalog.UpsertFields) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (s *countingStore) RecordSupplierPrice(context.Context, catalog.RecordPriceInput) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (s *countingStore) BulkImport(context.Context, string, []catalog.ImportRecord) (catalog.ImportStats, error) {
	s.calls++
	return catalog.ImportStats{Created: 1}, nil
}
func (s *countingStore) GetProduct(context.Context, uuid.UUID) (*models.MasterProduct, error) {
	return nil, nil
}
func (s *countingStore) SearchProducts(context.Context, string, string, int) ([]models.MasterProduct, error) {
	return nil, nil
}
func (s *countingStore) GetCurrentPrices(context.Context, uuid.UUID, time.Duration) ([]models.SupplierPrice, error) {
	return nil, nil
}
func (s *countingStore) GetBestPrice(context.Context, uuid.UUID) (*models.SupplierPrice, error) {
	return nil, nil
}
func (s *countingStore) GetSupplierPerformance(context.Context, string) (catalog.SupplierPerformance, error) {
	return catalog.SupplierPerformance{}, nil
}
func (s *countingStore) GetUnifiedCatalog(context.Context, string, int) ([]catalog.UnifiedCatalogEntry, error) {
	return nil, nil
}
func (s *countingStore) GetPriceComparisonForProduct(context.Context, uuid.UUID) (*catalog.PriceComparison, error) {
	return nil, nil
}
func (s *countingStore) GetUnreviewedMatches(context.Context, int) ([]models.ProductMatch, error) {
	return nil, nil
}
func (s *countingStore) GetProductMatches(context.Context, uuid.UUID, float64) ([]models.ProductMatch, error) {
	return nil, nil
}
func (s *countingStore) RecordMatch(context.Context, uuid.UUID, uuid.UUID, float64, models.MatchType, catalog.MatchDetails) (uuid.UUID, error) {
	return uuid.Nil, nil
}
func (s *countingStore) ApproveMatch(context.Context, uuid.UUID, string) error { return nil }
func (s *countingStore) CreateOrUpdateSupplier(context.Context, string) (models.Supplier, error) {
	return models.Supplier{}, nil
}
func (s *countingStore) GetSystemStatistics(context.Context) (catalog.SystemStatistics, error) {
	return catalog.SystemStatistics{}, nil
}
func (s *countingStore) GetPriceHistory(context.Context, uuid.UUID, time.Time) ([]models.PriceHistory, error) {
	return nil, nil
}
func (s *countingStore) GetSupplierCategoryPerformance(context.Context, string) (map[string]catalog.CategoryPerformance, error) {
	return nil, nil
}
func (s *countingStore) GetSupplierPriceVolatility(context.Context, string, time.Duration) (float64, error) {
	return 0, nil
}
func (s *countingStore) GetMarketTrends(context.Context, time.Duration) (catalog.MarketTrends, error) {
	return catalog.MarketTrends{}, nil
}
func (s *countingStore) MergeProducts(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func writeTempFile(t *testing.T, name string, size int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	data := make([]byte, size)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunIngestsEveryTaskConcurrently(t *testing.T) {
	store := &countingStore{}
	norm := normalize.New(nil, nil)
	runner := New(store, norm, config.PreprocessorConfig{}, nil, 2, nil)

	tasks := []FileTask{
		{Path: writeTempFile(t, "a.xlsx", 200), Supplier: "Acme"},
		{Path: writeTempFile(t, "b.xlsx", 200), Supplier: "Acme"},
		{Path: writeTempFile(t, "c.csv", 200), Supplier: "Acme"},
	}

	results := runner.Run(context.Background(), tasks)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Task.Path != tasks[i].Path {
			t.Errorf("result %d out of order: got %q, want %q", i, r.Task.Path, tasks[i].Path)
		}
	}
	if store.calls != 3 {
		t.Errorf("BulkImport calls = %d, want 3 (one per task)", store.calls)
	}
}

func TestRunReportsReadFailureAsTaskError(t *testing.T) {
	store := &countingStore{}
	norm := normalize.New(nil, nil)
	runner := New(store, norm, config.PreprocessorConfig{}, nil, 2, nil)

	tasks := []FileTask{{Path: filepath.Join(t.TempDir(), "missing.xlsx"), Supplier: "Acme"}}
	results := runner.Run(context.Background(), tasks)

	if results[0].Err == nil {
		t.Error("expected a read error for a missing file")
	}
}

func TestRunStopsLaunchingOnCancelledContext(t *testing.T) {
	store := &countingStore{}
	norm := normalize.New(nil, nil)
	runner := New(store, norm, config.PreprocessorConfig{}, nil, 2, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []FileTask{{Path: writeTempFile(t, "a.xlsx", 200), Supplier: "Acme"}}
	results := runner.Run(ctx, tasks)

	if results[0].Err == nil {
		t.Error("expected a cancellation error when ctx is already done")
	}
}

// Package catalog defines the durable storage interface for the price
// comparison system and its Postgres/ClickHouse implementations.
// RecordSupplierPrice and MergeProducts each run in a single
// transaction with rollback on error; the other writes (product upsert,
// BulkImport, supplier and match writes) issue their statements without
// an enclosing transaction. Reads default to a 30-day price window
// unless a caller asks for more.
package catalog

import (
	"context"
	"time"

	"github.com/badno/monito/pkg/models"
	"github.com/google/uuid"
)

// DefaultPriceWindow is the lookback period read primitives use unless
// the caller specifies otherwise.
const DefaultPriceWindow = 30 * 24 * time.Hour

// UpsertFields carries the caller-supplied fields for
// Store.UpsertMasterProduct; ProductID/timestamps are assigned by the
// store.
type UpsertFields struct {
	StandardName string
	Brand        string
	Category     string
	Size         *float64
	Unit         string
	Description  string
}

// RecordPriceInput is the input to Store.RecordSupplierPrice.
type RecordPriceInput struct {
	ProductID    uuid.UUID
	Supplier     string
	Price        float64
	Currency     string
	OriginalName string
	PriceDate    time.Time
	Confidence   float64
	MinOrderQty  int
	Source       models.PriceSource
}

// ImportRecord is one row of a bulk_import call.
type ImportRecord struct {
	StandardName string
	Brand        string
	Category     string
	Size         *float64
	Unit         string
	OriginalName string
	Price        float64
	Currency     string
	Confidence   float64
}

// ImportStats is bulk_import's per-batch result.
type ImportStats struct {
	Created int
	Updated int
	Added   int
	Errors  int
}

// UnifiedCatalogEntry is one row of GetUnifiedCatalog's per-product
// aggregate.
type UnifiedCatalogEntry struct {
	ProductID        uuid.UUID
	StandardName     string
	Brand            string
	Category         string
	Size             *float64
	Unit             string
	BestPrice        float64
	WorstPrice       float64
	BestSupplier     string
	SuppliersCount   int
	SavingsPercent   float64
}

// PriceComparison is GetPriceComparisonForProduct's result.
type PriceComparison struct {
	Product          models.MasterProduct
	Prices           []models.SupplierPrice
	BestPrice        *models.SupplierPrice
	WorstPrice       *models.SupplierPrice
	PotentialSavings float64
	SuppliersCount   int
}

// SupplierPerformance is GetSupplierPerformance's result.
type SupplierPerformance struct {
	SupplierName        string
	TotalProducts       int
	BestPriceProducts   int
	PriceCompetitiveness float64
	ReliabilityScore    float64
}

// CategoryPerformance is one supplier's per-category breakdown, used by
// the pricing engine's supplier analysis.
type CategoryPerformance struct {
	Category          string
	ProductsCount     int
	BestPriceProducts int
	Competitiveness   float64
	AvgPrice          float64
}

// MarketTrends is GetMarketTrends's aggregate result over a lookback
// window used by market trend reporting.
type MarketTrends struct {
	TotalChanges   int64
	AverageChange  float64
	PriceIncreases int64
	PriceDecreases int64
}

// SystemStatistics is GetSystemStatistics's result.
type SystemStatistics struct {
	TotalProducts       int64
	TotalSuppliers      int64
	TotalPrices         int64
	TotalCategories     int64
	PendingMatches      int64
	LastPriceUpdate     *time.Time
	RecentPriceChanges  int64
}

// Store is the durable storage and query interface every catalog
// implementation must satisfy.
type Store interface {
	UpsertMasterProduct(ctx context.Context, fields UpsertFields) (uuid.UUID, error)
	RecordSupplierPrice(ctx context.Context, in RecordPriceInput) (uuid.UUID, error)
	BulkImport(ctx context.Context, supplier string, records []ImportRecord) (ImportStats, error)

	GetProduct(ctx context.Context, id uuid.UUID) (*models.MasterProduct, error)
	SearchProducts(ctx context.Context, term, category string, limit int) ([]models.MasterProduct, error)
	GetCurrentPrices(ctx context.Context, productID uuid.UUID, window time.Duration) ([]models.SupplierPrice, error)
	GetBestPrice(ctx context.Context, productID uuid.UUID) (*models.SupplierPrice, error)
	GetSupplierPerformance(ctx context.Context, name string) (SupplierPerformance, error)
	GetUnifiedCatalog(ctx context.Context, category string, limit int) ([]UnifiedCatalogEntry, error)
	GetPriceComparisonForProduct(ctx context.Context, productID uuid.UUID) (*PriceComparison, error)
	GetUnreviewedMatches(ctx context.Context, limit int) ([]models.ProductMatch, error)
	GetProductMatches(ctx context.Context, productID uuid.UUID, minSimilarity float64) ([]models.ProductMatch, error)
	RecordMatch(ctx context.Context, a, b uuid.UUID, score float64, matchType models.MatchType, details MatchDetails) (uuid.UUID, error)
	ApproveMatch(ctx context.Context, matchID uuid.UUID, reviewer string) error

	CreateOrUpdateSupplier(ctx context.Context, name string) (models.Supplier, error)
	GetSystemStatistics(ctx context.Context) (SystemStatistics, error)

	GetPriceHistory(ctx context.Context, productID uuid.UUID, since time.Time) ([]models.PriceHistory, error)
	GetSupplierCategoryPerformance(ctx context.Context, supplierName string) (map[string]CategoryPerformance, error)
	GetSupplierPriceVolatility(ctx context.Context, supplierName string, window time.Duration) (float64, error)
	GetMarketTrends(ctx context.Context, window time.Duration) (MarketTrends, error)

	MergeProducts(ctx context.Context, sourceID, targetID uuid.UUID) error
}

// MatchDetails carries the three component similarity scores recorded
// alongside a ProductMatch.
type MatchDetails struct {
	NameSimilarity  float64
	BrandSimilarity float64
	SizeSimilarity  float64
}

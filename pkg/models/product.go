// Package models defines the shared catalog entities that flow between
// every component of the pipeline: preprocessor, adapter, store, matcher,
// pricing engine, and catalog manager.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus is the lifecycle state of a MasterProduct.
type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "ACTIVE"
	ProductStatusMerged     ProductStatus = "MERGED"
	ProductStatusDeprecated ProductStatus = "DEPRECATED"
)

// MasterProduct is the canonical product record the catalog is built around.
type MasterProduct struct {
	ProductID    uuid.UUID        `json:"product_id"`
	StandardName string           `json:"standard_name"`
	Brand        string           `json:"brand,omitempty"`
	Category     string           `json:"category"`
	Size         *decimal.Decimal `json:"size,omitempty"`
	Unit         string           `json:"unit,omitempty"`
	Description  string           `json:"description,omitempty"`
	Status       ProductStatus    `json:"status"`
	MergedInto   *uuid.UUID       `json:"merged_into,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PriceSource identifies where a SupplierPrice observation originated.
type PriceSource string

const (
	PriceSourceSpreadsheet PriceSource = "SPREADSHEET"
	PriceSourcePDF         PriceSource = "PDF"
	PriceSourceManual      PriceSource = "MANUAL"
	PriceSourceAPI         PriceSource = "API"
)

// SupplierPrice is one supplier's observed price for a MasterProduct on a
// given price_date. At most one row exists per (product, supplier, date).
type SupplierPrice struct {
	PriceID         uuid.UUID       `json:"price_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	SupplierName    string          `json:"supplier_name"`
	OriginalName    string          `json:"original_name"`
	Price           decimal.Decimal `json:"price"`
	Currency        string          `json:"currency"`
	PriceDate       time.Time       `json:"price_date"`
	Unit            string          `json:"unit,omitempty"`
	MinOrderQty     int             `json:"min_order_qty"`
	ConfidenceScore decimal.Decimal `json:"confidence_score"`
	Source          PriceSource     `json:"source"`
	LastSeen        time.Time       `json:"last_seen"`
}

// ChangeReason explains why a PriceHistory row was appended.
type ChangeReason string

const (
	ChangeReasonNewSupplier ChangeReason = "NEW_SUPPLIER"
	ChangeReasonPriceUpdate ChangeReason = "PRICE_UPDATE"
	ChangeReasonCorrection  ChangeReason = "CORRECTION"
)

// PriceHistory is an append-only record of every price change. Rows are
// never updated or deleted once written.
type PriceHistory struct {
	HistoryID        uuid.UUID        `json:"history_id"`
	ProductID        uuid.UUID        `json:"product_id"`
	SupplierName     string           `json:"supplier_name"`
	OldPrice         *decimal.Decimal `json:"old_price,omitempty"`
	NewPrice         decimal.Decimal  `json:"new_price"`
	ChangePercentage *decimal.Decimal `json:"change_percentage,omitempty"`
	ChangeDate       time.Time        `json:"change_date"`
	Reason           ChangeReason     `json:"reason"`
}

// SupplierStatus tracks whether a supplier is currently active.
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
)

// Supplier is a price-list source, keyed by its unique name.
type Supplier struct {
	SupplierName     string          `json:"supplier_name"`
	Status           SupplierStatus  `json:"status"`
	ReliabilityScore decimal.Decimal `json:"reliability_score"`
	LastPriceUpdate  *time.Time      `json:"last_price_update,omitempty"`
}

// MatchType classifies how strongly two products were judged equivalent.
type MatchType string

const (
	MatchTypeExact    MatchType = "EXACT"
	MatchTypeFuzzy    MatchType = "FUZZY"
	MatchTypeRejected MatchType = "REJECTED"
)

// ProductMatch records a candidate or confirmed equivalence between two
// MasterProducts. ProductAID is always the lexicographically/numerically
// smaller of the pair so that the pair is stored in canonical order.
type ProductMatch struct {
	MatchID          uuid.UUID        `json:"match_id"`
	ProductAID       uuid.UUID        `json:"product_a_id"`
	ProductBID       uuid.UUID        `json:"product_b_id"`
	SimilarityScore  decimal.Decimal  `json:"similarity_score"`
	NameSimilarity   decimal.Decimal  `json:"name_similarity"`
	BrandSimilarity  decimal.Decimal  `json:"brand_similarity"`
	SizeSimilarity   decimal.Decimal  `json:"size_similarity"`
	MatchType        MatchType        `json:"match_type"`
	Reviewed         bool             `json:"reviewed"`
	Approved         bool             `json:"approved"`
	Reviewer         string           `json:"reviewer,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
}

// Category is an auto-created tag dictionary entry.
type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CanonicalPair returns a, b reordered so that a's string form sorts before
// b's — the canonical storage order for a ProductMatch pair.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() <= b.String() {
		return a, b
	}
	return b, a
}

// Package adapter converts a preprocessor.PreprocessResult into an
// IngestBatch: per-pair (or orphan-product) record building, size/unit
// extraction via normalize and unitalgebra, category inference from a
// closed keyword table, and rejection of records that fail the
// minimal validity bar.
package adapter

import (
	"strconv"
	"strings"

	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/internal/preprocessor"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = "IDR"

// Record is one recovered product ready for catalog ingestion.
type Record struct {
	OriginalName   string
	StandardName   string
	Brand          string
	Price          decimal.Decimal
	Currency       string
	Unit           string
	Size           *float64
	Category       string
	Confidence     float64
	SourcePosition string
	Supplier       string
}

// BatchStats summarizes one adapter run's per-batch counters.
type BatchStats struct {
	Original    int
	Final       int
	SuccessRate float64
}

// IngestBatch is the adapter's sole output: a supplier name, its
// recovered and deduplicated records, and run statistics.
type IngestBatch struct {
	Supplier string
	Records  []Record
	Stats    BatchStats
}

// Build converts a PreprocessResult into an IngestBatch for the given
// supplier. Pairs take priority; an unpaired product is linked to a
// price on its own row, and a product with no such price, or with a
// non-positive one, is dropped rather than emitted.
func Build(result preprocessor.PreprocessResult, supplierName string, normalizer *normalize.Normalizer, categoryKeywords map[string]string) IngestBatch {
	originalCount := len(result.TotalProducts)

	var records []Record

	paired := make(map[[2]int]bool, len(result.Pairs))
	for _, pair := range result.Pairs {
		if rec, ok := fromPair(pair, supplierName, normalizer, categoryKeywords); ok {
			records = append(records, rec)
		}
		paired[[2]int{pair.Product.Row, pair.Product.Column}] = true
	}

	priceByRow := make(map[int]preprocessor.PriceRecord)
	for _, p := range result.TotalPrices {
		priceByRow[p.Row] = p
	}

	for _, product := range result.TotalProducts {
		if paired[[2]int{product.Row, product.Column}] {
			continue
		}
		price, hasPrice := priceByRow[product.Row]
		if rec, ok := fromComponents(product, price, hasPrice, supplierName, normalizer, categoryKeywords); ok {
			records = append(records, rec)
		}
	}

	unique := deduplicate(records)

	stats := BatchStats{Original: originalCount, Final: len(unique)}
	if originalCount > 0 {
		stats.SuccessRate = 100 * float64(len(unique)) / float64(originalCount)
	}

	return IngestBatch{Supplier: supplierName, Records: unique, Stats: stats}
}

func fromPair(pair preprocessor.Pair, supplier string, normalizer *normalize.Normalizer, categoryKeywords map[string]string) (Record, bool) {
	return buildRecord(pair.Product.Name, pair.Price.Value, true, minConfidence(pair.Product.Confidence, pair.Price.Confidence),
		pair.Product.Row, pair.Product.Column, supplier, normalizer, categoryKeywords)
}

func fromComponents(product preprocessor.ProductRecord, price preprocessor.PriceRecord, hasPrice bool, supplier string, normalizer *normalize.Normalizer, categoryKeywords map[string]string) (Record, bool) {
	value := 0.0
	if hasPrice {
		value = price.Value
	}
	return buildRecord(product.Name, value, hasPrice, product.Confidence, product.Row, product.Column, supplier, normalizer, categoryKeywords)
}

func buildRecord(name string, price float64, hasPrice bool, confidence float64, row, col int, supplier string, normalizer *normalize.Normalizer, categoryKeywords map[string]string) (Record, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Record{}, false
	}
	if !hasPrice || price <= 0 {
		return Record{}, false
	}

	standardized := normalizer.Name(trimmed)
	if standardized == "" {
		return Record{}, false
	}

	size, rest, hasSize := normalize.ExtractSize(trimmed)
	category := inferCategory(rest, categoryKeywords)

	var sizeQty *float64
	unit := ""
	if hasSize {
		q := size.Quantity
		sizeQty = &q
		unit = size.Unit
	}

	return Record{
		OriginalName:   trimmed,
		StandardName:   standardized,
		Price:          decimal.NewFromFloat(price),
		Currency:       DefaultCurrency,
		Unit:           unit,
		Size:           sizeQty,
		Category:       category,
		Confidence:     confidence,
		SourcePosition: formatPosition(row, col),
		Supplier:       supplier,
	}, true
}

func minConfidence(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func formatPosition(row, col int) string {
	return "R" + strconv.Itoa(row) + "C" + strconv.Itoa(col)
}

// inferCategory maps a (size-stripped) product name to a category via
// keyword containment, falling back to a small set of general-word
// rules and finally "general" (the closed category keyword table).
func inferCategory(name string, categoryKeywords map[string]string) string {
	lower := strings.ToLower(name)

	for keyword, category := range categoryKeywords {
		if strings.Contains(lower, keyword) {
			return category
		}
	}

	switch {
	case containsAny(lower, "fresh", "organic", "green", "leaf"):
		return "vegetables"
	case containsAny(lower, "seed", "powder", "dried"):
		return "spices"
	case containsAny(lower, "sauce", "paste", "vinegar"):
		return "condiments"
	case containsAny(lower, "cola", "juice", "water", "beer", "tea", "coffee"):
		return "beverages"
	case containsAny(lower, "rice", "wheat", "oats"):
		return "rice_grains"
	default:
		return "general"
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// deduplicate keeps, for each standardized name, the record with the
// highest confidence (the same dedup rule the preprocessor uses,
// reused at this layer for the final ingest list).
func deduplicate(records []Record) []Record {
	best := make(map[string]Record, len(records))
	order := make([]string, 0, len(records))

	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.StandardName))
		existing, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = r
			continue
		}
		if r.Confidence > existing.Confidence {
			best[key] = r
		}
	}

	out := make([]Record, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

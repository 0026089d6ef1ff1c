package preprocessor

import (
	"context"
	"testing"

	"github.com/badno/monito/internal/config"
)

func testCfg() config.PreprocessorConfig {
	return config.DefaultConfig().Preprocessor
}

func TestEmptyWorkbookHasZeroCompleteness(t *testing.T) {
	result := Aggregate(nil)
	if len(result.TotalProducts) != 0 || len(result.TotalPrices) != 0 {
		t.Fatal("expected empty collections for an empty workbook")
	}
	if result.Completeness != 0 {
		t.Errorf("Completeness = %v, want 0", result.Completeness)
	}
}

func TestSelectStrategyMultiColumnStructured(t *testing.T) {
	grid := Grid{
		{"Product Name", "Price", "Harga"},
		{"Rice 5kg", "100000", "95000"},
		{"Oil 1L", "25000", "24000"},
	}
	strategy, _ := selectStrategy(grid, 50, 20)
	if strategy != MultiColumnStructured {
		t.Errorf("strategy = %v, want %v", strategy, MultiColumnStructured)
	}
}

func TestSelectStrategySparseContactMixed(t *testing.T) {
	// Padded to a consistent width with blank cells so the density
	// sample (which counts every present cell, blank or not) reads low.
	grid := Grid{
		{"Contact: Budi", "", "", "", "", "", "", ""},
		{"Phone: 08123", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"Rice 5kg", "", "", "", "", "", "", "100000"},
	}
	strategy, _ := selectStrategy(grid, 50, 20)
	if strategy != SparseContactMixed {
		t.Errorf("strategy = %v, want %v", strategy, SparseContactMixed)
	}
}

func TestSparseSheetFindsSectionStart(t *testing.T) {
	// irregular layout: 5 contact header rows (the last one a section
	// marker keyword), product block from row 6
	grid := Grid{
		{"Supplier Contact Sheet", "", "", "", "", "", "", ""},
		{"Name: Budi Santoso", "", "", "", "", "", "", ""},
		{"Phone: 08123456789", "", "", "", "", "", "", ""},
		{"Address: Jakarta", "", "", "", "", "", "", ""},
		{"Item", "", "", "", "", "", "", ""},
		{"Rice 5kg", "", "", "", "", "", "", "100000"},
		{"Oil 1L", "", "", "", "", "", "", "25000"},
	}
	result := ProcessSheet(context.Background(), "sheet1", grid, testCfg())
	if result.Strategy != SparseContactMixed {
		t.Fatalf("strategy = %v, want %v", result.Strategy, SparseContactMixed)
	}
	if result.SectionStart != 5 {
		t.Errorf("SectionStart = %d, want 5", result.SectionStart)
	}
}

func TestSparseSheetFallsBackToProductPricePattern(t *testing.T) {
	// no section-marker keyword anywhere; the fallback [number |
	// product-like | price-like] pattern match on row 4 (skipping the
	// first 4 contact rows) should find it instead
	grid := Grid{
		{"Supplier Contact Sheet", "", "", "", "", "", "", ""},
		{"Name: Budi Santoso", "", "", "", "", "", "", ""},
		{"Phone: 08123456789", "", "", "", "", "", "", ""},
		{"Address: Jakarta", "", "", "", "", "", "", ""},
		{"1", "Rice 5kg", "100000", "", "", "", "", ""},
		{"2", "Oil 1L", "25000", "", "", "", "", ""},
	}
	result := ProcessSheet(context.Background(), "sheet1", grid, testCfg())
	if result.Strategy != SparseContactMixed {
		t.Fatalf("strategy = %v, want %v", result.Strategy, SparseContactMixed)
	}
	if result.SectionStart != 4 {
		t.Errorf("SectionStart = %d, want 4", result.SectionStart)
	}
}

func TestIrregularRecoveryGatesOnHeaderContext(t *testing.T) {
	// "Rice 5kg" has no product/price-header neighbor, so
	// irregular_recovery must not classify it, unlike adaptive_scan.
	grid := Grid{
		{"Rice 5kg", "", ""},
		{"", "", ""},
		{"", "", ""},
	}

	products, prices, _, _ := extractIrregular(grid)
	if len(products) != 0 || len(prices) != 0 {
		t.Fatalf("expected no extractions without header context, got products=%v prices=%v", products, prices)
	}

	adaptiveProducts, _, _, _ := extractAdaptive(grid)
	if len(adaptiveProducts) != 1 {
		t.Fatalf("expected adaptive_scan to classify the same cell without context, got %d", len(adaptiveProducts))
	}
}

func TestIrregularRecoveryExtractsWithHeaderNeighbor(t *testing.T) {
	// "Item" and "Harga" sit far enough apart that their 3x3
	// neighborhoods only gate the one cell meant for them.
	grid := Grid{
		{"Item", "", "", "", ""},
		{"Rice 5kg", "", "", "", ""},
		{"", "", "", "", ""},
		{"", "", "", "Harga", ""},
		{"", "", "", "100000", ""},
	}

	products, prices, _, _ := extractIrregular(grid)
	if len(products) != 1 || products[0].Name != "Rice 5kg" {
		t.Fatalf("expected Rice 5kg classified as product via header-keyword neighbor, got %+v", products)
	}
	if products[0].Confidence <= defaultProductConfidence {
		t.Errorf("expected confidence boosted above base product confidence, got %v", products[0].Confidence)
	}
	if len(prices) != 1 || prices[0].Value != 100000 {
		t.Fatalf("expected 100000 classified as price via header-keyword neighbor, got %+v", prices)
	}
	if prices[0].Confidence <= defaultPriceConfidence {
		t.Errorf("expected confidence boosted above base price confidence, got %v", prices[0].Confidence)
	}
}

func TestProductPriceLinkingSameRowNearestColumn(t *testing.T) {
	products := []ProductRecord{{Name: "Rice 5kg", Row: 1, Column: 0, Confidence: 0.8}}
	prices := []PriceRecord{
		{Value: 100000, Row: 1, Column: 1, Confidence: 0.9},
		{Value: 999, Row: 1, Column: 5, Confidence: 0.9},
	}
	pairs := linkPairs(products, prices)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].Price.Value != 100000 {
		t.Errorf("expected nearest-column price 100000, got %v", pairs[0].Price.Value)
	}
}

func TestDedupeProductsKeepsHigherConfidence(t *testing.T) {
	records := []ProductRecord{
		{Name: "Rice 5kg", Row: 0, Column: 0, Confidence: 0.7},
		{Name: "rice 5kg", Row: 1, Column: 0, Confidence: 0.9},
	}
	out := dedupeProducts(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 deduped record, got %d", len(out))
	}
	if out[0].Confidence != 0.9 {
		t.Errorf("expected higher-confidence record kept, got %v", out[0].Confidence)
	}
}

func TestCompletenessFormula(t *testing.T) {
	// completeness formula applies no intermediate cap before the final clamp
	got := completeness(10, 8, 5)
	want := 100*8.0/10.0 + 2*5.0 // 80 + 10 = 90
	if got != want {
		t.Errorf("completeness = %v, want %v", got, want)
	}
}

func TestCompletenessCapsAt100(t *testing.T) {
	got := completeness(10, 10, 50)
	if got != 100 {
		t.Errorf("completeness = %v, want capped at 100", got)
	}
}

func TestIsLikelyPriceCurrencyPrefixed(t *testing.T) {
	cases := []string{"Rp 15000", "$12.50", "USD 9.99"}
	for _, c := range cases {
		if _, ok := isLikelyPrice(c); !ok {
			t.Errorf("isLikelyPrice(%q) = false, want true", c)
		}
	}
}

func TestIsLikelyProductRejectsServiceTokens(t *testing.T) {
	for _, tok := range []string{"unit", "price", "no", "qty"} {
		if isLikelyProduct(tok) {
			t.Errorf("isLikelyProduct(%q) = true, want false (service token)", tok)
		}
	}
}

func TestUnsupportedExtensionIsParseFailure(t *testing.T) {
	result := Process("notes.txt", make([]byte, 200), testCfg())
	if result.Error == "" {
		t.Error("expected a parse failure error for an unsupported extension")
	}
	if len(result.TotalProducts) != 0 {
		t.Error("expected empty products on parse failure")
	}
}

func TestFileBelowMinSizeIsParseFailure(t *testing.T) {
	result := Process("tiny.xlsx", make([]byte, 10), testCfg())
	if result.Error == "" {
		t.Error("expected a parse failure for undersized input")
	}
}

package adapter

import (
	"testing"

	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/internal/preprocessor"
)

func testNormalizer() *normalize.Normalizer {
	cfg := config.DefaultConfig()
	return normalize.New(cfg.Tables.StopWords, cfg.Tables.BrandAliases)
}

func TestBuildFromPairsHappyPath(t *testing.T) {
	result := preprocessor.PreprocessResult{
		TotalProducts: []preprocessor.ProductRecord{
			{Name: "Fresh Tomato 1kg", Row: 1, Column: 0, Confidence: 0.8},
		},
		TotalPrices: []preprocessor.PriceRecord{
			{Value: 15000, Row: 1, Column: 1, Confidence: 0.9},
		},
		Pairs: []preprocessor.Pair{
			{
				Product: preprocessor.ProductRecord{Name: "Fresh Tomato 1kg", Row: 1, Column: 0, Confidence: 0.8},
				Price:   preprocessor.PriceRecord{Value: 15000, Row: 1, Column: 1, Confidence: 0.9},
			},
		},
	}

	batch := Build(result, "Toko Budi", testNormalizer(), config.DefaultConfig().Tables.CategoryKeywords)

	if len(batch.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(batch.Records))
	}
	rec := batch.Records[0]
	if rec.Category != "vegetables" {
		t.Errorf("Category = %q, want vegetables", rec.Category)
	}
	if rec.Unit != "kg" {
		t.Errorf("Unit = %q, want kg", rec.Unit)
	}
	if rec.Currency != DefaultCurrency {
		t.Errorf("Currency = %q, want %q", rec.Currency, DefaultCurrency)
	}
	if rec.SourcePosition != "R1C0" {
		t.Errorf("SourcePosition = %q, want R1C0", rec.SourcePosition)
	}
}

func TestBuildRejectsNonPositivePrice(t *testing.T) {
	result := preprocessor.PreprocessResult{
		TotalProducts: []preprocessor.ProductRecord{
			{Name: "Mystery Item", Row: 1, Column: 0, Confidence: 0.8},
		},
	}
	batch := Build(result, "Toko Budi", testNormalizer(), config.DefaultConfig().Tables.CategoryKeywords)
	if len(batch.Records) != 0 {
		t.Fatalf("expected 0 records for an orphan product with no price, got %d", len(batch.Records))
	}
	if batch.Stats.SuccessRate != 0 {
		t.Errorf("SuccessRate = %v, want 0", batch.Stats.SuccessRate)
	}
}

func TestBuildRejectsEmptyNormalizedName(t *testing.T) {
	result := preprocessor.PreprocessResult{
		TotalProducts: []preprocessor.ProductRecord{{Name: "the and or", Row: 1, Column: 0, Confidence: 0.8}},
		TotalPrices:   []preprocessor.PriceRecord{{Value: 5000, Row: 1, Column: 1, Confidence: 0.9}},
	}
	batch := Build(result, "Toko Budi", testNormalizer(), config.DefaultConfig().Tables.CategoryKeywords)
	if len(batch.Records) != 0 {
		t.Fatalf("expected 0 records when every token is a stop word, got %d", len(batch.Records))
	}
}

func TestBuildDeduplicatesKeepingHigherConfidence(t *testing.T) {
	result := preprocessor.PreprocessResult{
		TotalProducts: []preprocessor.ProductRecord{
			{Name: "Rice 5kg", Row: 1, Column: 0, Confidence: 0.6},
			{Name: "Rice 5kg", Row: 2, Column: 0, Confidence: 0.9},
		},
		TotalPrices: []preprocessor.PriceRecord{
			{Value: 50000, Row: 1, Column: 1, Confidence: 0.9},
			{Value: 52000, Row: 2, Column: 1, Confidence: 0.9},
		},
	}
	batch := Build(result, "Toko Budi", testNormalizer(), config.DefaultConfig().Tables.CategoryKeywords)
	if len(batch.Records) != 1 {
		t.Fatalf("expected 1 deduplicated record, got %d", len(batch.Records))
	}
	if batch.Records[0].Confidence != 0.9 {
		t.Errorf("expected the higher-confidence record to survive, got confidence %v", batch.Records[0].Confidence)
	}
}

func TestBuildStatsReflectOriginalAndFinalCounts(t *testing.T) {
	result := preprocessor.PreprocessResult{
		TotalProducts: []preprocessor.ProductRecord{
			{Name: "Oil 1L", Row: 1, Column: 0, Confidence: 0.8},
			{Name: "the and or", Row: 2, Column: 0, Confidence: 0.8},
		},
		TotalPrices: []preprocessor.PriceRecord{
			{Value: 30000, Row: 1, Column: 1, Confidence: 0.9},
			{Value: 1000, Row: 2, Column: 1, Confidence: 0.9},
		},
	}
	batch := Build(result, "Toko Budi", testNormalizer(), config.DefaultConfig().Tables.CategoryKeywords)
	if batch.Stats.Original != 2 {
		t.Errorf("Original = %d, want 2", batch.Stats.Original)
	}
	if batch.Stats.Final != 1 {
		t.Errorf("Final = %d, want 1", batch.Stats.Final)
	}
	if batch.Stats.SuccessRate != 50 {
		t.Errorf("SuccessRate = %v, want 50", batch.Stats.SuccessRate)
	}
}

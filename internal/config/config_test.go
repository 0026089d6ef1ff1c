package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Matching.FuzzyThreshold != 0.80 {
		t.Errorf("FuzzyThreshold = %v, want 0.80", cfg.Matching.FuzzyThreshold)
	}
	if cfg.Pricing.TrendAnalysisDays != 30 {
		t.Errorf("TrendAnalysisDays = %v, want 30", cfg.Pricing.TrendAnalysisDays)
	}
	if len(cfg.Tables.StopWords) == 0 {
		t.Error("expected default stop words to be populated")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Database.Postgres.Host = "db.internal"
	cfg.Matching.FuzzyThreshold = 0.9

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Database.Postgres.Host != "db.internal" {
		t.Errorf("Host = %q, want db.internal", loaded.Database.Postgres.Host)
	}
	if loaded.Matching.FuzzyThreshold != 0.9 {
		t.Errorf("FuzzyThreshold = %v, want 0.9", loaded.Matching.FuzzyThreshold)
	}
}

func TestBrandAliasesCoverKnownAliases(t *testing.T) {
	cfg := DefaultConfig()
	for _, alias := range []string{"coca cola", "coke", "cocacola"} {
		if got := cfg.Tables.BrandAliases[alias]; got != "coca-cola" {
			t.Errorf("BrandAliases[%q] = %q, want coca-cola", alias, got)
		}
	}
}

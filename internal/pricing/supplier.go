package pricing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/errs"
)

// SupplierAnalysis is analyze_supplier_competitiveness's result.
type SupplierAnalysis struct {
	SupplierName         string
	TotalProducts        int
	BestPriceProducts    int
	AverageCompetitiveness float64
	PriceVolatility      float64
	ReliabilityScore     float64
	Strengths            []string
	Weaknesses           []string
	RecommendedCategories []string
}

// AnalyzeSupplier builds a full competitiveness profile for name:
// overall performance, per-category breakdown, price volatility over
// the configured window, and derived strengths/weaknesses. A supplier
// with no recorded performance gets a zero-value analysis rather than
// an error.
func (e *Engine) AnalyzeSupplier(ctx context.Context, name string) (*SupplierAnalysis, error) {
	e.log.Info("analyzing supplier competitiveness", zap.String("supplier", name))

	performance, err := e.store.GetSupplierPerformance(ctx, name)
	if err != nil {
		if kind, ok := errs.KindOf(err); ok && kind == errs.NotFound {
			return &SupplierAnalysis{SupplierName: name}, nil
		}
		return nil, err
	}

	categoryPerf, err := e.store.GetSupplierCategoryPerformance(ctx, name)
	if err != nil {
		return nil, err
	}

	volatilityDays := e.cfg.SupplierVolatilityWindowDays
	if volatilityDays <= 0 {
		volatilityDays = 90
	}
	volatility, err := e.store.GetSupplierPriceVolatility(ctx, name, time.Duration(volatilityDays)*24*time.Hour)
	if err != nil {
		return nil, err
	}

	strengths, weaknesses := identifyStrengthsWeaknesses(performance, categoryPerf, volatility)
	recommended := recommendedCategories(categoryPerf)

	return &SupplierAnalysis{
		SupplierName:           name,
		TotalProducts:          performance.TotalProducts,
		BestPriceProducts:      performance.BestPriceProducts,
		AverageCompetitiveness: performance.PriceCompetitiveness,
		PriceVolatility:        volatility,
		ReliabilityScore:       performance.ReliabilityScore,
		Strengths:              strengths,
		Weaknesses:             weaknesses,
		RecommendedCategories:  recommended,
	}, nil
}

// identifyStrengthsWeaknesses derives human-readable strength/weakness
// tags from threshold checks on competitiveness, reliability, catalog
// breadth, volatility, and per-category standing.
func identifyStrengthsWeaknesses(performance catalog.SupplierPerformance, categoryPerf map[string]catalog.CategoryPerformance, volatility float64) ([]string, []string) {
	var strengths, weaknesses []string

	switch {
	case performance.PriceCompetitiveness >= 70:
		strengths = append(strengths, "high price competitiveness")
	case performance.PriceCompetitiveness <= 30:
		weaknesses = append(weaknesses, "low price competitiveness")
	}

	switch {
	case performance.ReliabilityScore >= 0.8:
		strengths = append(strengths, "high reliability")
	case performance.ReliabilityScore <= 0.5:
		weaknesses = append(weaknesses, "low reliability")
	}

	switch {
	case performance.TotalProducts >= 100:
		strengths = append(strengths, "wide product range")
	case performance.TotalProducts <= 20:
		weaknesses = append(weaknesses, "limited product range")
	}

	switch {
	case volatility <= 5:
		strengths = append(strengths, "stable pricing")
	case volatility >= 15:
		weaknesses = append(weaknesses, "high price volatility")
	}

	var strongCategories, weakCategories int
	for _, perf := range categoryPerf {
		if perf.Competitiveness >= 60 {
			strongCategories++
		}
		if perf.Competitiveness <= 20 {
			weakCategories++
		}
	}
	if strongCategories >= 3 {
		strengths = append(strengths, fmt.Sprintf("leads in %d categories", strongCategories))
	}
	if weakCategories >= 2 {
		weaknesses = append(weaknesses, fmt.Sprintf("weak standing in %d categories", weakCategories))
	}

	return strengths, weaknesses
}

// recommendedCategories returns, at most five, the categories where a
// supplier's competitiveness is at or above 50%, highest first.
func recommendedCategories(categoryPerf map[string]catalog.CategoryPerformance) []string {
	type entry struct {
		category        string
		competitiveness float64
	}
	entries := make([]entry, 0, len(categoryPerf))
	for category, perf := range categoryPerf {
		entries = append(entries, entry{category, perf.Competitiveness})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].competitiveness > entries[j].competitiveness })

	var out []string
	for _, e := range entries {
		if e.competitiveness >= 50 {
			out = append(out, e.category)
		}
		if len(out) == 5 {
			break
		}
	}
	return out
}

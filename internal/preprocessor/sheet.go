package preprocessor

import (
	"context"

	"github.com/badno/monito/internal/config"
)

// ProcessSheet runs full strategy selection, extraction, pairing,
// dedup, and completeness scoring for one grid. ctx's deadline is
// checked before and after extraction; if it has already expired the
// sheet returns a partial result with Strategy=TimedOut rather than an
// error.
func ProcessSheet(ctx context.Context, name string, g Grid, cfg config.PreprocessorConfig) SheetResult {
	if err := ctx.Err(); err != nil {
		return SheetResult{SheetName: name, Strategy: TimedOut}
	}

	strategy, _ := selectStrategy(g, cfg.MaxScanRows, cfg.MaxScanCols)

	products, prices, sectionStart, filledGaps := extractSheet(g, strategy)

	if err := ctx.Err(); err != nil {
		return SheetResult{
			SheetName: name,
			Strategy:  TimedOut,
			Products:  dedupeProducts(products),
			Prices:    dedupePrices(prices),
		}
	}

	products = dedupeProducts(products)
	prices = dedupePrices(prices)
	pairs := linkPairs(products, prices)

	return SheetResult{
		SheetName:    name,
		Strategy:     strategy,
		Products:     products,
		Prices:       prices,
		Pairs:        pairs,
		Completeness: completeness(len(products), len(pairs), filledGaps),
		SectionStart: sectionStart,
		FilledGaps:   filledGaps,
	}
}

// Aggregate combines per-sheet results into one PreprocessResult, the
// shape the data adapter consumes.
func Aggregate(sheets []SheetResult) PreprocessResult {
	result := PreprocessResult{Sheets: sheets}
	for _, s := range sheets {
		result.TotalProducts = append(result.TotalProducts, s.Products...)
		result.TotalPrices = append(result.TotalPrices, s.Prices...)
		result.Pairs = append(result.Pairs, s.Pairs...)
	}
	result.Completeness = completeness(len(result.TotalProducts), len(result.Pairs), totalFilledGaps(sheets))
	return result
}

func totalFilledGaps(sheets []SheetResult) int {
	total := 0
	for _, s := range sheets {
		total += s.FilledGaps
	}
	return total
}

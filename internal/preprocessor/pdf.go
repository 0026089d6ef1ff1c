package preprocessor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/badno/monito/internal/config"
	"github.com/ledongthuc/pdf"
)

// ProcessPDF recovers a PreprocessResult from PDF bytes. PDFs have no
// reliable cell geometry, so the recovered grid is one "row" per text
// line with no column structure; only sparse_contact_mixed and
// adaptive_scan meaningfully apply, since they don't depend on column
// alignment the way the other extraction strategies do.
func ProcessPDF(document []byte, cfg config.PreprocessorConfig) PreprocessResult {
	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return emptyResult(fmt.Sprintf("failed to open PDF: %v", err))
	}

	var lines []string
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	grid := gridFromLines(lines)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.SheetTimeoutSecs)*time.Second)
	defer cancel()

	result := ProcessSheet(ctx, "document", grid, cfg)
	if result.Strategy == MultiColumnStructured || result.Strategy == SingleColumnStructured || result.Strategy == IrregularRecovery {
		// No column geometry exists in a PDF line grid; fall back to the
		// strategies that don't depend on it.
		strategy := SparseContactMixed
		products, prices, sectionStart, filledGaps := extractSheet(grid, strategy)
		products = dedupeProducts(products)
		prices = dedupePrices(prices)
		pairs := linkPairs(products, prices)
		result = SheetResult{
			SheetName:    "document",
			Strategy:     strategy,
			Products:     products,
			Prices:       prices,
			Pairs:        pairs,
			Completeness: completeness(len(products), len(pairs), filledGaps),
			SectionStart: sectionStart,
			FilledGaps:   filledGaps,
		}
	}

	return Aggregate([]SheetResult{result})
}

// gridFromLines turns each text line into a one-cell-per-whitespace-run
// row, giving the shared classifiers something resembling columns to
// scan (a line like "Indomie Goreng   Rp 3.500" becomes four cells:
// "Indomie", "Goreng", "Rp", "3.500").
func gridFromLines(lines []string) Grid {
	grid := make(Grid, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		grid = append(grid, fields)
	}
	return grid
}

package preprocessor

import "strings"

const (
	defaultProductConfidence = 0.8
	defaultPriceConfidence   = 0.9
	adaptiveCellConfidence   = 0.7
	neighborContextBoost     = 0.1
)

// extractSheet runs the strategy-specific extraction over one grid and
// returns the raw (unpaired, un-deduplicated) products and prices.
func extractSheet(g Grid, strategy Strategy) (products []ProductRecord, prices []PriceRecord, sectionStart, filledGaps int) {
	switch strategy {
	case MultiColumnStructured, SingleColumnStructured:
		return extractStructured(g)
	case SparseContactMixed:
		return extractSparse(g)
	case IrregularRecovery:
		return extractIrregular(g)
	default: // AdaptiveScan
		return extractAdaptive(g)
	}
}

// findHeaderRow scans the whole grid (not just the sample window) for
// the first row with at least two header-keyword hits, returning its
// index, product columns, and price columns.
func findHeaderRow(g Grid) (headerRow int, productCols, priceCols []int) {
	for r, row := range g {
		hits := 0
		var pc, prc []int
		for c, cell := range row {
			if isLikelyHeader(cell, productHeaderKeywords) {
				hits++
				pc = append(pc, c)
			}
			if isLikelyHeader(cell, priceHeaderKeywords) {
				hits++
				prc = append(prc, c)
			}
		}
		if hits >= 2 {
			return r, pc, prc
		}
	}
	return -1, nil, nil
}

func extractStructured(g Grid) (products []ProductRecord, prices []PriceRecord, sectionStart, filledGaps int) {
	headerRow, productCols, priceCols := findHeaderRow(g)
	if headerRow < 0 {
		return extractAdaptive(g)
	}
	if len(productCols) == 0 {
		productCols = []int{0}
	}

	for r := headerRow + 1; r < len(g); r++ {
		row := g[r]

		for _, pc := range productCols {
			if pc >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[pc])
			if isLikelyProduct(cell) {
				products = append(products, ProductRecord{
					Name: cell, Row: r, Column: pc, Confidence: defaultProductConfidence,
				})
			}
		}

		for _, prc := range priceCols {
			if prc >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[prc])
			if v, ok := isLikelyPrice(cell); ok {
				prices = append(prices, PriceRecord{
					Value: v, Original: cell, Row: r, Column: prc, Confidence: defaultPriceConfidence,
				})
				continue
			}
			// Gap recovery: scan the rest of the row for any price-like
			// cell and credit it to this column's position.
			for c, other := range row {
				if c == prc {
					continue
				}
				if v, ok := isLikelyPrice(other); ok {
					prices = append(prices, PriceRecord{
						Value: v, Original: other, Row: r, Column: prc, Confidence: defaultPriceConfidence,
					})
					filledGaps++
					break
				}
			}
		}
	}

	return products, prices, headerRow + 1, filledGaps
}

// findSectionMarkerRow scans the first 50 rows (and first 10 columns
// of each) for a cell containing one of sectionMarkerKeywords,
// returning the row after the marker, or -1 if none is found.
func findSectionMarkerRow(g Grid) int {
	maxRow := len(g)
	if maxRow > 50 {
		maxRow = 50
	}
	for r := 0; r < maxRow; r++ {
		row := g[r]
		maxCol := len(row)
		if maxCol > 10 {
			maxCol = 10
		}
		for c := 0; c < maxCol; c++ {
			cell := strings.ToLower(strings.TrimSpace(row[c]))
			if cell == "" {
				continue
			}
			for _, marker := range sectionMarkerKeywords {
				if strings.Contains(cell, marker) {
					return r + 1
				}
			}
		}
	}
	return -1
}

// findProductPricePatternRow scans rows (skipping the first few, which
// are assumed to be contact info) for the first one whose first three
// non-blank cells look like [number-or-text, product-like, price-like],
// returning that row, or -1 if none matches.
func findProductPricePatternRow(g Grid) int {
	const skipRows = 4
	maxRow := len(g)
	if maxRow > 50 {
		maxRow = 50
	}
	for r := skipRows; r < maxRow; r++ {
		row := g[r]
		var cells []string
		for _, cell := range row {
			trimmed := strings.TrimSpace(cell)
			if trimmed != "" {
				cells = append(cells, trimmed)
			}
			if len(cells) == 3 {
				break
			}
		}
		if len(cells) < 3 {
			continue
		}
		if isLikelyProduct(cells[1]) {
			if _, ok := isLikelyPrice(cells[2]); ok {
				return r
			}
		}
	}
	return -1
}

// extractSparse locates where the product section starts in an
// otherwise sparse, contact-info-heavy sheet, then treats everything
// from there on as adaptive per-cell classification.
//
// The section start is found in two stages: first by scanning for a
// row containing one of sectionMarkerKeywords (the product section
// begins the row after the marker), then, if no marker is found, by
// falling back to the first row whose first three non-blank cells
// match the pattern [number-or-text, product-like, price-like].
func extractSparse(g Grid) (products []ProductRecord, prices []PriceRecord, sectionStart, filledGaps int) {
	sectionStart = findSectionMarkerRow(g)
	if sectionStart < 0 {
		sectionStart = findProductPricePatternRow(g)
	}
	if sectionStart < 0 {
		sectionStart = 0
	}

	for r := sectionStart; r < len(g); r++ {
		row := g[r]
		for c, cell := range row {
			trimmed := strings.TrimSpace(cell)
			if trimmed == "" {
				continue
			}
			if v, ok := isLikelyPrice(trimmed); ok {
				prices = append(prices, PriceRecord{Value: v, Original: trimmed, Row: r, Column: c, Confidence: defaultPriceConfidence})
				continue
			}
			if isLikelyProduct(trimmed) {
				products = append(products, ProductRecord{Name: trimmed, Row: r, Column: c, Confidence: defaultProductConfidence})
			}
		}
	}

	return products, prices, sectionStart, 0
}

// cellHeaderContext reports whether any cell in r,c's 3x3 neighborhood
// is a product-header or price-header keyword.
func cellHeaderContext(g Grid, r, c int) (isProductContext, isPriceContext bool) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			nr, nc := r+dr, c+dc
			if nr < 0 || nr >= len(g) {
				continue
			}
			row := g[nr]
			if nc < 0 || nc >= len(row) {
				continue
			}
			neighbor := strings.TrimSpace(row[nc])
			if neighbor == "" {
				continue
			}
			if isLikelyHeader(neighbor, productHeaderKeywords) {
				isProductContext = true
			} else if isLikelyHeader(neighbor, priceHeaderKeywords) {
				isPriceContext = true
			}
		}
	}
	return isProductContext, isPriceContext
}

// extractIrregular classifies a cell only when its 3x3 neighborhood
// context gates it: a product-header keyword neighbor gates a product
// attempt, a price-header keyword neighbor gates a price attempt (product
// takes priority when both are present). A gated cell that also passes
// its generic classifier is extracted with confidence boosted by
// neighborContextBoost.
func extractIrregular(g Grid) (products []ProductRecord, prices []PriceRecord, sectionStart, filledGaps int) {
	for r, row := range g {
		for c, cell := range row {
			trimmed := strings.TrimSpace(cell)
			if trimmed == "" {
				continue
			}

			isProductContext, isPriceContext := cellHeaderContext(g, r, c)
			switch {
			case isProductContext:
				if isLikelyProduct(trimmed) {
					conf := defaultProductConfidence + neighborContextBoost
					if conf > 1.0 {
						conf = 1.0
					}
					products = append(products, ProductRecord{Name: trimmed, Row: r, Column: c, Confidence: conf})
				}
			case isPriceContext:
				if v, ok := isLikelyPrice(trimmed); ok {
					conf := defaultPriceConfidence + neighborContextBoost
					if conf > 1.0 {
						conf = 1.0
					}
					prices = append(prices, PriceRecord{Value: v, Original: trimmed, Row: r, Column: c, Confidence: conf})
				}
			}
		}
	}

	return products, prices, 0, 0
}

// extractAdaptive independently classifies every cell in the grid with
// no positional context, the fallback used when no stronger structure
// is detected.
func extractAdaptive(g Grid) (products []ProductRecord, prices []PriceRecord, sectionStart, filledGaps int) {
	for r, row := range g {
		for c, cell := range row {
			trimmed := strings.TrimSpace(cell)
			if trimmed == "" {
				continue
			}
			if v, ok := isLikelyPrice(trimmed); ok {
				prices = append(prices, PriceRecord{Value: v, Original: trimmed, Row: r, Column: c, Confidence: adaptiveCellConfidence})
				continue
			}
			if isLikelyProduct(trimmed) {
				products = append(products, ProductRecord{Name: trimmed, Row: r, Column: c, Confidence: adaptiveCellConfidence})
			}
		}
	}
	return products, prices, 0, 0
}

package preprocessor

// Grid is a row-major slice of cell text, as produced by any of the
// three extractors (xlsx, xls, pdf-lines). Rows may differ in length.
type Grid [][]string

// sampleStats summarizes a bounded sample of a grid, used to pick a
// strategy.
type sampleStats struct {
	dataDensity        float64
	headerIndicatorCount int
	priceColumnCount     int
	hasClearHeaders      bool
}

func (g Grid) sample(maxRows, maxCols int) sampleStats {
	rows := len(g)
	if rows > maxRows {
		rows = maxRows
	}

	var filled, total int
	headerRow := -1

	for r := 0; r < rows; r++ {
		row := g[r]
		cols := len(row)
		if cols > maxCols {
			cols = maxCols
		}
		rowHeaderHits := 0
		for c := 0; c < cols; c++ {
			total++
			cell := row[c]
			if cell != "" {
				filled++
			}
			if isLikelyHeader(cell, productHeaderKeywords) || isLikelyHeader(cell, priceHeaderKeywords) {
				rowHeaderHits++
			}
		}
		if headerRow == -1 && rowHeaderHits >= 2 {
			headerRow = r
		}
	}

	stats := sampleStats{}
	if total > 0 {
		stats.dataDensity = float64(filled) / float64(total)
	}
	stats.hasClearHeaders = headerRow >= 0

	if headerRow >= 0 {
		header := g[headerRow]
		cols := len(header)
		if cols > maxCols {
			cols = maxCols
		}
		for c := 0; c < cols; c++ {
			if isLikelyHeader(header[c], productHeaderKeywords) {
				stats.headerIndicatorCount++
			}
			if isLikelyHeader(header[c], priceHeaderKeywords) {
				stats.priceColumnCount++
			}
		}
	} else {
		// No clear header row: classify each column independently by
		// sampling up to 10 data rows per the column-heuristic rule
		// (>=3/10 rows passing is_likely_product/is_likely_price).
		cols := 0
		if rows > 0 {
			cols = len(g[0])
			if cols > maxCols {
				cols = maxCols
			}
		}
		for c := 0; c < cols; c++ {
			productHits, priceHits, sampled := 0, 0, 0
			for r := 0; r < rows && sampled < 10; r++ {
				if c >= len(g[r]) {
					continue
				}
				cell := g[r][c]
				if cell == "" {
					continue
				}
				sampled++
				if isLikelyProduct(cell) {
					productHits++
				}
				if _, ok := isLikelyPrice(cell); ok {
					priceHits++
				}
			}
			if productHits >= 3 {
				stats.headerIndicatorCount++
			}
			if priceHits >= 3 {
				stats.priceColumnCount++
			}
		}
	}

	return stats
}

// selectStrategy picks an extraction strategy for the given grid
// following the same extraction-strategy decision rule.
func selectStrategy(g Grid, maxRows, maxCols int) (Strategy, sampleStats) {
	stats := g.sample(maxRows, maxCols)

	switch {
	case stats.hasClearHeaders && stats.priceColumnCount >= 2:
		return MultiColumnStructured, stats
	case stats.hasClearHeaders && stats.priceColumnCount == 1:
		return SingleColumnStructured, stats
	case stats.dataDensity < 0.3:
		return SparseContactMixed, stats
	case stats.dataDensity < 0.5 && !stats.hasClearHeaders:
		return IrregularRecovery, stats
	default:
		return AdaptiveScan, stats
	}
}

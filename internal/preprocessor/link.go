package preprocessor

import (
	"fmt"
	"strings"
)

// linkPairs pairs each product with the nearest price on the same row
// by column distance. Pair confidence is derived downstream from the
// product and price records it carries.
func linkPairs(products []ProductRecord, prices []PriceRecord) []Pair {
	byRow := make(map[int][]PriceRecord)
	for _, p := range prices {
		byRow[p.Row] = append(byRow[p.Row], p)
	}

	var pairs []Pair
	for _, prod := range products {
		candidates := byRow[prod.Row]
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0]
		bestDist := abs(best.Column - prod.Column)
		for _, cand := range candidates[1:] {
			if d := abs(cand.Column - prod.Column); d < bestDist {
				best, bestDist = cand, d
			}
		}
		pairs = append(pairs, Pair{
			Product: ProductRecord{Name: prod.Name, Row: prod.Row, Column: prod.Column, Confidence: prod.Confidence},
			Price:   PriceRecord{Value: best.Value, Original: best.Original, Row: best.Row, Column: best.Column, Confidence: best.Confidence},
		})
	}
	return pairs
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// dedupeProducts keeps, for each lowercase-trimmed name, the record with
// the highest confidence.
func dedupeProducts(records []ProductRecord) []ProductRecord {
	best := make(map[string]ProductRecord)
	order := make([]string, 0, len(records))
	for _, r := range records {
		key := strings.ToLower(strings.TrimSpace(r.Name))
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
	out := make([]ProductRecord, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// dedupePrices keeps, for each row:column position, the record with the
// highest confidence.
func dedupePrices(records []PriceRecord) []PriceRecord {
	best := make(map[string]PriceRecord)
	order := make([]string, 0, len(records))
	for _, r := range records {
		key := fmt.Sprintf("%d:%d", r.Row, r.Column)
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
	out := make([]PriceRecord, 0, len(order))
	for _, key := range order {
		out = append(out, best[key])
	}
	return out
}

// completeness implements the completeness-scoring formula literally:
// min(100, 100*pairs/products + 2*filled_gaps), reporting-only. See
// DESIGN.md Open Question (c) for why no intermediate cap on the
// recovery bonus is applied here, unlike the original Python source.
func completeness(numProducts, numPairs, filledGaps int) float64 {
	if numProducts == 0 {
		return 0
	}
	score := 100*float64(numPairs)/float64(numProducts) + 2*float64(filledGaps)
	if score > 100 {
		score = 100
	}
	return score
}

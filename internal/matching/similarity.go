package matching

import (
	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/unitalgebra"
)

// sizeSimilarityTolerance is the relative-difference threshold below
// which two sizes get a smooth partial score rather than falling
// straight through to the linear remainder (10% tolerance band).
const sizeSimilarityTolerance = 0.1

// nameSimilarity scores two already-normalized product names using the
// best of four fuzzy ratio methods.
func nameSimilarity(nameA, nameB string) float64 {
	if nameA == "" || nameB == "" {
		return 0.0
	}
	return bestRatio(nameA, nameB)
}

// brandSimilarity scores two already-normalized brand names. Both
// absent scores as a full match (size/name carry the comparison
// instead); one absent is a half match; otherwise exact-after-
// normalization beats fuzzy ratio.
func brandSimilarity(brandA, brandB string) float64 {
	if brandA == "" && brandB == "" {
		return 1.0
	}
	if brandA == "" || brandB == "" {
		return 0.5
	}
	if brandA == brandB {
		return 1.0
	}
	return ratio(brandA, brandB)
}

// sizeSimilarity scores two (quantity, unit) pairs. Both absent scores
// as a full match; one absent is a half match; an unresolvable unit
// also falls back to a half match. Within sizeSimilarityTolerance the
// score degrades smoothly to 0.9 at the tolerance boundary; beyond it,
// the score falls linearly to 0.
func sizeSimilarity(sizeA *float64, unitA string, sizeB *float64, unitB string) float64 {
	if sizeA == nil && sizeB == nil {
		return 1.0
	}
	if sizeA == nil || sizeB == nil {
		return 0.5
	}

	baseA, okA := unitalgebra.ToBaseUnits(*sizeA, unitA)
	baseB, okB := unitalgebra.ToBaseUnits(*sizeB, unitB)
	if !okA || !okB || !unitalgebra.Comparable(unitA, unitB) {
		return 0.5
	}

	if baseA == 0 && baseB == 0 {
		return 1.0
	}

	diff := baseA - baseB
	if diff < 0 {
		diff = -diff
	}
	maxVal := baseA
	if baseB > maxVal {
		maxVal = baseB
	}
	if maxVal == 0 {
		return 1.0
	}

	relativeDiff := diff / maxVal
	if relativeDiff < 0.001 {
		return 1.0
	}
	if relativeDiff <= sizeSimilarityTolerance {
		return 1.0 - (relativeDiff/sizeSimilarityTolerance)*0.1
	}
	score := 1.0 - relativeDiff
	if score < 0 {
		return 0
	}
	return score
}

// weighted combines the three component scores into the overall
// similarity, weighted 0.5/0.3/0.2 name/brand/size.
func weighted(name, brand, size float64) float64 {
	return name*0.5 + brand*0.3 + size*0.2
}

func detailedSimilarity(nameA, brandA string, sizeA *float64, unitA string,
	nameB, brandB string, sizeB *float64, unitB string) (catalog.MatchDetails, float64) {
	details := catalog.MatchDetails{
		NameSimilarity:  nameSimilarity(nameA, nameB),
		BrandSimilarity: brandSimilarity(brandA, brandB),
		SizeSimilarity:  sizeSimilarity(sizeA, unitA, sizeB, unitB),
	}
	return details, weighted(details.NameSimilarity, details.BrandSimilarity, details.SizeSimilarity)
}

// confidenceLevel maps an overall similarity score to a human-facing
// confidence bucket.
func confidenceLevel(similarity float64) string {
	switch {
	case similarity >= 0.95:
		return "high"
	case similarity >= 0.85:
		return "medium"
	case similarity >= 0.75:
		return "low"
	default:
		return "very_low"
	}
}

// Package matching implements the product matching engine:
// exact-match detection, fuzzy name/brand/size similarity scoring, and
// the batch/auto-merge operations built on top of them.
package matching

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ratio is a Levenshtein-distance-based similarity in [0,1], the Go
// equivalent of rapidfuzz.fuzz.ratio/100. Two empty strings are
// identical (ratio 1); one empty and one non-empty are maximally
// dissimilar (ratio 0).
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 1.0 - float64(dist)/float64(maxLen)
	if score < 0 {
		score = 0
	}
	return score
}

// partialRatio finds the best-aligned substring of the longer string
// against the shorter one and scores that window, so "coke zero" and
// "coca cola zero 500ml" can still share a high partial ratio even
// though their lengths differ wildly.
func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if shorter == "" {
		return ratio(a, b)
	}
	if len(shorter) >= len(longer) {
		return ratio(a, b)
	}

	best := 0.0
	window := len(shorter)
	for i := 0; i+window <= len(longer); i++ {
		r := ratio(shorter, longer[i:i+window])
		if r > best {
			best = r
		}
		if best == 1.0 {
			break
		}
	}
	return best
}

// tokenSortRatio compares two strings after sorting each one's
// whitespace-separated tokens alphabetically, so word-order
// differences ("goreng indomie" vs "indomie goreng") don't depress
// the score.
func tokenSortRatio(a, b string) float64 {
	return ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// tokenSetRatio is the fuzzywuzzy token-set algorithm: it builds the
// sorted intersection of tokens plus each side's leftover tokens, then
// takes the best ratio among the three pairings. This rewards strings
// that share most of their words even when one has extra qualifiers
// the other lacks ("indomie goreng" vs "indomie goreng spicy 85g").
func tokenSetRatio(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)

	setA := toSet(tokensA)
	setB := toSet(tokensB)

	var intersection, onlyA, onlyB []string
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection = append(intersection, t)
		} else {
			onlyA = append(onlyA, t)
		}
	}
	for t := range setB {
		if _, ok := setA[t]; !ok {
			onlyB = append(onlyB, t)
		}
	}
	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sorted := strings.Join(intersection, " ")
	combinedA := strings.TrimSpace(sorted + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sorted + " " + strings.Join(onlyB, " "))

	best := ratio(sorted, combinedA)
	if r := ratio(sorted, combinedB); r > best {
		best = r
	}
	if r := ratio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// bestRatio takes the maximum of all four fuzzy comparison methods,
// matching _calculate_name_similarity's "take the max" strategy.
func bestRatio(a, b string) float64 {
	best := ratio(a, b)
	if r := partialRatio(a, b); r > best {
		best = r
	}
	if r := tokenSortRatio(a, b); r > best {
		best = r
	}
	if r := tokenSetRatio(a, b); r > best {
		best = r
	}
	if best > 1.0 {
		best = 1.0
	}
	return best
}

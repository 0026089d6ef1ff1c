// Package normalize implements name and brand canonicalization and size
// extraction. Stop words and brand aliases are supplied by
// the caller at construction — this package owns no ambient tables.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// sizePattern matches a number anywhere in the text (dot or comma
// decimal separator) followed, optionally after whitespace, by a unit
// token, e.g. "250g", "1.5kg", "1,5 l".
var sizePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(kg|kilogram|kilo|g|gram|gr|lb|lbs|pound|ml|milliliter|cc|l|liter|litre|fl_oz|gallon|pcs|piece|pieces|pc|box|pack|packet|can|bottle|jar|unit|units)\b`)

// Normalizer canonicalizes product names and brand names using
// caller-supplied stop words and brand aliases.
type Normalizer struct {
	stopWords    map[string]struct{}
	brandAliases map[string]string
	caser        cases.Caser
}

// New builds a Normalizer from the given stop word list and brand alias
// map. Both are copied so later mutation by the caller does not affect
// an already-constructed Normalizer.
func New(stopWords []string, brandAliases map[string]string) *Normalizer {
	sw := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		sw[strings.ToLower(w)] = struct{}{}
	}
	aliases := make(map[string]string, len(brandAliases))
	for k, v := range brandAliases {
		aliases[strings.ToLower(k)] = strings.ToLower(v)
	}
	return &Normalizer{
		stopWords:    sw,
		brandAliases: aliases,
		caser:        cases.Lower(language.Und),
	}
}

// Name canonicalizes a product name: lowercase, runs of non-alphanumeric
// characters collapse to a single space, stop words are dropped, and
// whitespace is collapsed. Idempotent: Name(Name(x)) == Name(x).
func (n *Normalizer) Name(raw string) string {
	lower := n.caser.String(raw)
	spaced := nonAlnumRun.ReplaceAllString(lower, " ")
	fields := strings.Fields(spaced)

	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, isStop := n.stopWords[f]; isStop {
			continue
		}
		kept = append(kept, f)
	}
	return whitespaceRun.ReplaceAllString(strings.Join(kept, " "), " ")
}

// Brand canonicalizes a brand name: lowercase, punctuation stripped,
// then resolved through the alias map. An unknown brand passes through
// unchanged (lowercased).
func (n *Normalizer) Brand(raw string) string {
	lower := n.caser.String(strings.TrimSpace(raw))
	stripped := strings.TrimSpace(nonAlnumRun.ReplaceAllString(lower, " "))
	stripped = whitespaceRun.ReplaceAllString(stripped, " ")
	if canonical, ok := n.brandAliases[stripped]; ok {
		return canonical
	}
	// also try the raw lowercase form (aliases may be keyed with hyphens)
	if canonical, ok := n.brandAliases[lower]; ok {
		return canonical
	}
	return stripped
}

// Size holds a (quantity, unit) pair extracted from a product name.
type Size struct {
	Quantity float64
	Unit     string
}

// ExtractSize finds the first number+unit-token match in name and
// returns the parsed size plus the name with the matched span removed.
// ok is false if no size token was found.
func ExtractSize(name string) (size Size, rest string, ok bool) {
	loc := sizePattern.FindStringSubmatchIndex(name)
	if loc == nil {
		return Size{}, name, false
	}

	numStr := name[loc[2]:loc[3]]
	unitStr := name[loc[4]:loc[5]]
	numStr = strings.ReplaceAll(numStr, ",", ".")

	qty, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return Size{}, name, false
	}

	rest = whitespaceRun.ReplaceAllString(name[:loc[0]]+" "+name[loc[1]:], " ")
	rest = strings.TrimSpace(rest)

	return Size{Quantity: qty, Unit: strings.ToLower(unitStr)}, rest, true
}

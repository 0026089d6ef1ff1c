// Package unitalgebra classifies unit strings into a family (weight,
// volume, count) and a scalar multiplier to that family's base unit
// (gram, milliliter, piece). It is the single source of truth for unit
// conversion used by the matcher, the pricing engine, and the adapter.
package unitalgebra

import "strings"

// Family is a group of units that can be compared to one another.
type Family string

const (
	Weight Family = "weight"
	Volume Family = "volume"
	Count  Family = "count"
)

// Unit is a resolved unit: its family and its multiplier to the family's
// base unit (gram for weight, milliliter for volume, piece for count).
type Unit struct {
	Family     Family
	ToBase     float64 // multiply a quantity in this unit by ToBase to get base units
	BaseSymbol string
}

// conversions is the closed unit table, the union of the two tables found
// in the original product_matching_engine.py and price_comparison_engine.py
// (see DESIGN.md for the reconciliation rationale).
var conversions = map[string]Unit{
	// weight -> grams
	"g":        {Weight, 1, "g"},
	"gram":     {Weight, 1, "g"},
	"gr":       {Weight, 1, "g"},
	"kg":       {Weight, 1000, "g"},
	"kilogram": {Weight, 1000, "g"},
	"kilo":     {Weight, 1000, "g"},
	"lb":       {Weight, 453.592, "g"},
	"lbs":      {Weight, 453.592, "g"},
	"pound":    {Weight, 453.592, "g"},

	// volume -> milliliters
	"ml":         {Volume, 1, "ml"},
	"milliliter": {Volume, 1, "ml"},
	"cc":         {Volume, 1, "ml"},
	"l":          {Volume, 1000, "ml"},
	"liter":      {Volume, 1000, "ml"},
	"litre":      {Volume, 1000, "ml"},
	"fl_oz":      {Volume, 29.5735, "ml"},
	"gallon":     {Volume, 3785.41, "ml"},

	// count -> pieces
	"pcs":    {Count, 1, "pcs"},
	"piece":  {Count, 1, "pcs"},
	"pieces": {Count, 1, "pcs"},
	"pc":     {Count, 1, "pcs"},
	"box":    {Count, 1, "pcs"},
	"pack":   {Count, 1, "pcs"},
	"packet": {Count, 1, "pcs"},
	"can":    {Count, 1, "pcs"},
	"bottle": {Count, 1, "pcs"},
	"jar":    {Count, 1, "pcs"},
	"unit":   {Count, 1, "pcs"},
	"units":  {Count, 1, "pcs"},
}

// Resolve looks up a unit string, case-insensitively, trimmed. The second
// return value is false for an unknown unit — a soft failure, never an
// error.
func Resolve(unitStr string) (Unit, bool) {
	key := strings.ToLower(strings.TrimSpace(unitStr))
	u, ok := conversions[key]
	return u, ok
}

// Comparable reports whether two unit strings belong to the same family
// and can therefore have their sizes compared directly.
func Comparable(a, b string) bool {
	ua, ok := Resolve(a)
	if !ok {
		return false
	}
	ub, ok := Resolve(b)
	if !ok {
		return false
	}
	return ua.Family == ub.Family
}

// ToBaseUnits converts a quantity expressed in unitStr into its family's
// base units. ok is false when the unit is unknown.
func ToBaseUnits(quantity float64, unitStr string) (base float64, ok bool) {
	u, ok := Resolve(unitStr)
	if !ok {
		return 0, false
	}
	return quantity * u.ToBase, true
}

// SizesEqual reports whether two (quantity, unit) sizes are equal within
// the family-relative tolerance (used by the matcher's exact-match gate,
// a stricter check than the fuzzy size_similarity scoring function).
func SizesEqual(qtyA float64, unitA string, qtyB float64, unitB string, tolerance float64) bool {
	baseA, okA := ToBaseUnits(qtyA, unitA)
	baseB, okB := ToBaseUnits(qtyB, unitB)
	if !okA || !okB {
		return false
	}
	if !Comparable(unitA, unitB) {
		return false
	}
	if baseA == 0 && baseB == 0 {
		return true
	}
	maxVal := baseA
	if baseB > maxVal {
		maxVal = baseB
	}
	if maxVal == 0 {
		return true
	}
	diff := baseA - baseB
	if diff < 0 {
		diff = -diff
	}
	return diff/maxVal <= tolerance
}

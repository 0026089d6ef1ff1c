package unitalgebra

import "testing"

func TestResolveKnownUnits(t *testing.T) {
	cases := []struct {
		unit   string
		family Family
		toBase float64
	}{
		{"KG", Weight, 1000},
		{" kg ", Weight, 1000},
		{"lb", Weight, 453.592},
		{"l", Volume, 1000},
		{"fl_oz", Volume, 29.5735},
		{"pcs", Count, 1},
		{"Box", Count, 1},
	}
	for _, c := range cases {
		u, ok := Resolve(c.unit)
		if !ok {
			t.Fatalf("Resolve(%q): expected known unit", c.unit)
		}
		if u.Family != c.family {
			t.Errorf("Resolve(%q).Family = %v, want %v", c.unit, u.Family, c.family)
		}
		if u.ToBase != c.toBase {
			t.Errorf("Resolve(%q).ToBase = %v, want %v", c.unit, u.ToBase, c.toBase)
		}
	}
}

func TestResolveUnknownUnit(t *testing.T) {
	if _, ok := Resolve("parsecs"); ok {
		t.Fatal("Resolve(parsecs): expected unknown unit, soft failure")
	}
}

func TestComparableRequiresSameFamily(t *testing.T) {
	if !Comparable("kg", "g") {
		t.Error("kg and g should be comparable (same family)")
	}
	if Comparable("kg", "l") {
		t.Error("kg and l should not be comparable (different families)")
	}
	if Comparable("kg", "nonsense") {
		t.Error("unknown unit should never be comparable")
	}
}

func TestToBaseUnitsReversible(t *testing.T) {
	// weight normalization: 5kg -> 5000g, reversible
	base, ok := ToBaseUnits(5, "kg")
	if !ok || base != 5000 {
		t.Fatalf("ToBaseUnits(5, kg) = %v, %v; want 5000, true", base, ok)
	}
	back := base / conversions["kg"].ToBase
	if diff := back - 5; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("round trip not lossless within 1e-6: got %v", back)
	}
}

func TestSizesEqualTolerance(t *testing.T) {
	// 5% tolerance, used by the matcher's exact-match gate.
	if !SizesEqual(100, "g", 104, "g", 0.05) {
		t.Error("104g should be within 5%% of 100g")
	}
	if SizesEqual(100, "g", 110, "g", 0.05) {
		t.Error("110g should be outside 5%% of 100g")
	}
	if SizesEqual(1, "kg", 1, "l", 0.05) {
		t.Error("cross-family sizes must never be considered equal")
	}
}

package normalize

import "testing"

func testNormalizer() *Normalizer {
	return New(
		[]string{"the", "and", "or", "with", "for", "premium", "original"},
		map[string]string{
			"coca cola": "coca-cola",
			"coca-cola": "coca-cola",
			"coke":      "coca-cola",
			"cocacola":  "coca-cola",
		},
	)
}

func TestNameIdempotent(t *testing.T) {
	n := testNormalizer()
	once := n.Name("Premium Indomie Goreng, 85g!!")
	twice := n.Name(once)
	if once != twice {
		t.Errorf("normalization not idempotent: %q vs %q", once, twice)
	}
}

func TestNameDropsStopWordsAndCollapsesWhitespace(t *testing.T) {
	n := testNormalizer()
	got := n.Name("The Original Classic  Sauce")
	want := "classic sauce"
	if got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestBrandAliasConfluence(t *testing.T) {
	n := testNormalizer()
	cases := []string{"Coca Cola", "Coca-Cola", "coke", "CocaCola"}
	for _, c := range cases {
		if got := n.Brand(c); got != "coca-cola" {
			t.Errorf("Brand(%q) = %q, want coca-cola", c, got)
		}
	}
}

func TestBrandUnknownPassesThrough(t *testing.T) {
	n := testNormalizer()
	if got := n.Brand("Indofood"); got != "indofood" {
		t.Errorf("Brand(unknown) = %q, want indofood", got)
	}
}

func TestExtractSizeFirstMatchWins(t *testing.T) {
	size, rest, ok := ExtractSize("Indomie Goreng 85g Spicy 2kg")
	if !ok {
		t.Fatal("expected a size match")
	}
	if size.Quantity != 85 || size.Unit != "g" {
		t.Errorf("got size %+v, want {85 g}", size)
	}
	if rest != "Indomie Goreng Spicy 2kg" {
		t.Errorf("rest = %q", rest)
	}
}

func TestExtractSizeDecimalSeparators(t *testing.T) {
	size, _, ok := ExtractSize("Minyak Goreng 1,5 l")
	if !ok || size.Quantity != 1.5 || size.Unit != "l" {
		t.Errorf("got %+v, %v, want {1.5 l} true", size, ok)
	}

	size2, _, ok2 := ExtractSize("Minyak Goreng 1.5l")
	if !ok2 || size2.Quantity != 1.5 || size2.Unit != "l" {
		t.Errorf("got %+v, %v, want {1.5 l} true", size2, ok2)
	}
}

func TestExtractSizeNoMatch(t *testing.T) {
	_, rest, ok := ExtractSize("Generic Item No Size")
	if ok {
		t.Error("expected no size match")
	}
	if rest != "Generic Item No Size" {
		t.Errorf("rest should be unchanged, got %q", rest)
	}
}

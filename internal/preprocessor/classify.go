package preprocessor

import (
	"regexp"
	"strconv"
	"strings"
)

var productHeaderKeywords = map[string]struct{}{
	"product": {}, "item": {}, "name": {}, "barang": {}, "produk": {},
	"description": {}, "nama": {},
}

var priceHeaderKeywords = map[string]struct{}{
	"price": {}, "harga": {}, "cost": {}, "biaya": {}, "tarif": {},
}

// sectionMarkerKeywords mark the start of a product section in an
// otherwise sparse, contact-info-heavy sheet.
var sectionMarkerKeywords = []string{
	"price list", "daftar harga", "description", "nama produk", "item",
}

var serviceTokens = map[string]struct{}{
	"unit": {}, "price": {}, "harga": {}, "no": {}, "qty": {},
	"description": {}, "total": {},
}

// currencyPricePattern matches a currency-prefixed numeric token, e.g.
// "Rp 15.000", "$12.50", "USD 9.99".
var currencyPricePattern = regexp.MustCompile(`(?i)^(rp|\$|usd)\s*[\d.,]+$`)

// plainNumberPattern matches a bare decimal number.
var plainNumberPattern = regexp.MustCompile(`^\d+[.,]?\d*$`)

// isLikelyHeader reports whether a cell's text looks like a column
// header for the given keyword set.
func isLikelyHeader(cell string, keywords map[string]struct{}) bool {
	lower := strings.ToLower(strings.TrimSpace(cell))
	for kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isLikelyPrice classifies a cell as a plausible price: a bare number
// over 10, a currency-prefixed numeric string, or a plain decimal token.
func isLikelyPrice(cell string) (float64, bool) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64); err == nil {
		if v > 10 {
			return v, true
		}
	}

	if currencyPricePattern.MatchString(trimmed) {
		numeric := regexp.MustCompile(`[\d.,]+`).FindString(trimmed)
		numeric = strings.ReplaceAll(numeric, ",", "")
		if v, err := strconv.ParseFloat(numeric, 64); err == nil {
			return v, true
		}
	}

	if plainNumberPattern.MatchString(trimmed) {
		numeric := strings.ReplaceAll(trimmed, ",", ".")
		if v, err := strconv.ParseFloat(numeric, 64); err == nil {
			return v, true
		}
	}

	return 0, false
}

// isLikelyProduct classifies a cell as a plausible product name: at
// least 3 characters, contains a letter, is not itself price-like, and
// is not a known service/header token.
func isLikelyProduct(cell string) bool {
	trimmed := strings.TrimSpace(cell)
	if len(trimmed) < 3 {
		return false
	}

	hasAlpha := false
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasAlpha = true
			break
		}
	}
	if !hasAlpha {
		return false
	}

	if _, ok := isLikelyPrice(trimmed); ok {
		return false
	}

	if _, isService := serviceTokens[strings.ToLower(trimmed)]; isService {
		return false
	}

	return true
}

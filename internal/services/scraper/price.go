package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// currencyMarkers maps symbols and codes to ISO currency codes. Checked in
// order so "Rs" cannot shadow an explicit code.
var currencyMarkers = []struct {
	marker   string
	currency string
}{
	{"₹", "INR"},
	{"INR", "INR"},
	{"Rs.", "INR"},
	{"Rs", "INR"},
	{"$", "USD"},
	{"USD", "USD"},
	{"€", "EUR"},
	{"EUR", "EUR"},
	{"£", "GBP"},
	{"GBP", "GBP"},
	{"¥", "JPY"},
	{"JPY", "JPY"},
}

var (
	priceCharPattern    = regexp.MustCompile(`[^0-9.,]`)
	lonelyCommaDecimals = regexp.MustCompile(`^[0-9]+,[0-9]{2}$`)
)

// ParsePrice converts raw, locale-ambiguous price text into a normalized
// amount and currency. The heuristic is known lossy for some locales
// (a bare "1.234" stays 1.234); the raw text is always preserved for audit.
func ParsePrice(raw string) PriceInfo {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriceInfo{}
	}

	info := PriceInfo{Raw: raw}

	for _, m := range currencyMarkers {
		if strings.Contains(raw, m.marker) {
			info.Currency = m.currency
			break
		}
	}

	cleaned := priceCharPattern.ReplaceAllString(raw, "")
	if cleaned == "" {
		return info
	}

	cleaned = normalizeSeparators(cleaned)

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return info
	}

	info.Amount = &amount
	return info
}

// normalizeSeparators disambiguates decimal vs thousands separators. When both
// occur, the one appearing last is the decimal point and the other is removed.
// A lone comma is a decimal separator only when exactly one two-digit group
// follows it; otherwise all commas are thousands separators.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && lonelyCommaDecimals.MatchString(s) {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	// Collapse any extra dots left behind by malformed input, keeping the last
	if strings.Count(s, ".") > 1 {
		last := strings.LastIndex(s, ".")
		s = strings.ReplaceAll(s[:last], ".", "") + s[last:]
	}

	return s
}

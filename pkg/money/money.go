// Package money formats VND amounts and percentages for display.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const Currency = "đ"

// Round rounds v half away from zero to places decimals. Non-finite values
// are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Amount renders v rounded to whole đồng with '.' thousands separators,
// e.g. 1234567.6 -> "1.234.568".
func Amount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	digits := decimal.NewFromFloat(v).Round(0).StringFixed(0)

	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte('.')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// VND is Amount with the currency suffix.
func VND(v float64) string {
	return Amount(v) + " " + Currency
}

// Percent renders v with a fixed number of decimals and a '%' suffix.
func Percent(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(places) + "%"
}

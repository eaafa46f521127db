// Package numfmt formats numbers the way the dashboard displays them:
// grouped thousands, at most three fraction digits.
package numfmt

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// Format renders v with thousands separators, e.g. 1234567 -> "1,234,567".
func Format(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "∞"
		}
		return "-∞"
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatInt is Format for integers.
func FormatInt(v int64) string {
	return printer.Sprint(number.Decimal(v))
}

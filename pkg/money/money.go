// Package money holds the rounding and display rules shared by every
// scorer, scenario and report. Amounts stay float64 in the domain types;
// rounding goes through shopspring/decimal so 2-decimal outputs are taken
// from the decimal representation rather than the binary one.
package money

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Round rounds x to places decimals, half away from zero.
// NaN and ±Inf are returned unchanged.
func Round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// Round2 is Round(x, 2), the precision of every currency field.
func Round2(x float64) float64 {
	return Round(x, 2)
}

// Sum adds amounts in decimal space and returns the float result.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Grouped renders x with thousands separators and a fixed number of decimals
// ("1,234.50"). Negative values keep a leading minus.
func Grouped(x float64, places int) string {
	return printer.Sprintf(fmt.Sprintf("%%.%df", places), x)
}

// Dollars renders "$1,234.50" (places=2) or "$1,235" (places=0).
// Negative values render as "$-1,234.50".
func Dollars(x float64, places int) string {
	return "$" + Grouped(x, places)
}

// Num renders the shortest representation of x: 99.5 -> "99.5", 25 -> "25".
func Num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// Package format renders money and percentages the way Brazilian investors read them.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// brl mirrors go-money's BRL currency but keeps a space after the symbol.
var brl = money.NewFormatter(2, ",", ".", "R$", "$ 1")

// Currency formats a value as "R$ 1.234,56".
func Currency(value float64) string {
	cents := money.New(int64(math.Round(value*100)), money.BRL)
	return brl.Format(cents.Amount())
}

// Percentage formats a fraction as a percentage: 0.27 -> "27,00%".
func Percentage(fraction float64) string {
	return PercentagePoints(fraction * 100)
}

// PercentagePoints formats a value that is already in percent: 27 -> "27,00%".
func PercentagePoints(points float64) string {
	s := strconv.FormatFloat(points, 'f', 2, 64)
	return strings.Replace(s, ".", ",", 1) + "%"
}

package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// TradingDaysPerYear is used to annualise daily slopes.
const TradingDaysPerYear = 252

// AnnualTrendPct fits a least-squares line through the whole price series and
// returns the annualised slope as a percentage of the first price.
//
// Formula: slope_per_day * 252 / prices[0] * 100
func AnnualTrendPct(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}

	slopes := talib.LinearRegSlope(prices, len(prices))
	slope := slopes[len(slopes)-1]
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return 0
	}

	return slope * TradingDaysPerYear / prices[0] * 100
}

// DailyVolatilityPct is the standard deviation of daily returns, in percent.
func DailyVolatilityPct(prices []float64) float64 {
	return StdDev(CalculateReturns(prices)) * 100
}

// ChangePct is the total percentage change between the first and last price.
func ChangePct(prices []float64) float64 {
	if len(prices) < 2 || prices[0] == 0 {
		return 0
	}
	return (prices[len(prices)-1]/prices[0] - 1) * 100
}

// Round rounds val to the given number of decimal places.
func Round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}

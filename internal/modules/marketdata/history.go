package marketdata

import (
	"time"

	"github.com/Andre13Filho/FII-AI/pkg/formulas"
)

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// DividendPayment is one monthly distribution per share.
type DividendPayment struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// History is a year of daily prices and the dividends paid over it.
type History struct {
	Prices    []PricePoint      `json:"prices"`
	Dividends []DividendPayment `json:"dividends"`
}

// HistoricalMetrics summarises a History. Percentages are in points.
type HistoricalMetrics struct {
	AvgPrice         float64 `json:"avg_price"`
	PriceChangePct   float64 `json:"price_change_pct"`
	AnnualDividend   float64 `json:"annual_dividend"`
	DividendYieldPct float64 `json:"current_dividend_yield"` // annual dividends over last price
	TrendPct         float64 `json:"price_trend_pct"`        // annualised regression slope over first price
	VolatilityPct    float64 `json:"volatility"`             // daily
}

// Metrics derives the summary figures, rounded to two decimals.
func (h History) Metrics() HistoricalMetrics {
	if len(h.Prices) == 0 {
		return HistoricalMetrics{}
	}

	prices := make([]float64, len(h.Prices))
	for i, p := range h.Prices {
		prices[i] = p.Price
	}

	var annual float64
	for _, d := range h.Dividends {
		annual += d.Value
	}

	var yieldPct float64
	if last := prices[len(prices)-1]; last > 0 {
		yieldPct = annual / last * 100
	}

	return HistoricalMetrics{
		AvgPrice:         formulas.Round(formulas.Mean(prices), 2),
		PriceChangePct:   formulas.Round(formulas.ChangePct(prices), 2),
		AnnualDividend:   formulas.Round(annual, 2),
		DividendYieldPct: formulas.Round(yieldPct, 2),
		TrendPct:         formulas.Round(formulas.AnnualTrendPct(prices), 2),
		VolatilityPct:    formulas.Round(formulas.DailyVolatilityPct(prices), 2),
	}
}

// DividendConsistency compares the yield actually paid over the last year to
// the quoted yield (a fraction). It is 0 when the quoted yield is not positive.
func DividendConsistency(hist HistoricalMetrics, quotedYield float64) float64 {
	if quotedYield <= 0 {
		return 0
	}
	return hist.DividendYieldPct / (quotedYield * 100)
}

// businessDays lists the weekdays from 365 days before end up to end, oldest first.
func businessDays(end time.Time) []time.Time {
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	start := end.AddDate(0, 0, -365)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = append(days, d)
		}
	}
	return days
}

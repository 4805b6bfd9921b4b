package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHistoryMetrics(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var h History
	for i := 0; i < 5; i++ {
		h.Prices = append(h.Prices, PricePoint{Date: start.AddDate(0, 0, i), Price: 100 + float64(i)})
	}
	h.Dividends = []DividendPayment{
		{Date: start, Value: 0.5},
		{Date: start.AddDate(0, 0, 3), Value: 0.54},
	}

	m := h.Metrics()

	assert.Equal(t, 102.0, m.AvgPrice)
	assert.Equal(t, 4.0, m.PriceChangePct)
	assert.Equal(t, 1.04, m.AnnualDividend)
	assert.Equal(t, 1.0, m.DividendYieldPct)
	// slope 1/day * 252 / 100 * 100
	assert.Equal(t, 252.0, m.TrendPct)
	assert.Greater(t, m.VolatilityPct, 0.0)
}

func TestHistoryMetrics_Empty(t *testing.T) {
	assert.Equal(t, HistoricalMetrics{}, History{}.Metrics())
}

func TestDividendConsistency(t *testing.T) {
	hist := HistoricalMetrics{DividendYieldPct: 9}

	assert.InDelta(t, 1.0, DividendConsistency(hist, 0.09), 1e-12)
	assert.InDelta(t, 0.75, DividendConsistency(hist, 0.12), 1e-12)
	assert.Zero(t, DividendConsistency(hist, 0))
	assert.Zero(t, DividendConsistency(hist, -0.01))
}

func TestBusinessDays(t *testing.T) {
	end := time.Date(2024, 6, 14, 18, 30, 0, 0, time.UTC) // Friday
	days := businessDays(end)

	assert.Equal(t, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC), days[len(days)-1])
	for _, d := range days {
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
	}
	assert.InDelta(t, 261, len(days), 2)
}

package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnnualTrendPct(t *testing.T) {
	t.Run("linear uptrend", func(t *testing.T) {
		prices := make([]float64, 50)
		for i := range prices {
			prices[i] = 100 + float64(i)
		}
		// slope 1/day, 252 days, relative to 100
		assert.InDelta(t, 252.0, AnnualTrendPct(prices), 1e-6)
	})

	t.Run("linear downtrend", func(t *testing.T) {
		prices := make([]float64, 20)
		for i := range prices {
			prices[i] = 100 - 0.5*float64(i)
		}
		assert.InDelta(t, -126.0, AnnualTrendPct(prices), 1e-6)
	})

	t.Run("flat", func(t *testing.T) {
		assert.InDelta(t, 0.0, AnnualTrendPct([]float64{10, 10, 10, 10}), 1e-9)
	})

	t.Run("too short", func(t *testing.T) {
		assert.Equal(t, 0.0, AnnualTrendPct([]float64{10}))
		assert.Equal(t, 0.0, AnnualTrendPct(nil))
	})
}

func TestDailyVolatilityPct(t *testing.T) {
	assert.Equal(t, 0.0, DailyVolatilityPct([]float64{100}))
	assert.InDelta(t, 0.0, DailyVolatilityPct([]float64{100, 101, 102.01}), 1e-9)
	assert.Greater(t, DailyVolatilityPct([]float64{100, 110, 95, 120}), 0.0)
}

func TestChangePct(t *testing.T) {
	assert.InDelta(t, 10.0, ChangePct([]float64{100, 90, 110}), 1e-9)
	assert.Equal(t, 0.0, ChangePct([]float64{0, 10}))
}

func TestWeightedMean(t *testing.T) {
	assert.InDelta(t, 0.11, WeightedMean([]float64{0.10, 0.12}, []float64{1, 1}), 1e-12)
	assert.InDelta(t, 0.115, WeightedMean([]float64{0.10, 0.12}, []float64{1, 3}), 1e-12)
	assert.Equal(t, 0.0, WeightedMean([]float64{0.10}, []float64{0}))
	assert.Equal(t, 0.0, WeightedMean(nil, nil))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.2345, 2))
	assert.Equal(t, 102.0, Round(101.999999, 2))
}

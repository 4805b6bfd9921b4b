package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/universe"
)

var fixedNow = time.Date(2024, 6, 14, 15, 0, 0, 0, time.UTC)

func newTestSim(seed int64) *SimulatedSource {
	s := NewSimulatedSource(seed, zerolog.Nop())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSimulated_DeterministicPerSeed(t *testing.T) {
	ctx := context.Background()

	a := newTestSim(42)
	b := newTestSim(42)

	// Different call order must not change per-ticker results
	a1, err := a.FetchMetrics(ctx, "HGLG11", domain.CategoryLogistica)
	require.NoError(t, err)
	a2, err := a.FetchMetrics(ctx, "BTLG11", domain.CategoryLogistica)
	require.NoError(t, err)

	b2, err := b.FetchMetrics(ctx, "BTLG11", domain.CategoryLogistica)
	require.NoError(t, err)
	b1, err := b.FetchMetrics(ctx, "HGLG11", domain.CategoryLogistica)
	require.NoError(t, err)

	assert.Equal(t, a1, b1)
	assert.Equal(t, a2, b2)

	c1, err := newTestSim(7).FetchMetrics(ctx, "HGLG11", domain.CategoryLogistica)
	require.NoError(t, err)
	assert.NotEqual(t, a1.Price, c1.Price)
}

func TestSimulated_ZeroSeedIsReplaced(t *testing.T) {
	assert.NotZero(t, NewSimulatedSource(0, zerolog.Nop()).Seed())
	assert.Equal(t, int64(99), NewSimulatedSource(99, zerolog.Nop()).Seed())
}

func TestSimulated_QuoteWithinCategoryRanges(t *testing.T) {
	s := newTestSim(1)

	for _, category := range domain.Categories {
		ranges := quoteProfiles[category]
		for _, ticker := range universe.Tickers(category) {
			q := s.Quote(ticker, category)
			assert.GreaterOrEqual(t, q.DividendYield, ranges.yield.lo, "%s", ticker)
			assert.LessOrEqual(t, q.DividendYield, ranges.yield.hi, "%s", ticker)
			assert.GreaterOrEqual(t, q.Price, ranges.price.lo, "%s", ticker)
			assert.LessOrEqual(t, q.Price, ranges.price.hi, "%s", ticker)
			assert.GreaterOrEqual(t, q.PriceToBook, ranges.priceToBook.lo, "%s", ticker)
			assert.LessOrEqual(t, q.PriceToBook, ranges.priceToBook.hi, "%s", ticker)
			assert.GreaterOrEqual(t, q.Liquidity, liquidityRange.lo, "%s", ticker)
			assert.LessOrEqual(t, q.Liquidity, liquidityRange.hi, "%s", ticker)
			assert.Equal(t, "FII "+ticker, q.Name)
		}
	}
}

func TestSimulated_Fundamentals(t *testing.T) {
	s := newTestSim(3)

	tests := []struct {
		name     string
		category domain.Category
		check    func(t *testing.T, f Fundamentals)
	}{
		{
			name:     "cri has low vacancy and counts debtors",
			category: domain.CategoryCRI,
			check: func(t *testing.T, f Fundamentals) {
				assert.LessOrEqual(t, f.VacancyRate, 0.05)
				assert.GreaterOrEqual(t, f.Diversification, 8)
				assert.LessOrEqual(t, f.Diversification, 15)
				assert.GreaterOrEqual(t, f.CapRate, 0.09)
			},
		},
		{
			name:     "brick funds diversify by property count",
			category: domain.CategoryEscritorio,
			check: func(t *testing.T, f Fundamentals) {
				assert.Equal(t, f.NumAssets, f.Diversification)
				assert.GreaterOrEqual(t, f.VacancyRate, 0.05)
				assert.LessOrEqual(t, f.VacancyRate, 0.25)
			},
		},
		{
			name:     "fund of funds has no vacancy or contracts",
			category: domain.CategoryFOF,
			check: func(t *testing.T, f Fundamentals) {
				assert.Zero(t, f.VacancyRate)
				assert.Zero(t, f.ContractDuration)
				assert.GreaterOrEqual(t, f.Diversification, 4)
				assert.LessOrEqual(t, f.Diversification, 8)
			},
		},
		{
			name:     "urban income has long contracts",
			category: domain.CategoryRendaUrbana,
			check: func(t *testing.T, f Fundamentals) {
				assert.GreaterOrEqual(t, f.ContractDuration, 5.0)
				assert.LessOrEqual(t, f.ContractDuration, 15.0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, ticker := range universe.Tickers(tt.category) {
				tt.check(t, s.Fundamentals(ticker, tt.category))
			}
		})
	}
}

func TestSimulated_History(t *testing.T) {
	s := newTestSim(11)
	h := s.History("KNRI11")

	require.NotEmpty(t, h.Prices)
	for _, p := range h.Prices {
		assert.NotEqual(t, time.Saturday, p.Date.Weekday())
		assert.NotEqual(t, time.Sunday, p.Date.Weekday())
		assert.Greater(t, p.Price, 0.0)
	}
	assert.GreaterOrEqual(t, h.Prices[0].Price, 80.0)
	assert.LessOrEqual(t, h.Prices[0].Price, 120.0)

	// A 365-day window touches 13 calendar months
	assert.Len(t, h.Dividends, 13)
	for i := 1; i < len(h.Dividends); i++ {
		assert.True(t, h.Dividends[i].Date.After(h.Dividends[i-1].Date))
	}

	m := h.Metrics()
	assert.Greater(t, m.AvgPrice, 0.0)
	assert.Greater(t, m.AnnualDividend, 0.0)
	assert.Greater(t, m.VolatilityPct, 0.5)
	assert.Less(t, m.VolatilityPct, 3.0)
}

func TestSimulated_News(t *testing.T) {
	s := newTestSim(5)

	for _, ticker := range universe.Tickers(domain.CategoryShopping) {
		news := s.News(ticker)
		assert.GreaterOrEqual(t, len(news), 3)
		assert.LessOrEqual(t, len(news), 8)
		for i, item := range news {
			assert.Contains(t, item.Title, ticker)
			assert.Contains(t, newsSources, item.Source)
			assert.True(t, item.Date.Before(fixedNow))
			assert.False(t, item.Date.Before(fixedNow.AddDate(0, 0, -90)))
			if i > 0 {
				assert.False(t, item.Date.After(news[i-1].Date))
			}
		}
	}
}

func TestSimulated_FetchMetricsFillsEveryMetric(t *testing.T) {
	s := newTestSim(8)

	m, err := s.FetchMetrics(context.Background(), "MXRF11", domain.CategoryCRI)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceSimulated, m.Source)
	assert.Equal(t, domain.CategoryCRI, m.Category)
	assert.Greater(t, m.Price, 0.0)
	for _, metric := range domain.AllMetrics {
		assert.True(t, m.Has(metric), "metric %s", metric)
	}

	q := s.Quote("MXRF11", domain.CategoryCRI)
	hist := s.History("MXRF11").Metrics()
	assert.InDelta(t, hist.DividendYieldPct/(q.DividendYield*100), *m.DividendConsistency, 1e-12)
}

func TestSimulated_FetchMetricsHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSim(1).FetchMetrics(ctx, "HGLG11", domain.CategoryLogistica)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulated_GetPriceMatchesCatalogQuote(t *testing.T) {
	s := newTestSim(21)

	price, err := s.GetPrice(context.Background(), "hglg11")
	require.NoError(t, err)
	assert.Equal(t, s.Quote("HGLG11", domain.CategoryLogistica).Price, price)

	// Unlisted tickers still get a price
	price, err = s.GetPrice(context.Background(), "ZZZZ11")
	require.NoError(t, err)
	assert.Greater(t, price, 0.0)
}

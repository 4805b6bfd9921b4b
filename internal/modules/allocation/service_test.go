package allocation

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/marketdata"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
	"github.com/Andre13Filho/FII-AI/internal/modules/universe"
)

// flakySource fails for the listed tickers and simulates the rest.
type flakySource struct {
	sim  *marketdata.SimulatedSource
	fail map[string]bool
}

func (f flakySource) FetchMetrics(ctx context.Context, ticker string, category domain.Category) (domain.AssetMetrics, error) {
	if f.fail[ticker] {
		return domain.AssetMetrics{}, errors.New("unavailable")
	}
	return f.sim.FetchMetrics(ctx, ticker, category)
}

func newTestService(source domain.MetricsSource) *Service {
	log := zerolog.Nop()
	return NewService(source, scoring.NewScorer(log), NewPlanner(0, nil, log), DefaultSettings(), log)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 0.25, s.FIIFraction)

	var total float64
	for _, f := range s.Fractions {
		total += f
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// Callers may mutate their copy
	s.Fractions[domain.CategoryCRI] = 0
	assert.Equal(t, 0.27, universe.DefaultAllocation[domain.CategoryCRI])
}

func TestService_BestFunds(t *testing.T) {
	svc := newTestService(marketdata.NewSimulatedSource(7, zerolog.Nop()))

	ranked, err := svc.BestFunds(context.Background(), domain.CategoryLogistica)
	require.NoError(t, err)
	require.Len(t, ranked, len(universe.Tickers(domain.CategoryLogistica)))

	for i, a := range ranked {
		assert.Equal(t, i+1, a.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].FinalScore, a.FinalScore)
		}
	}

	_, err = svc.BestFunds(context.Background(), domain.Category("hotel"))
	assert.Error(t, err)
}

func TestService_BestFundsExcludesFailedFetches(t *testing.T) {
	tickers := universe.Tickers(domain.CategoryCRI)
	src := flakySource{
		sim:  marketdata.NewSimulatedSource(7, zerolog.Nop()),
		fail: map[string]bool{tickers[0]: true},
	}
	svc := newTestService(src)

	ranked, err := svc.BestFunds(context.Background(), domain.CategoryCRI)
	require.NoError(t, err)
	assert.Len(t, ranked, len(tickers)-1)
	for _, a := range ranked {
		assert.NotEqual(t, tickers[0], a.Ticker)
	}
}

func TestService_Recommend(t *testing.T) {
	svc := newTestService(marketdata.NewSimulatedSource(11, zerolog.Nop()))

	rec, err := svc.Recommend(context.Background(), 200000)
	require.NoError(t, err)

	assert.Equal(t, 200000.0, rec.TotalCapital)
	assert.Equal(t, 50000.0, rec.FIIBudget)
	assert.LessOrEqual(t, rec.Invested, rec.FIIBudget)
	assert.Greater(t, rec.Invested, 0.0)
	assert.Len(t, rec.Candidates, len(domain.Categories))

	for c, list := range rec.Candidates {
		assert.LessOrEqual(t, len(list), scoring.TopN, "category %s", c)
	}

	spent := make(map[domain.Category]float64)
	for _, p := range rec.Positions {
		spent[p.Category] += p.InvestedAmount
	}
	for c, f := range universe.DefaultAllocation {
		assert.LessOrEqual(t, spent[c], rec.FIIBudget*f+1e-9)
	}

	// Simulated source marks every candidate
	assert.NotEmpty(t, rec.Simulated)
}

func TestService_RecommendIsDeterministicPerSeed(t *testing.T) {
	a, err := newTestService(marketdata.NewSimulatedSource(3, zerolog.Nop())).Recommend(context.Background(), 80000)
	require.NoError(t, err)
	b, err := newTestService(marketdata.NewSimulatedSource(3, zerolog.Nop())).Recommend(context.Background(), 80000)
	require.NoError(t, err)

	assert.Equal(t, a.Positions, b.Positions)
}

func TestService_RecommendRejectsBadCapital(t *testing.T) {
	svc := newTestService(marketdata.NewSimulatedSource(1, zerolog.Nop()))

	_, err := svc.Recommend(context.Background(), 0)
	assert.Error(t, err)
	_, err = svc.Recommend(context.Background(), -10)
	assert.Error(t, err)
}

func TestService_RecommendCancelled(t *testing.T) {
	svc := newTestService(marketdata.NewSimulatedSource(1, zerolog.Nop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Recommend(ctx, 10000)
	assert.ErrorIs(t, err, context.Canceled)
}

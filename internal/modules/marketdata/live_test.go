package marketdata

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/clientdata"
	"github.com/Andre13Filho/FII-AI/internal/clients/brapi"
	"github.com/Andre13Filho/FII-AI/internal/database"
	"github.com/Andre13Filho/FII-AI/internal/domain"
)

type fakeQuotes struct {
	quotes map[string]*brapi.Quote
	err    error
	calls  int
}

func (f *fakeQuotes) GetQuote(ctx context.Context, ticker string) (*brapi.Quote, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	q, ok := f.quotes[ticker]
	if !ok {
		return nil, brapi.ErrNoResults
	}
	return q, nil
}

// blockingSource never answers before its context ends.
type blockingSource struct{}

func (blockingSource) FetchMetrics(ctx context.Context, ticker string, category domain.Category) (domain.AssetMetrics, error) {
	<-ctx.Done()
	return domain.AssetMetrics{}, ctx.Err()
}

func (blockingSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func newQuoteRepo(t *testing.T) *clientdata.Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return clientdata.NewRepository(db.Conn())
}

func TestLiveSource_UsesQuoteFields(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]*brapi.Quote{
		"HGLG11": {
			Ticker:        "HGLG11",
			Name:          "CSHG Logistica",
			Price:         158.4,
			DividendYield: domain.Float(0.087),
			PriceToBook:   domain.Float(0.97),
			Volume:        domain.Float(123456),
		},
	}}
	sim := newTestSim(4)
	live := NewLiveSource(quotes, sim, zerolog.Nop())

	m, err := live.FetchMetrics(context.Background(), "HGLG11", domain.CategoryLogistica)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceLive, m.Source)
	assert.Equal(t, "CSHG Logistica", m.Name)
	assert.Equal(t, 158.4, m.Price)
	assert.Equal(t, 0.087, *m.DividendYield)
	assert.Equal(t, 0.97, *m.PriceToBook)
	assert.Equal(t, 123456.0, *m.Liquidity)

	// History and fundamentals come from the simulator
	hist := sim.History("HGLG11").Metrics()
	assert.Equal(t, hist.TrendPct, *m.PriceTrend)
	assert.Equal(t, float64(sim.Fundamentals("HGLG11", domain.CategoryLogistica).Diversification), *m.Diversification)
}

func TestLiveSource_MissingQuoteFieldsStayMissing(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]*brapi.Quote{
		"XPML11": {Ticker: "XPML11", Name: "FII XPML11", Price: 110},
	}}
	live := NewLiveSource(quotes, newTestSim(4), zerolog.Nop())

	m, err := live.FetchMetrics(context.Background(), "XPML11", domain.CategoryShopping)
	require.NoError(t, err)

	assert.False(t, m.Has(domain.MetricDividendYield))
	assert.False(t, m.Has(domain.MetricPriceToBook))
	assert.False(t, m.Has(domain.MetricLiquidity))
	assert.Equal(t, 0.0, *m.DividendConsistency)
}

func TestLiveSource_Errors(t *testing.T) {
	live := NewLiveSource(&fakeQuotes{err: errors.New("down")}, newTestSim(4), zerolog.Nop())

	_, err := live.FetchMetrics(context.Background(), "HGLG11", domain.CategoryLogistica)
	assert.Error(t, err)

	_, err = live.GetPrice(context.Background(), "HGLG11")
	assert.Error(t, err)

	zero := NewLiveSource(&fakeQuotes{quotes: map[string]*brapi.Quote{"A11": {Ticker: "A11"}}}, newTestSim(4), zerolog.Nop())
	_, err = zero.GetPrice(context.Background(), "A11")
	assert.Error(t, err)
}

func TestCachedQuotes(t *testing.T) {
	repo := newQuoteRepo(t)
	quotes := &fakeQuotes{quotes: map[string]*brapi.Quote{
		"KNCR11": {Ticker: "KNCR11", Name: "Kinea Rendimentos", Price: 105.38, DividendYield: domain.Float(0.108)},
	}}
	cached := NewCachedQuotes(quotes, repo, zerolog.Nop())

	first, err := cached.GetQuote(context.Background(), "kncr11")
	require.NoError(t, err)
	second, err := cached.GetQuote(context.Background(), "KNCR11")
	require.NoError(t, err)

	assert.Equal(t, 1, quotes.calls)
	assert.Equal(t, first.Price, second.Price)
	require.NotNil(t, second.DividendYield)
	assert.Equal(t, 0.108, *second.DividendYield)
}

func TestCachedQuotes_StaleOnFailure(t *testing.T) {
	repo := newQuoteRepo(t)
	// Expired entry
	require.NoError(t, repo.Store(clientdata.TableQuotes, "VISC11", brapi.Quote{Ticker: "VISC11", Price: 87.5}, -time.Minute))

	cached := NewCachedQuotes(&fakeQuotes{err: errors.New("timeout")}, repo, zerolog.Nop())
	q, err := cached.GetQuote(context.Background(), "VISC11")
	require.NoError(t, err)
	assert.Equal(t, 87.5, q.Price)

	// Unknown tickers are not rescued by the cache
	noResults := NewCachedQuotes(&fakeQuotes{}, repo, zerolog.Nop())
	_, err = noResults.GetQuote(context.Background(), "VISC11")
	assert.ErrorIs(t, err, brapi.ErrNoResults)
}

func TestCachedQuotes_NilRepo(t *testing.T) {
	quotes := &fakeQuotes{quotes: map[string]*brapi.Quote{"A11": {Ticker: "A11", Price: 10}}}
	cached := NewCachedQuotes(quotes, nil, zerolog.Nop())

	_, err := cached.GetQuote(context.Background(), "A11")
	require.NoError(t, err)
	_, err = cached.GetQuote(context.Background(), "A11")
	require.NoError(t, err)
	assert.Equal(t, 2, quotes.calls)
}

func TestFallbackSource_DegradesToSimulated(t *testing.T) {
	sim := newTestSim(9)
	live := NewLiveSource(&fakeQuotes{err: errors.New("503")}, sim, zerolog.Nop())
	src := NewFallbackSource(live, sim, time.Second, zerolog.Nop())

	before := testutil.ToFloat64(metricsFallbacks.WithLabelValues(string(domain.CategoryFOF)))

	m, err := src.FetchMetrics(context.Background(), "KFOF11", domain.CategoryFOF)
	require.NoError(t, err)

	assert.Equal(t, domain.SourceSimulated, m.Source)
	want, _ := sim.FetchMetrics(context.Background(), "KFOF11", domain.CategoryFOF)
	assert.Equal(t, want, m)
	assert.Equal(t, before+1, testutil.ToFloat64(metricsFallbacks.WithLabelValues(string(domain.CategoryFOF))))
}

func TestFallbackSource_PassesThroughLive(t *testing.T) {
	sim := newTestSim(9)
	quotes := &fakeQuotes{quotes: map[string]*brapi.Quote{"HGLG11": {Ticker: "HGLG11", Name: "HGLG", Price: 160}}}
	src := NewFallbackSource(NewLiveSource(quotes, sim, zerolog.Nop()), sim, time.Second, zerolog.Nop())

	m, err := src.FetchMetrics(context.Background(), "HGLG11", domain.CategoryLogistica)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLive, m.Source)

	price, err := src.GetPrice(context.Background(), "HGLG11")
	require.NoError(t, err)
	assert.Equal(t, 160.0, price)
}

func TestFallbackSource_TimeoutBoundsLiveFetch(t *testing.T) {
	sim := newTestSim(9)
	src := NewFallbackSource(blockingSource{}, sim, 20*time.Millisecond, zerolog.Nop())

	start := time.Now()
	m, err := src.FetchMetrics(context.Background(), "BCFF11", domain.CategoryFOF)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.SourceSimulated, m.Source)

	start = time.Now()
	_, err = src.GetPrice(context.Background(), "BCFF11")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFallbackSource_PriceFailureIsNotSimulated(t *testing.T) {
	sim := newTestSim(9)
	live := NewLiveSource(&fakeQuotes{err: errors.New("503")}, sim, zerolog.Nop())
	src := NewFallbackSource(live, sim, time.Second, zerolog.Nop())

	before := testutil.ToFloat64(priceFailures)

	price, err := src.GetPrice(context.Background(), "HGLG11")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HGLG11")
	assert.Zero(t, price)
	assert.Equal(t, before+1, testutil.ToFloat64(priceFailures))
}

// Package marketdata produces the raw per-fund inputs of the scoring pipeline
// from brapi quotes, a seeded simulator, or both.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// DefaultFetchTimeout bounds one live fetch.
const DefaultFetchTimeout = 10 * time.Second

var (
	metricsFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fii_metrics_fallback_total",
		Help: "Metric fetches served by simulated data after a live failure",
	}, []string{"category"})

	priceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fii_price_lookup_failures_total",
		Help: "Live price lookups that failed after the stale cache was tried",
	})
)

// Source provides both metrics and prices.
type Source interface {
	domain.MetricsSource
	domain.PriceSource
}

// FallbackSource tries the primary source under a timeout. Metrics degrade to
// the fallback on any error and are marked simulated. Prices never degrade;
// a failed lookup is returned so callers leave the ticker unpriced.
type FallbackSource struct {
	primary  Source
	fallback Source
	timeout  time.Duration
	log      zerolog.Logger
}

// NewFallbackSource creates a degrading source.
func NewFallbackSource(primary, fallback Source, timeout time.Duration, log zerolog.Logger) *FallbackSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &FallbackSource{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		log:      log.With().Str("service", "market_fallback").Logger(),
	}
}

// FetchMetrics implements domain.MetricsSource.
func (s *FallbackSource) FetchMetrics(ctx context.Context, ticker string, category domain.Category) (domain.AssetMetrics, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	metrics, err := s.primary.FetchMetrics(fetchCtx, ticker, category)
	cancel()
	if err == nil {
		return metrics, nil
	}

	s.log.Warn().
		Err(err).
		Str("ticker", ticker).
		Str("category", string(category)).
		Msg("Live metrics unavailable, using simulated data")
	metricsFallbacks.WithLabelValues(string(category)).Inc()

	metrics, err = s.fallback.FetchMetrics(ctx, ticker, category)
	if err != nil {
		return domain.AssetMetrics{}, err
	}
	metrics.Source = domain.SourceSimulated
	return metrics, nil
}

// GetPrice implements domain.PriceSource. The fallback source is not
// consulted.
func (s *FallbackSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	price, err := s.primary.GetPrice(fetchCtx, ticker)
	if err != nil {
		priceFailures.Inc()
		return 0, fmt.Errorf("failed to get live price for %s: %w", ticker, err)
	}
	return price, nil
}

package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/clientdata"
	"github.com/Andre13Filho/FII-AI/internal/clients/brapi"
	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// QuoteClient fetches a live quote. Satisfied by *brapi.Client.
type QuoteClient interface {
	GetQuote(ctx context.Context, ticker string) (*brapi.Quote, error)
}

// CachedQuotes puts a persistent cache in front of a QuoteClient.
// Fresh entries skip the network; on failure a stale entry is served.
type CachedQuotes struct {
	client QuoteClient
	repo   *clientdata.Repository // nil disables caching
	log    zerolog.Logger
}

// NewCachedQuotes creates a cached quote client.
func NewCachedQuotes(client QuoteClient, repo *clientdata.Repository, log zerolog.Logger) *CachedQuotes {
	return &CachedQuotes{
		client: client,
		repo:   repo,
		log:    log.With().Str("component", "quote_cache").Logger(),
	}
}

// GetQuote returns the quote for a ticker, cache first.
func (c *CachedQuotes) GetQuote(ctx context.Context, ticker string) (*brapi.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if c.repo != nil {
		var cached brapi.Quote
		ok, err := c.repo.GetIfFresh(clientdata.TableQuotes, ticker, &cached)
		if err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to read quote cache")
		} else if ok {
			c.log.Debug().Str("ticker", ticker).Msg("Quote cache hit")
			return &cached, nil
		}
	}

	quote, err := c.client.GetQuote(ctx, ticker)
	if err != nil {
		if c.repo != nil && !errors.Is(err, brapi.ErrNoResults) {
			var stale brapi.Quote
			if ok, cacheErr := c.repo.Get(clientdata.TableQuotes, ticker, &stale); cacheErr == nil && ok {
				c.log.Warn().Err(err).Str("ticker", ticker).Msg("API failed, using stale cached quote")
				return &stale, nil
			}
		}
		return nil, err
	}

	if c.repo != nil {
		if err := c.repo.Store(clientdata.TableQuotes, ticker, quote, clientdata.TTLQuote); err != nil {
			c.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache quote")
		}
	}

	return quote, nil
}

// LiveSource reads the quote from brapi. History, news and fundamentals have
// no public feed and come from the simulated scraper.
type LiveSource struct {
	quotes QuoteClient
	sim    *SimulatedSource
	log    zerolog.Logger
}

// NewLiveSource creates a live metrics source.
func NewLiveSource(quotes QuoteClient, sim *SimulatedSource, log zerolog.Logger) *LiveSource {
	return &LiveSource{
		quotes: quotes,
		sim:    sim,
		log:    log.With().Str("service", "live_market").Logger(),
	}
}

// FetchMetrics implements domain.MetricsSource.
func (s *LiveSource) FetchMetrics(ctx context.Context, ticker string, category domain.Category) (domain.AssetMetrics, error) {
	quote, err := s.quotes.GetQuote(ctx, ticker)
	if err != nil {
		return domain.AssetMetrics{}, fmt.Errorf("failed to fetch quote: %w", err)
	}

	return assemble(ticker, category, domain.SourceLive, quoteFields{
		Name:          quote.Name,
		Price:         quote.Price,
		DividendYield: quote.DividendYield,
		PriceToBook:   quote.PriceToBook,
		Liquidity:     quote.Volume,
	}, s.sim.History(ticker).Metrics(), AnalyzeNews(s.sim.News(ticker)), s.sim.Fundamentals(ticker, category)), nil
}

// GetPrice implements domain.PriceSource.
func (s *LiveSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	quote, err := s.quotes.GetQuote(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch quote: %w", err)
	}
	if quote.Price <= 0 {
		return 0, fmt.Errorf("no price reported for %s", ticker)
	}
	return quote.Price, nil
}

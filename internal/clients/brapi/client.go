// Package brapi provides a client for the brapi.dev quote API of B3-listed
// assets. Only the quote endpoint is used.
package brapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://brapi.dev/api"
	defaultTimeout = 10 * time.Second

	// B3 listings are addressed with the Yahoo-style exchange suffix.
	exchangeSuffix = ".SA"
)

// ErrNoResults is returned when the API answers with an empty results array.
var ErrNoResults = errors.New("brapi returned no results")

// Config holds the client settings.
type Config struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables throttling
}

// Quote is the subset of a brapi quote the recommender reads.
// Optional fields are nil when the API omits them.
type Quote struct {
	Ticker        string   `json:"ticker"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	DividendYield *float64 `json:"dividend_yield,omitempty"` // annual fraction
	PriceToBook   *float64 `json:"price_to_book,omitempty"`
	Volume        *float64 `json:"volume,omitempty"`
}

// Client is the brapi API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	log        zerolog.Logger
}

// NewClient creates a new brapi client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	clientLog := log.With().Str("component", "brapi").Logger()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "brapi",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// An unknown ticker is a valid answer, not an outage
			return err == nil || errors.Is(err, ErrNoResults)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			clientLog.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    breaker,
		log:        clientLog,
	}
}

// GetQuote fetches the current quote of a fund ticker such as "HGLG11".
func (c *Client) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchQuote(ctx, ticker)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", ticker, err)
	}

	return result.(*Quote), nil
}

func (c *Client) fetchQuote(ctx context.Context, ticker string) (*Quote, error) {
	endpoint := fmt.Sprintf("%s/quote/%s", c.baseURL, url.PathEscape(ticker+exchangeSuffix))
	if c.token != "" {
		endpoint += "?token=" + url.QueryEscape(c.token)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("ticker", ticker).Msg("Requesting brapi quote")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brapi API error: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return parseQuote(ticker, body)
}

// parseQuote reads the first entry of a brapi quote payload.
func parseQuote(ticker string, body []byte) (*Quote, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	results, err := jsonpath.Get("$.results", doc)
	if err != nil {
		return nil, ErrNoResults
	}
	if list, ok := results.([]interface{}); !ok || len(list) == 0 {
		return nil, ErrNoResults
	}

	quote := &Quote{
		Ticker: ticker,
		Name:   "FII " + ticker,
	}
	if name, ok := str(doc, "$.results[0].longName"); ok && name != "" {
		quote.Name = name
	}
	if price, ok := number(doc, "$.results[0].regularMarketPrice"); ok {
		quote.Price = price
	}
	// brapi reports the yield in percent
	if dy, ok := number(doc, "$.results[0].dividendYield"); ok {
		v := dy / 100
		quote.DividendYield = &v
	}
	if pvp, ok := number(doc, "$.results[0].priceToBook"); ok {
		quote.PriceToBook = &pvp
	}
	if vol, ok := number(doc, "$.results[0].regularMarketVolume"); ok {
		quote.Volume = &vol
	}

	return quote, nil
}

func number(doc interface{}, path string) (float64, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func str(doc interface{}, path string) (string, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

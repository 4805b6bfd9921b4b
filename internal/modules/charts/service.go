// Package charts builds price series and renders PNG charts for the ledger.
package charts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/modules/marketdata"
)

// Aggregation periods accepted by PriceSeries.
const (
	GroupDay   = "day"
	GroupWeek  = "week"
	GroupMonth = "month"
)

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"`  // YYYY-MM-DD, YYYY-W## or YYYY-MM
	Value float64 `json:"value"` // average close over the period
}

// HistorySource provides a year of prices for a ticker.
type HistorySource interface {
	History(ticker string) marketdata.History
}

// Service provides chart data operations
type Service struct {
	history HistorySource
	log     zerolog.Logger
}

// NewService creates a new charts service
func NewService(history HistorySource, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		log:     log.With().Str("service", "charts").Logger(),
	}
}

// PriceSeries returns the ticker's closes averaged per period, oldest first.
func (s *Service) PriceSeries(ticker, groupBy string) ([]ChartDataPoint, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker cannot be empty")
	}

	var periodOf func(time.Time) string
	switch groupBy {
	case GroupDay, "":
		periodOf = func(t time.Time) string { return t.Format("2006-01-02") }
	case GroupWeek:
		periodOf = func(t time.Time) string {
			year, week := t.ISOWeek()
			return fmt.Sprintf("%d-W%02d", year, week)
		}
	case GroupMonth:
		periodOf = func(t time.Time) string { return t.Format("2006-01") }
	default:
		return nil, fmt.Errorf("invalid grouping: %s (must be day, week or month)", groupBy)
	}

	hist := s.history.History(ticker)
	aggregated := make(map[string][]float64)
	for _, p := range hist.Prices {
		period := periodOf(p.Date)
		aggregated[period] = append(aggregated[period], p.Price)
	}

	periods := make([]string, 0, len(aggregated))
	for period := range aggregated {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	points := make([]ChartDataPoint, 0, len(periods))
	for _, period := range periods {
		values := aggregated[period]
		var sum float64
		for _, v := range values {
			sum += v
		}
		points = append(points, ChartDataPoint{Time: period, Value: sum / float64(len(values))})
	}

	s.log.Debug().Str("ticker", ticker).Str("group", groupBy).Int("points", len(points)).Msg("Built price series")
	return points, nil
}

// PriceChart renders the ticker's daily closes as a PNG line chart.
func (s *Service) PriceChart(ticker string) ([]byte, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	hist := s.history.History(ticker)
	return RenderPriceHistory(ticker, hist.Prices)
}

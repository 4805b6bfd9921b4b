package portfolio

import (
	"context"
	"sort"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// Summary is the cost-basis view of the ledger. Percentages are in points
// (27.5 means 27.5%) and both breakdowns are empty when nothing is invested.
type Summary struct {
	TotalInvested      float64                     `json:"total_invested"`
	TotalShares        int                         `json:"total_shares"`
	PositionCount      int                         `json:"position_count"`
	InvestedByCategory map[domain.Category]float64 `json:"invested_by_category"`
	ByCategory         map[domain.Category]float64 `json:"by_category"`
	ByTicker           map[string]float64          `json:"by_ticker"`
}

// PositionPerformance is the mark-to-market result of one priced position.
type PositionPerformance struct {
	Ticker        string          `json:"ticker"`
	Category      domain.Category `json:"category"`
	ShareCount    int             `json:"share_count"`
	AverageCost   float64         `json:"average_cost"`
	CurrentPrice  float64         `json:"current_price"`
	Invested      float64         `json:"invested"`
	CurrentValue  float64         `json:"current_value"`
	UnrealizedPnL float64         `json:"unrealized_pnl"`
	Return        float64         `json:"return"` // fraction of invested
}

// Performance aggregates priced positions only. Tickers without a price are
// listed in Unpriced and excluded from every total.
type Performance struct {
	TotalInvested float64               `json:"total_invested"`
	CurrentValue  float64               `json:"current_value"`
	UnrealizedPnL float64               `json:"unrealized_pnl"`
	Return        float64               `json:"return"`
	Positions     []PositionPerformance `json:"positions"`
	Unpriced      []string              `json:"unpriced,omitempty"`
}

// Summary computes totals and percentage breakdowns from the open positions.
func (l *Ledger) Summary() Summary {
	return Summarize(l.CurrentPositions())
}

// Summarize builds a Summary from a set of positions.
func Summarize(positions []Position) Summary {
	s := Summary{
		InvestedByCategory: make(map[domain.Category]float64),
		ByCategory:         make(map[domain.Category]float64),
		ByTicker:           make(map[string]float64),
	}

	byTicker := make(map[string]float64)
	for _, p := range positions {
		invested := p.Invested()
		s.TotalInvested += invested
		s.TotalShares += p.ShareCount
		s.InvestedByCategory[p.Category] += invested
		byTicker[p.Ticker] += invested
	}
	s.PositionCount = len(positions)

	if s.TotalInvested <= 0 {
		return s
	}

	for c, v := range s.InvestedByCategory {
		s.ByCategory[c] = v / s.TotalInvested * 100
	}
	for t, v := range byTicker {
		s.ByTicker[t] = v / s.TotalInvested * 100
	}
	return s
}

// Performance marks positions to the supplied prices. A missing or
// non-positive price leaves the position out of the totals.
func (l *Ledger) Performance(prices map[string]float64) Performance {
	positions := l.CurrentPositions()

	perf := Performance{Positions: []PositionPerformance{}}
	for _, p := range positions {
		price, ok := prices[p.Ticker]
		if !ok || price <= 0 {
			perf.Unpriced = append(perf.Unpriced, p.Ticker)
			continue
		}

		invested := p.Invested()
		current := float64(p.ShareCount) * price
		pnl := float64(p.ShareCount) * (price - p.AverageCost)

		var ret float64
		if invested > 0 {
			ret = pnl / invested
		}

		perf.Positions = append(perf.Positions, PositionPerformance{
			Ticker:        p.Ticker,
			Category:      p.Category,
			ShareCount:    p.ShareCount,
			AverageCost:   p.AverageCost,
			CurrentPrice:  price,
			Invested:      invested,
			CurrentValue:  current,
			UnrealizedPnL: pnl,
			Return:        ret,
		})

		perf.TotalInvested += invested
		perf.CurrentValue += current
		perf.UnrealizedPnL += pnl
	}

	if perf.TotalInvested > 0 {
		perf.Return = perf.UnrealizedPnL / perf.TotalInvested
	}

	sort.SliceStable(perf.Positions, func(i, j int) bool {
		return perf.Positions[i].CurrentValue > perf.Positions[j].CurrentValue
	})

	return perf
}

// Prices looks up the current price of every open position. Tickers whose
// lookup fails are left out and so end up in Performance.Unpriced.
func (l *Ledger) Prices(ctx context.Context, src domain.PriceSource) map[string]float64 {
	prices := make(map[string]float64)
	for _, p := range l.CurrentPositions() {
		price, err := src.GetPrice(ctx, p.Ticker)
		if err != nil {
			l.log.Warn().Err(err).Str("ticker", p.Ticker).Msg("Price unavailable, excluding from performance")
			continue
		}
		prices[p.Ticker] = price
	}
	return prices
}

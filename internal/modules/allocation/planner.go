// Package allocation turns ranked candidates into a concrete buy list and
// summarises the resulting recommendation.
package allocation

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
	"github.com/Andre13Filho/FII-AI/internal/modules/universe"
	"github.com/Andre13Filho/FII-AI/internal/utils"
)

const (
	// MaxPerCategory is how many funds a category budget is split across.
	MaxPerCategory = 3

	// DefaultFIIFraction is the share of total capital put into funds.
	DefaultFIIFraction = 0.25
	// DefaultPrice is the last-resort unit price when nothing else is known.
	DefaultPrice = 100.0
	// fallbackMonthlyYield estimates a monthly dividend when a fund has no
	// yield and no reference entry.
	fallbackMonthlyYield = 0.008
)

// AllocatedPosition is one recommended buy.
type AllocatedPosition struct {
	Ticker           string          `json:"ticker"`
	Name             string          `json:"name"`
	Category         domain.Category `json:"category"`
	UnitPrice        float64         `json:"unit_price"`
	ShareCount       int             `json:"share_count"`
	InvestedAmount   float64         `json:"invested_amount"`
	Percentage       float64         `json:"percentage"`         // points of the FII budget
	DividendYield    float64         `json:"dividend_yield"`     // annual fraction
	DividendPerShare float64         `json:"dividend_per_share"` // monthly
	MonthlyIncome    float64         `json:"monthly_income"`
	AnnualIncome     float64         `json:"annual_income"`
	Score            float64         `json:"score"`
	Rank             int             `json:"rank"`
	Explanation      string          `json:"explanation,omitempty"`
	PriceFallback    bool            `json:"price_fallback"`
	Strengths        []domain.Metric `json:"strengths,omitempty"`
	Weaknesses       []domain.Metric `json:"weaknesses,omitempty"`
}

// Planner splits a capital budget across categories and funds.
type Planner struct {
	defaultPrice float64
	explainer    domain.Explainer
	log          zerolog.Logger
}

// NewPlanner creates a planner. A non-positive defaultPrice uses DefaultPrice;
// explainer may be nil.
func NewPlanner(defaultPrice float64, explainer domain.Explainer, log zerolog.Logger) *Planner {
	if defaultPrice <= 0 {
		defaultPrice = DefaultPrice
	}
	return &Planner{
		defaultPrice: defaultPrice,
		explainer:    explainer,
		log:          log.With().Str("service", "allocation_planner").Logger(),
	}
}

// Plan allocates totalCapital × fiiFraction across categories by fractions,
// then across the top candidates of each category with rank-triangular
// weights. Share counts are floored, so a category never spends more than its
// budget and the remainder stays uninvested.
func (p *Planner) Plan(
	ctx context.Context,
	totalCapital, fiiFraction float64,
	fractions map[domain.Category]float64,
	candidates map[domain.Category][]scoring.ScoredAsset,
) []AllocatedPosition {
	defer utils.OperationTimer("allocation_plan", 10*time.Second, p.log)()

	fiiBudget := totalCapital * fiiFraction
	positions := []AllocatedPosition{}
	if !(fiiBudget > 0) {
		return positions
	}

	for _, category := range orderedCategories(fractions) {
		budget := fiiBudget * fractions[category]
		if !(budget > 0) {
			continue
		}

		selected := scoring.Top(candidates[category], MaxPerCategory)
		weights := rankWeights(len(selected))

		var spent float64
		for i, c := range selected {
			if c.Ticker == "" {
				p.log.Warn().Str("category", string(category)).Int("rank", c.Rank).Msg("Skipping candidate without ticker")
				continue
			}
			pos := p.allocate(category, c, budget*weights[i])
			pos.Percentage = pos.InvestedAmount / fiiBudget * 100
			spent += pos.InvestedAmount
			positions = append(positions, pos)
		}

		p.log.Debug().
			Str("category", string(category)).
			Float64("budget", budget).
			Float64("spent", spent).
			Int("funds", len(selected)).
			Msg("Category allocated")
	}

	p.explain(ctx, positions)
	return positions
}

// allocate sizes a single position against its sub-budget.
func (p *Planner) allocate(category domain.Category, c scoring.ScoredAsset, sub float64) AllocatedPosition {
	pos := AllocatedPosition{
		Ticker:     c.Ticker,
		Name:       c.Name,
		Category:   category,
		Score:      c.FinalScore,
		Rank:       c.Rank,
		Strengths:  c.Strengths,
		Weaknesses: c.Weaknesses,
	}
	if pos.Name == "" {
		pos.Name = "FII " + c.Ticker
	}

	pos.UnitPrice, pos.PriceFallback = p.resolvePrice(c)
	pos.DividendYield, pos.DividendPerShare = dividendEstimate(c, pos.UnitPrice)

	if pos.UnitPrice > 0 && sub > 0 {
		shares := int(math.Floor(sub / pos.UnitPrice))
		if float64(shares)*pos.UnitPrice > sub {
			shares--
		}
		if shares > 0 {
			pos.ShareCount = shares
		}
	}

	pos.InvestedAmount = float64(pos.ShareCount) * pos.UnitPrice
	pos.MonthlyIncome = float64(pos.ShareCount) * pos.DividendPerShare
	pos.AnnualIncome = pos.MonthlyIncome * 12

	if pos.PriceFallback {
		p.log.Warn().
			Str("ticker", c.Ticker).
			Float64("price", pos.UnitPrice).
			Msg("Using fallback price")
	}
	return pos
}

// resolvePrice prefers the candidate's price, then the reference table, then
// the configured default.
func (p *Planner) resolvePrice(c scoring.ScoredAsset) (float64, bool) {
	if validAmount(c.Price) {
		return c.Price, false
	}
	if ref := universe.ReferencePrice(c.Ticker); validAmount(ref) {
		return ref, true
	}
	return p.defaultPrice, true
}

// dividendEstimate returns the annual yield and the monthly dividend per share.
func dividendEstimate(c scoring.ScoredAsset, price float64) (float64, float64) {
	if c.Has(domain.MetricDividendYield) {
		if dy := c.Value(domain.MetricDividendYield); validAmount(dy) {
			return dy, dy * price / 12
		}
	}
	if ref, ok := universe.LookupDividend(c.Ticker); ok && ref.LastDividend > 0 {
		return ref.MonthlyYield * 12, ref.LastDividend
	}
	return fallbackMonthlyYield * 12, fallbackMonthlyYield * price
}

func (p *Planner) explain(ctx context.Context, positions []AllocatedPosition) {
	if p.explainer == nil {
		return
	}
	for i := range positions {
		pos := &positions[i]
		if pos.ShareCount == 0 {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		text, err := p.explainer.Explain(ctx, pos.explanationInput())
		if err != nil {
			p.log.Warn().Err(err).Str("ticker", pos.Ticker).Msg("Failed to generate explanation")
			continue
		}
		pos.Explanation = text
	}
}

func (pos AllocatedPosition) explanationInput() domain.Explanation {
	return domain.Explanation{
		Ticker:         pos.Ticker,
		Name:           pos.Name,
		Category:       pos.Category,
		Score:          pos.Score,
		Rank:           pos.Rank,
		UnitPrice:      pos.UnitPrice,
		ShareCount:     pos.ShareCount,
		InvestedAmount: pos.InvestedAmount,
		DividendYield:  pos.DividendYield,
		MonthlyIncome:  pos.MonthlyIncome,
		Strengths:      pos.Strengths,
		Weaknesses:     pos.Weaknesses,
	}
}

// rankWeights returns (n-i)/Σ for i in [0,n): 3/6, 2/6, 1/6 for three funds.
func rankWeights(n int) []float64 {
	weights := make([]float64, n)
	total := float64(n*(n+1)) / 2
	for i := range weights {
		weights[i] = float64(n-i) / total
	}
	return weights
}

// orderedCategories yields the known categories in display order followed by
// any others present in fractions, sorted.
func orderedCategories(fractions map[domain.Category]float64) []domain.Category {
	var out []domain.Category
	seen := make(map[domain.Category]bool)
	for _, c := range domain.Categories {
		if _, ok := fractions[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var extra []domain.Category
	for c := range fractions {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

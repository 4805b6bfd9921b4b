// Package rebalancing compares the held category mix with the target mix and
// suggests buys for the categories that fell behind.
package rebalancing

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
)

const (
	// DefaultThreshold is the deviation, in percentage points, beyond which a
	// category counts as under or overweight.
	DefaultThreshold = 5.0
	// DefaultInvestableFraction of the invested total is suggested when no
	// amount is given.
	DefaultInvestableFraction = 0.05
	// FundsPerCategory is how many funds share a category's allocation.
	FundsPerCategory = 3
)

// Status summarises a balance check.
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusBalanced  Status = "balanced"
	StatusRebalance Status = "rebalance"
)

// CandidateProvider ranks the funds of a category, best first.
type CandidateProvider interface {
	Candidates(ctx context.Context, category domain.Category) ([]scoring.ScoredAsset, error)
}

// Deviation is one category's distance from its target, in points.
type Deviation struct {
	Category    domain.Category `json:"category"`
	DisplayName string          `json:"display_name"`
	Current     float64         `json:"current"`
	Target      float64         `json:"target"`
	Deviation   float64         `json:"deviation"` // current - target
}

// Analysis is the category mix of the ledger against the target.
type Analysis struct {
	Status        Status                      `json:"status"`
	TotalInvested float64                     `json:"total_invested"`
	Current       map[domain.Category]float64 `json:"current"`
	Target        map[domain.Category]float64 `json:"target"`
	Deviations    map[domain.Category]float64 `json:"deviations"`
	Underweight   []Deviation                 `json:"underweight"` // most underweight first
	Overweight    []Deviation                 `json:"overweight"`
	Extra         []domain.Category           `json:"extra,omitempty"` // held but not targeted
}

// FundSuggestion is one suggested buy.
type FundSuggestion struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	UnitPrice     float64 `json:"unit_price"`
	ShareCount    int     `json:"share_count"`
	Amount        float64 `json:"amount"`
	DividendYield float64 `json:"dividend_yield"`
}

// CategorySuggestion is the share of the investable amount routed to one
// underweight category and the funds to buy with it.
type CategorySuggestion struct {
	Deviation
	Allocated float64          `json:"allocated"`
	Funds     []FundSuggestion `json:"funds"`
}

// Result is the outcome of Suggest.
type Result struct {
	Status      Status               `json:"status"`
	Investable  float64              `json:"investable"`
	Suggestions []CategorySuggestion `json:"suggestions"`
	Overweight  []Deviation          `json:"overweight"`
}

// Advisor produces rebalancing suggestions.
type Advisor struct {
	candidates CandidateProvider
	prices     domain.PriceSource
	threshold  float64
	log        zerolog.Logger
}

// NewAdvisor creates an advisor. A non-positive threshold uses
// DefaultThreshold.
func NewAdvisor(candidates CandidateProvider, prices domain.PriceSource, threshold float64, log zerolog.Logger) *Advisor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Advisor{
		candidates: candidates,
		prices:     prices,
		threshold:  threshold,
		log:        log.With().Str("service", "rebalancing").Logger(),
	}
}

// TargetPoints converts allocation fractions to percentage points.
func TargetPoints(fractions map[domain.Category]float64) map[domain.Category]float64 {
	out := make(map[domain.Category]float64, len(fractions))
	for c, f := range fractions {
		out[c] = f * 100
	}
	return out
}

// Analyze compares a ledger summary with target percentages.
func (a *Advisor) Analyze(summary portfolio.Summary, target map[domain.Category]float64) Analysis {
	analysis := Analysis{
		TotalInvested: summary.TotalInvested,
		Current:       summary.ByCategory,
		Target:        target,
		Deviations:    make(map[domain.Category]float64),
		Underweight:   []Deviation{},
		Overweight:    []Deviation{},
	}
	if !(summary.TotalInvested > 0) {
		analysis.Status = StatusEmpty
		return analysis
	}

	under, over := a.classify(summary.ByCategory, target)
	for c, t := range target {
		analysis.Deviations[c] = summary.ByCategory[c] - t
	}
	analysis.Underweight = under
	analysis.Overweight = over

	for _, c := range orderedKeys(summary.ByCategory) {
		if _, ok := target[c]; !ok {
			analysis.Extra = append(analysis.Extra, c)
		}
	}

	analysis.Status = StatusBalanced
	if len(under) > 0 {
		analysis.Status = StatusRebalance
	}
	return analysis
}

// Suggest routes investable across the underweight categories in proportion
// to how far each is below target, then splits each category's amount equally
// across its top funds. Overweight categories are only reported.
func (a *Advisor) Suggest(ctx context.Context, current, target map[domain.Category]float64, investable float64) Result {
	under, over := a.classify(current, target)
	result := Result{
		Status:      StatusBalanced,
		Investable:  investable,
		Suggestions: []CategorySuggestion{},
		Overweight:  over,
	}
	if len(under) == 0 {
		return result
	}
	result.Status = StatusRebalance

	var totalGap float64
	for _, d := range under {
		totalGap += math.Abs(d.Deviation)
	}

	for _, d := range under {
		suggestion := CategorySuggestion{Deviation: d, Funds: []FundSuggestion{}}
		if investable > 0 && totalGap > 0 {
			suggestion.Allocated = math.Abs(d.Deviation) / totalGap * investable
			suggestion.Funds = a.pickFunds(ctx, d.Category, suggestion.Allocated)
		}
		result.Suggestions = append(result.Suggestions, suggestion)
	}

	a.log.Debug().
		Int("underweight", len(under)).
		Int("overweight", len(over)).
		Float64("investable", investable).
		Msg("Rebalancing suggested")

	return result
}

// Rebalance runs Suggest on a ledger summary. A non-positive investable
// amount defaults to DefaultInvestableFraction of the invested total.
func (a *Advisor) Rebalance(ctx context.Context, summary portfolio.Summary, target map[domain.Category]float64, investable float64) Result {
	if !(summary.TotalInvested > 0) {
		return Result{Status: StatusEmpty, Suggestions: []CategorySuggestion{}, Overweight: []Deviation{}}
	}
	if !(investable > 0) {
		investable = summary.TotalInvested * DefaultInvestableFraction
	}
	return a.Suggest(ctx, summary.ByCategory, target, investable)
}

// pickFunds sizes buys for the top funds of a category. Each fund gets a
// third of the category amount and at least one share; funds without a
// usable price are skipped.
func (a *Advisor) pickFunds(ctx context.Context, category domain.Category, allocated float64) []FundSuggestion {
	funds := []FundSuggestion{}

	ranked, err := a.candidates.Candidates(ctx, category)
	if err != nil {
		a.log.Warn().Err(err).Str("category", string(category)).Msg("No candidates for category")
		return funds
	}

	perFund := allocated / FundsPerCategory
	for _, c := range scoring.Top(ranked, FundsPerCategory) {
		price, err := a.prices.GetPrice(ctx, c.Ticker)
		if err != nil || !(price > 0) {
			a.log.Warn().Err(err).Str("ticker", c.Ticker).Msg("Skipping fund without price")
			continue
		}

		shares := int(math.Floor(perFund / price))
		if shares < 1 {
			shares = 1
		}
		funds = append(funds, FundSuggestion{
			Ticker:        c.Ticker,
			Name:          c.Name,
			UnitPrice:     price,
			ShareCount:    shares,
			Amount:        float64(shares) * price,
			DividendYield: c.Value(domain.MetricDividendYield),
		})
	}
	return funds
}

// classify splits targeted categories into under and overweight. A category
// missing from current counts as 0%.
func (a *Advisor) classify(current, target map[domain.Category]float64) (under, over []Deviation) {
	under, over = []Deviation{}, []Deviation{}
	for _, c := range orderedKeys(target) {
		d := Deviation{
			Category:    c,
			DisplayName: c.DisplayName(),
			Current:     current[c],
			Target:      target[c],
		}
		d.Deviation = d.Current - d.Target

		switch {
		case d.Deviation < -a.threshold:
			under = append(under, d)
		case d.Deviation > a.threshold:
			over = append(over, d)
		}
	}

	sort.SliceStable(under, func(i, j int) bool { return under[i].Deviation < under[j].Deviation })
	sort.SliceStable(over, func(i, j int) bool { return over[i].Deviation > over[j].Deviation })
	return under, over
}

// orderedKeys lists known categories in display order, then the rest sorted.
func orderedKeys(m map[domain.Category]float64) []domain.Category {
	var out []domain.Category
	for _, c := range domain.Categories {
		if _, ok := m[c]; ok {
			out = append(out, c)
		}
	}
	var extra []domain.Category
	for c := range m {
		if !c.IsKnown() {
			extra = append(extra, c)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

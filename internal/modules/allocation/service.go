package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
	"github.com/Andre13Filho/FII-AI/internal/modules/universe"
)

// Settings are the tunable planner inputs.
type Settings struct {
	FIIFraction float64
	Fractions   map[domain.Category]float64
}

// DefaultSettings returns the stock 25% budget and category split.
func DefaultSettings() Settings {
	fractions := make(map[domain.Category]float64, len(universe.DefaultAllocation))
	for c, f := range universe.DefaultAllocation {
		fractions[c] = f
	}
	return Settings{FIIFraction: DefaultFIIFraction, Fractions: fractions}
}

// CategorySummary aggregates the positions of one category.
type CategorySummary struct {
	Category         domain.Category `json:"category"`
	DisplayName      string          `json:"display_name"`
	Investment       float64         `json:"investment"`
	Count            int             `json:"count"`
	MonthlyIncome    float64         `json:"monthly_income"`
	Percentage       float64         `json:"percentage"`         // points of the amount invested
	AvgDividendYield float64         `json:"avg_dividend_yield"` // points, weighted by investment
}

// Recommendation is the full output of one recommendation run.
type Recommendation struct {
	GeneratedAt   time.Time                                 `json:"generated_at"`
	TotalCapital  float64                                   `json:"total_capital"`
	FIIBudget     float64                                   `json:"fii_budget"`
	Invested      float64                                   `json:"invested"`
	MonthlyIncome float64                                   `json:"monthly_income"`
	AnnualIncome  float64                                   `json:"annual_income"`
	MonthlyYield  float64                                   `json:"monthly_yield"` // fraction of invested
	AnnualYield   float64                                   `json:"annual_yield"`
	Positions     []AllocatedPosition                       `json:"positions"`
	Categories    []CategorySummary                         `json:"categories"`
	Candidates    map[domain.Category][]scoring.ScoredAsset `json:"candidates"`
	Simulated     []string                                  `json:"simulated,omitempty"` // tickers served by simulated data
}

// Service fetches metrics, ranks funds and plans the allocation.
type Service struct {
	source   domain.MetricsSource
	scorer   *scoring.Scorer
	planner  *Planner
	settings Settings
	now      func() time.Time
	log      zerolog.Logger
}

// NewService creates a new recommendation service
func NewService(source domain.MetricsSource, scorer *scoring.Scorer, planner *Planner, settings Settings, log zerolog.Logger) *Service {
	return &Service{
		source:   source,
		scorer:   scorer,
		planner:  planner,
		settings: settings,
		now:      time.Now,
		log:      log.With().Str("service", "allocation").Logger(),
	}
}

// Settings returns the planner inputs in use.
func (s *Service) Settings() Settings {
	return s.settings
}

// BestFunds ranks every fund of a category, best first. Funds whose metrics
// cannot be fetched are left out.
func (s *Service) BestFunds(ctx context.Context, category domain.Category) ([]scoring.ScoredAsset, error) {
	if !category.IsKnown() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	tickers := universe.Tickers(category)
	assets := make([]domain.AssetMetrics, 0, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := s.source.FetchMetrics(ctx, ticker, category)
		if err != nil {
			s.log.Warn().Err(err).Str("ticker", ticker).Str("category", string(category)).Msg("Excluding fund without metrics")
			continue
		}
		assets = append(assets, m)
	}

	return s.scorer.Score(category, assets), nil
}

// Candidates is BestFunds under the name rebalancing expects.
func (s *Service) Candidates(ctx context.Context, category domain.Category) ([]scoring.ScoredAsset, error) {
	return s.BestFunds(ctx, category)
}

// Recommend ranks each category, keeps the top funds and plans how to invest
// the FII share of capital.
func (s *Service) Recommend(ctx context.Context, capital float64) (*Recommendation, error) {
	if !(capital > 0) {
		return nil, fmt.Errorf("capital must be positive, got %.2f", capital)
	}

	start := time.Now()
	candidates := make(map[domain.Category][]scoring.ScoredAsset)
	var simulated []string

	for _, category := range orderedCategories(s.settings.Fractions) {
		ranked, err := s.BestFunds(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("failed to rank %s: %w", category, err)
			}
			s.log.Warn().Err(err).Str("category", string(category)).Msg("Skipping category")
			continue
		}
		top := scoring.Top(ranked, scoring.TopN)
		candidates[category] = top

		for _, a := range top {
			if a.Source == domain.SourceSimulated {
				simulated = append(simulated, a.Ticker)
			}
		}
	}

	positions := s.planner.Plan(ctx, capital, s.settings.FIIFraction, s.settings.Fractions, candidates)
	rec := Summarize(positions)
	rec.GeneratedAt = s.now()
	rec.TotalCapital = capital
	rec.FIIBudget = capital * s.settings.FIIFraction
	rec.Candidates = candidates
	rec.Simulated = simulated

	s.log.Info().
		Float64("capital", capital).
		Float64("invested", rec.Invested).
		Int("positions", len(positions)).
		Int("simulated", len(simulated)).
		Dur("duration", time.Since(start)).
		Msg("Recommendation built")

	return rec, nil
}

// Summarize aggregates positions per category and computes the portfolio
// dividend yield (monthly income over invested amount).
func Summarize(positions []AllocatedPosition) *Recommendation {
	rec := &Recommendation{Positions: positions, Categories: []CategorySummary{}}

	byCategory := make(map[domain.Category]*CategorySummary)
	weightedDY := make(map[domain.Category]float64)
	var order []domain.Category

	for _, p := range positions {
		cs, ok := byCategory[p.Category]
		if !ok {
			cs = &CategorySummary{Category: p.Category, DisplayName: p.Category.DisplayName()}
			byCategory[p.Category] = cs
			order = append(order, p.Category)
		}
		cs.Investment += p.InvestedAmount
		cs.Count++
		cs.MonthlyIncome += p.MonthlyIncome
		weightedDY[p.Category] += p.DividendYield * p.InvestedAmount

		rec.Invested += p.InvestedAmount
		rec.MonthlyIncome += p.MonthlyIncome
	}

	for _, c := range order {
		cs := byCategory[c]
		if rec.Invested > 0 {
			cs.Percentage = cs.Investment / rec.Invested * 100
		}
		if cs.Investment > 0 {
			cs.AvgDividendYield = weightedDY[c] / cs.Investment * 100
		}
		rec.Categories = append(rec.Categories, *cs)
	}

	rec.AnnualIncome = rec.MonthlyIncome * 12
	if rec.Invested > 0 {
		rec.MonthlyYield = rec.MonthlyIncome / rec.Invested
		rec.AnnualYield = rec.MonthlyYield * 12
	}
	return rec
}

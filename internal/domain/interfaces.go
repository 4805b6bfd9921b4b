package domain

import "context"

// MetricsSource produces raw metrics for one ticker.
// Implementations: live (brapi), simulated (seeded), and the fallback wrapper
// that degrades from the first to the second.
type MetricsSource interface {
	FetchMetrics(ctx context.Context, ticker string, category Category) (AssetMetrics, error)
}

// PriceSource looks up the current unit price of a ticker.
// A failure excludes the ticker from performance totals or skips a
// rebalancing candidate; it is never fatal.
type PriceSource interface {
	GetPrice(ctx context.Context, ticker string) (float64, error)
}

// Explanation is the input handed to a narrative generator.
type Explanation struct {
	Ticker         string
	Name           string
	Category       Category
	Score          float64
	Rank           int
	UnitPrice      float64
	ShareCount     int
	InvestedAmount float64
	DividendYield  float64
	MonthlyIncome  float64
	Strengths      []Metric
	Weaknesses     []Metric
}

// Explainer writes free-text rationale for a recommended buy.
// Its output is optional decoration; callers must keep going on error.
type Explainer interface {
	Explain(ctx context.Context, in Explanation) (string, error)
}

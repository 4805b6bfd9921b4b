package domain

// Metric names one raw input of the scoring pipeline.
type Metric string

const (
	MetricDividendYield       Metric = "dividend_yield"
	MetricPriceToBook         Metric = "price_to_book"
	MetricLiquidity           Metric = "liquidity"
	MetricPriceTrend          Metric = "price_trend"
	MetricPriceVolatility     Metric = "price_volatility"
	MetricDividendConsistency Metric = "dividend_consistency"
	MetricNewsSentiment       Metric = "news_sentiment"
	MetricRecentSentiment     Metric = "recent_sentiment"
	MetricVacancyRate         Metric = "vacancy_rate"
	MetricDiversification     Metric = "diversification"
	MetricCapRate             Metric = "cap_rate"
	MetricContractDuration    Metric = "contract_duration"
)

// AllMetrics is the fixed metric set, in weight-table order.
var AllMetrics = []Metric{
	MetricDividendYield,
	MetricPriceToBook,
	MetricLiquidity,
	MetricPriceTrend,
	MetricPriceVolatility,
	MetricDividendConsistency,
	MetricNewsSentiment,
	MetricRecentSentiment,
	MetricVacancyRate,
	MetricDiversification,
	MetricCapRate,
	MetricContractDuration,
}

// IdealPriceToBook is the P/VP treated as fair value.
const IdealPriceToBook = 0.9

// DefaultValue is the neutral value substituted for a missing metric.
func DefaultValue(m Metric) float64 {
	if m == MetricPriceToBook {
		return IdealPriceToBook
	}
	return 0
}

// DataSource records where a set of metrics came from.
type DataSource string

const (
	SourceLive      DataSource = "live"
	SourceSimulated DataSource = "simulated"
)

// AssetMetrics is one candidate's raw inputs for a single scoring pass.
// A nil metric is missing and reads as DefaultValue.
type AssetMetrics struct {
	Ticker   string     `json:"ticker"`
	Name     string     `json:"name"`
	Category Category   `json:"category"`
	Price    float64    `json:"price"` // 0 when unknown
	Source   DataSource `json:"source"`

	DividendYield       *float64 `json:"dividend_yield,omitempty"`       // annual, as a fraction
	PriceToBook         *float64 `json:"price_to_book,omitempty"`        // P/VP
	Liquidity           *float64 `json:"liquidity,omitempty"`            // traded volume
	PriceTrend          *float64 `json:"price_trend,omitempty"`          // annualised %, may be negative
	PriceVolatility     *float64 `json:"price_volatility,omitempty"`     // daily %, lower is better
	DividendConsistency *float64 `json:"dividend_consistency,omitempty"` // historical yield / current yield
	NewsSentiment       *float64 `json:"news_sentiment,omitempty"`       // [-1,1]
	RecentSentiment     *float64 `json:"recent_sentiment,omitempty"`     // -1, 0 or 1
	VacancyRate         *float64 `json:"vacancy_rate,omitempty"`         // fraction, lower is better
	Diversification     *float64 `json:"diversification,omitempty"`      // properties or debtors
	CapRate             *float64 `json:"cap_rate,omitempty"`
	ContractDuration    *float64 `json:"contract_duration,omitempty"` // years
}

// Float returns a pointer to v, for building AssetMetrics literals.
func Float(v float64) *float64 {
	return &v
}

// Value returns the metric, or its default when missing.
func (a AssetMetrics) Value(m Metric) float64 {
	if p := a.field(m); p != nil {
		return *p
	}
	return DefaultValue(m)
}

// Has reports whether the metric was supplied.
func (a AssetMetrics) Has(m Metric) bool {
	return a.field(m) != nil
}

func (a AssetMetrics) field(m Metric) *float64 {
	switch m {
	case MetricDividendYield:
		return a.DividendYield
	case MetricPriceToBook:
		return a.PriceToBook
	case MetricLiquidity:
		return a.Liquidity
	case MetricPriceTrend:
		return a.PriceTrend
	case MetricPriceVolatility:
		return a.PriceVolatility
	case MetricDividendConsistency:
		return a.DividendConsistency
	case MetricNewsSentiment:
		return a.NewsSentiment
	case MetricRecentSentiment:
		return a.RecentSentiment
	case MetricVacancyRate:
		return a.VacancyRate
	case MetricDiversification:
		return a.Diversification
	case MetricCapRate:
		return a.CapRate
	case MetricContractDuration:
		return a.ContractDuration
	}
	return nil
}

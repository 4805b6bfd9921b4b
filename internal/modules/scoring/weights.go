// Package scoring ranks candidate funds within a category by a weighted sum of
// normalized metrics.
package scoring

import (
	"fmt"
	"math"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/pkg/formulas"
)

// Weights maps each metric to its share of the final score. A row sums to 1.
type Weights map[domain.Metric]float64

// categoryWeights is the process-wide weight table. Never mutated.
var categoryWeights = map[domain.Category]Weights{
	// Receivables: yield, consistency and debtor diversification dominate.
	domain.CategoryCRI: {
		domain.MetricDividendYield:       0.20,
		domain.MetricPriceToBook:         0.10,
		domain.MetricLiquidity:           0.05,
		domain.MetricPriceTrend:          0.05,
		domain.MetricPriceVolatility:     0.10,
		domain.MetricDividendConsistency: 0.15,
		domain.MetricNewsSentiment:       0.05,
		domain.MetricRecentSentiment:     0.05,
		domain.MetricVacancyRate:         0.00,
		domain.MetricDiversification:     0.15,
		domain.MetricCapRate:             0.10,
		domain.MetricContractDuration:    0.00,
	},
	domain.CategoryShopping: {
		domain.MetricDividendYield:       0.15,
		domain.MetricPriceToBook:         0.15,
		domain.MetricLiquidity:           0.05,
		domain.MetricPriceTrend:          0.10,
		domain.MetricPriceVolatility:     0.05,
		domain.MetricDividendConsistency: 0.10,
		domain.MetricNewsSentiment:       0.05,
		domain.MetricRecentSentiment:     0.05,
		domain.MetricVacancyRate:         0.15,
		domain.MetricDiversification:     0.05,
		domain.MetricCapRate:             0.05,
		domain.MetricContractDuration:    0.05,
	},
	domain.CategoryLogistica: {
		domain.MetricDividendYield:       0.15,
		domain.MetricPriceToBook:         0.15,
		domain.MetricLiquidity:           0.05,
		domain.MetricPriceTrend:          0.10,
		domain.MetricPriceVolatility:     0.05,
		domain.MetricDividendConsistency: 0.10,
		domain.MetricNewsSentiment:       0.05,
		domain.MetricRecentSentiment:     0.05,
		domain.MetricVacancyRate:         0.15,
		domain.MetricDiversification:     0.05,
		domain.MetricCapRate:             0.05,
		domain.MetricContractDuration:    0.05,
	},
	// Offices: vacancy is the main risk.
	domain.CategoryEscritorio: {
		domain.MetricDividendYield:       0.10,
		domain.MetricPriceToBook:         0.15,
		domain.MetricLiquidity:           0.05,
		domain.MetricPriceTrend:          0.10,
		domain.MetricPriceVolatility:     0.05,
		domain.MetricDividendConsistency: 0.10,
		domain.MetricNewsSentiment:       0.05,
		domain.MetricRecentSentiment:     0.05,
		domain.MetricVacancyRate:         0.20,
		domain.MetricDiversification:     0.05,
		domain.MetricCapRate:             0.05,
		domain.MetricContractDuration:    0.05,
	},
	domain.CategoryRendaUrbana: {
		domain.MetricDividendYield:       0.15,
		domain.MetricPriceToBook:         0.10,
		domain.MetricLiquidity:           0.05,
		domain.MetricPriceTrend:          0.05,
		domain.MetricPriceVolatility:     0.05,
		domain.MetricDividendConsistency: 0.15,
		domain.MetricNewsSentiment:       0.05,
		domain.MetricRecentSentiment:     0.05,
		domain.MetricVacancyRate:         0.10,
		domain.MetricDiversification:     0.05,
		domain.MetricCapRate:             0.10,
		domain.MetricContractDuration:    0.10,
	},
	domain.CategoryFOF: {
		domain.MetricDividendYield:       0.15,
		domain.MetricPriceToBook:         0.15,
		domain.MetricLiquidity:           0.10,
		domain.MetricPriceTrend:          0.10,
		domain.MetricPriceVolatility:     0.10,
		domain.MetricDividendConsistency: 0.15,
		domain.MetricNewsSentiment:       0.05,
		domain.MetricRecentSentiment:     0.05,
		domain.MetricVacancyRate:         0.00,
		domain.MetricDiversification:     0.15,
		domain.MetricCapRate:             0.00,
		domain.MetricContractDuration:    0.00,
	},
}

var defaultWeights = Weights{
	domain.MetricDividendYield:       0.15,
	domain.MetricPriceToBook:         0.15,
	domain.MetricLiquidity:           0.10,
	domain.MetricPriceTrend:          0.10,
	domain.MetricPriceVolatility:     0.05,
	domain.MetricDividendConsistency: 0.10,
	domain.MetricNewsSentiment:       0.05,
	domain.MetricRecentSentiment:     0.05,
	domain.MetricVacancyRate:         0.10,
	domain.MetricDiversification:     0.05,
	domain.MetricCapRate:             0.05,
	domain.MetricContractDuration:    0.05,
}

// metricPolicies fixes the normalization direction of every metric.
var metricPolicies = map[domain.Metric]formulas.Policy{
	domain.MetricDividendYield:       formulas.Higher(),
	domain.MetricPriceToBook:         formulas.Ideal(domain.IdealPriceToBook),
	domain.MetricLiquidity:           formulas.Higher(),
	domain.MetricPriceTrend:          formulas.Higher(),
	domain.MetricPriceVolatility:     formulas.Lower(),
	domain.MetricDividendConsistency: formulas.Higher(),
	domain.MetricNewsSentiment:       formulas.Higher(),
	domain.MetricRecentSentiment:     formulas.Higher(),
	domain.MetricVacancyRate:         formulas.Lower(),
	domain.MetricDiversification:     formulas.Higher(),
	domain.MetricCapRate:             formulas.Higher(),
	domain.MetricContractDuration:    formulas.Higher(),
}

// WeightsFor returns a copy of the weight row for a category, falling back to
// the generic row for unknown categories.
func WeightsFor(category domain.Category) Weights {
	src, ok := categoryWeights[category]
	if !ok {
		src = defaultWeights
	}
	out := make(Weights, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// PolicyFor returns the normalization policy of a metric.
func PolicyFor(m domain.Metric) formulas.Policy {
	if p, ok := metricPolicies[m]; ok {
		return p
	}
	return formulas.Higher()
}

// Validate checks that the row covers only known metrics and sums to 1.
func (w Weights) Validate() error {
	var sum float64
	for m, v := range w {
		if _, ok := metricPolicies[m]; !ok {
			return fmt.Errorf("unknown metric %q in weights", m)
		}
		if v < 0 {
			return fmt.Errorf("negative weight %.4f for %s", v, m)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights sum to %.4f, expected 1.0", sum)
	}
	return nil
}

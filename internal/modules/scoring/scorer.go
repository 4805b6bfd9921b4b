package scoring

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/pkg/formulas"
)

const (
	// TopN is how many ranked funds callers present per category.
	TopN = 5

	strengthThreshold = 0.7
	weaknessThreshold = 0.3
	// Metrics weighted at or below this are too minor to call out.
	highlightMinWeight = 0.02
)

// ScoredAsset is a candidate with its composite score and 1-based rank.
type ScoredAsset struct {
	domain.AssetMetrics
	FinalScore float64                   `json:"final_score"`
	Rank       int                       `json:"rank"`
	Normalized map[domain.Metric]float64 `json:"normalized"`
	Strengths  []domain.Metric           `json:"strengths,omitempty"`
	Weaknesses []domain.Metric           `json:"weaknesses,omitempty"`
}

// Scorer applies the category weight table to normalized metrics.
type Scorer struct {
	log zerolog.Logger
}

// NewScorer creates a new category scorer
func NewScorer(log zerolog.Logger) *Scorer {
	return &Scorer{
		log: log.With().Str("service", "scoring").Logger(),
	}
}

// Score ranks every asset of a category, best first. Equal scores keep their
// input order. The full list is returned; truncation is up to the caller.
func (s *Scorer) Score(category domain.Category, assets []domain.AssetMetrics) []ScoredAsset {
	if len(assets) == 0 {
		return []ScoredAsset{}
	}

	weights := WeightsFor(category)
	scored := make([]ScoredAsset, len(assets))
	for i, a := range assets {
		scored[i] = ScoredAsset{
			AssetMetrics: a,
			Normalized:   make(map[domain.Metric]float64),
		}
	}

	// Fixed metric order keeps floating point sums identical for identical inputs.
	for _, metric := range domain.AllMetrics {
		weight := weights[metric]
		if weight == 0 {
			continue
		}

		raw := make([]float64, len(assets))
		for i, a := range assets {
			raw[i] = a.Value(metric)
		}

		norm := formulas.Normalize(raw, PolicyFor(metric))
		for i := range scored {
			scored[i].Normalized[metric] = norm[i]
			scored[i].FinalScore += weight * norm[i]
		}
	}

	for i := range scored {
		scored[i].Strengths, scored[i].Weaknesses = highlights(scored[i].Normalized, weights)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})

	for i := range scored {
		scored[i].Rank = i + 1
	}

	if len(scored) > 0 {
		s.log.Debug().
			Str("category", string(category)).
			Int("candidates", len(scored)).
			Str("leader", scored[0].Ticker).
			Float64("leader_score", scored[0].FinalScore).
			Msg("Category scored")
	}

	return scored
}

// Top returns at most n leading assets of an already ranked list.
func Top(ranked []ScoredAsset, n int) []ScoredAsset {
	if n < 0 {
		n = 0
	}
	if len(ranked) <= n {
		return ranked
	}
	return ranked[:n]
}

// highlights lists the metrics that clearly help or hurt an asset.
func highlights(norm map[domain.Metric]float64, weights Weights) ([]domain.Metric, []domain.Metric) {
	var strengths, weaknesses []domain.Metric
	for _, metric := range domain.AllMetrics {
		if weights[metric] <= highlightMinWeight {
			continue
		}
		v, ok := norm[metric]
		if !ok {
			continue
		}
		switch {
		case v > strengthThreshold:
			strengths = append(strengths, metric)
		case v < weaknessThreshold:
			weaknesses = append(weaknesses, metric)
		}
	}
	return strengths, weaknesses
}

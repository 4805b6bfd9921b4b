// Package formulas provides the numeric building blocks used by scoring:
// cross-sectional normalization, descriptive statistics and trend estimation.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PolicyKind tells Normalize which direction of a metric is desirable.
type PolicyKind int

const (
	// HigherIsBetter maps the best (largest) value to 1.
	HigherIsBetter PolicyKind = iota
	// LowerIsBetter maps the best (smallest) value to 1.
	LowerIsBetter
	// IdealMidpoint maps values closest to Target to 1.
	IdealMidpoint
)

// Policy describes how a metric is rescaled. Target is only used by IdealMidpoint.
type Policy struct {
	Kind   PolicyKind
	Target float64
}

// Higher returns the higher-is-better policy.
func Higher() Policy { return Policy{Kind: HigherIsBetter} }

// Lower returns the lower-is-better policy.
func Lower() Policy { return Policy{Kind: LowerIsBetter} }

// Ideal returns the ideal-midpoint policy centred on target.
func Ideal(target float64) Policy { return Policy{Kind: IdealMidpoint, Target: target} }

// Normalize rescales values to [0,1] across the candidate set.
//
// Degenerate sets never produce NaN:
//   - higher-is-better with max == min falls back to v/max when max > 0, else 0
//   - lower-is-better with max == min is 1 - v/max when max > 0, else 0
//   - ideal-midpoint whose values all sit on the target yields 1 for every value
//
// A single positive candidate therefore scores 1 under higher-is-better and
// 0 under lower-is-better.
func Normalize(values []float64, policy Policy) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	maxV := floats.Max(values)
	minV := floats.Min(values)

	switch policy.Kind {
	case IdealMidpoint:
		t := policy.Target
		denom := math.Max(math.Abs(maxV-t), math.Abs(minV-t))
		for i, v := range values {
			if denom == 0 {
				out[i] = 1
				continue
			}
			out[i] = clamp01(1 - math.Abs(v-t)/denom)
		}
	case LowerIsBetter:
		for i, v := range values {
			if maxV <= minV && maxV <= 0 {
				out[i] = 0
				continue
			}
			out[i] = clamp01(1 - scaleUp(v, minV, maxV))
		}
	default:
		for i, v := range values {
			out[i] = clamp01(scaleUp(v, minV, maxV))
		}
	}

	return out
}

// scaleUp is the min-max rescale with the zero-range guard.
func scaleUp(v, minV, maxV float64) float64 {
	if maxV > minV {
		return (v - minV) / (maxV - minV)
	}
	if maxV > 0 {
		return v / maxV
	}
	return 0
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

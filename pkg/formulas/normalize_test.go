package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_HigherIsBetter(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{
			name:     "min-max rescale",
			values:   []float64{0.08, 0.10, 0.12},
			expected: []float64{0, 0.5, 1},
		},
		{
			name:     "all equal positive uses ratio to max",
			values:   []float64{5, 5, 5},
			expected: []float64{1, 1, 1},
		},
		{
			name:     "all zero",
			values:   []float64{0, 0},
			expected: []float64{0, 0},
		},
		{
			name:     "all equal negative",
			values:   []float64{-3, -3},
			expected: []float64{0, 0},
		},
		{
			name:     "single positive candidate",
			values:   []float64{0.1},
			expected: []float64{1},
		},
		{
			name:     "single zero candidate",
			values:   []float64{0},
			expected: []float64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.values, Higher())
			assert.InDeltaSlice(t, tt.expected, result, 1e-9)
		})
	}
}

func TestNormalize_LowerIsBetter(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{
			name:     "inverted rescale",
			values:   []float64{0.05, 0.15, 0.25},
			expected: []float64{1, 0.5, 0},
		},
		{
			name:     "all equal positive",
			values:   []float64{0.1, 0.1},
			expected: []float64{0, 0},
		},
		{
			name:     "all zero is guarded to zero",
			values:   []float64{0, 0, 0},
			expected: []float64{0, 0, 0},
		},
		{
			name:     "single positive candidate",
			values:   []float64{1.5},
			expected: []float64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.values, Lower())
			assert.InDeltaSlice(t, tt.expected, result, 1e-9)
		})
	}
}

func TestNormalize_IdealMidpoint(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{
			name:     "distance from target",
			values:   []float64{0.9, 1.1, 0.8},
			expected: []float64{1, 0, 0.5},
		},
		{
			name:     "all on target",
			values:   []float64{0.9, 0.9},
			expected: []float64{1, 1},
		},
		{
			name:     "single candidate off target",
			values:   []float64{1.2},
			expected: []float64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.values, Ideal(0.9))
			assert.InDeltaSlice(t, tt.expected, result, 1e-9)
		})
	}
}

func TestNormalize_OutputAlwaysInUnitRange(t *testing.T) {
	inputs := [][]float64{
		{-10, 0, 10, 20},
		{1e9, 1, 0.5},
		{0.85, 0.95, 1.25, 0.7},
		{-1, -0.5, 0, 0.5, 1},
	}
	policies := []Policy{Higher(), Lower(), Ideal(0.9)}

	for _, values := range inputs {
		for _, p := range policies {
			for _, v := range Normalize(values, p) {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestNormalize_Empty(t *testing.T) {
	assert.Empty(t, Normalize(nil, Higher()))
	assert.Empty(t, Normalize([]float64{}, Ideal(0.9)))
}

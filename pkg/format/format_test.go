package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{value: 1234.56, expected: "R$ 1.234,56"},
		{value: 0, expected: "R$ 0,00"},
		{value: 0.5, expected: "R$ 0,50"},
		{value: 1000000, expected: "R$ 1.000.000,00"},
		{value: 99.999, expected: "R$ 100,00"},
		{value: -25.1, expected: "-R$ 25,10"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, Currency(tt.value))
		})
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "27,00%", Percentage(0.27))
	assert.Equal(t, "0,00%", Percentage(0))
	assert.Equal(t, "-5,50%", Percentage(-0.055))
	assert.Equal(t, "12,35%", PercentagePoints(12.345001))
}

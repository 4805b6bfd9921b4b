package charts

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/marketdata"
)

var pngMagic = []byte("\x89PNG")

type fixedHistory marketdata.History

func (h fixedHistory) History(ticker string) marketdata.History { return marketdata.History(h) }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleHistory() fixedHistory {
	return fixedHistory{Prices: []marketdata.PricePoint{
		{Date: day(2024, 1, 29), Price: 100}, // 2024-W05
		{Date: day(2024, 1, 30), Price: 102},
		{Date: day(2024, 2, 1), Price: 104},
		{Date: day(2024, 2, 5), Price: 110}, // 2024-W06
	}}
}

func TestPriceSeries(t *testing.T) {
	s := NewService(sampleHistory(), zerolog.Nop())

	tests := []struct {
		group string
		want  []ChartDataPoint
	}{
		{GroupDay, []ChartDataPoint{
			{"2024-01-29", 100}, {"2024-01-30", 102}, {"2024-02-01", 104}, {"2024-02-05", 110},
		}},
		{GroupWeek, []ChartDataPoint{{"2024-W05", 102}, {"2024-W06", 110}}},
		{GroupMonth, []ChartDataPoint{{"2024-01", 101}, {"2024-02", 107}}},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			got, err := s.PriceSeries("hglg11", tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceSeries_Invalid(t *testing.T) {
	s := NewService(sampleHistory(), zerolog.Nop())

	_, err := s.PriceSeries("", GroupDay)
	assert.Error(t, err)

	_, err = s.PriceSeries("HGLG11", "year")
	assert.Error(t, err)
}

func TestRenderAllocationPie(t *testing.T) {
	png, err := RenderAllocationPie("Carteira", map[domain.Category]float64{
		domain.CategoryCRI:       600,
		domain.CategoryLogistica: 400,
		domain.CategoryFOF:       0,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestRenderAllocationPie_NoData(t *testing.T) {
	_, err := RenderAllocationPie("Carteira", nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = RenderAllocationPie("Carteira", map[domain.Category]float64{domain.CategoryCRI: 0})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderCurrentVsTarget(t *testing.T) {
	current := map[domain.Category]float64{domain.CategoryCRI: 60, domain.CategoryLogistica: 40}
	target := map[domain.Category]float64{
		domain.CategoryCRI:         27,
		domain.CategoryShopping:    17,
		domain.CategoryLogistica:   17,
		domain.CategoryEscritorio:  16,
		domain.CategoryRendaUrbana: 9,
		domain.CategoryFOF:         14,
	}

	png, err := RenderCurrentVsTarget(current, target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	_, err = RenderCurrentVsTarget(nil, nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPriceChart(t *testing.T) {
	s := NewService(sampleHistory(), zerolog.Nop())
	png, err := s.PriceChart("HGLG11")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	empty := NewService(fixedHistory{}, zerolog.Nop())
	_, err = empty.PriceChart("HGLG11")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCategoryOrder(t *testing.T) {
	got := categoryOrder(
		map[domain.Category]float64{"hotel": 1, domain.CategoryFOF: 1},
		map[domain.Category]float64{domain.CategoryCRI: 1, "agro": 1},
	)
	assert.Equal(t, []domain.Category{domain.CategoryCRI, domain.CategoryFOF, "agro", "hotel"}, got)
}

package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/marketdata"
	"github.com/Andre13Filho/FII-AI/pkg/format"
)

// ErrNoData is returned when there is nothing positive to draw.
var ErrNoData = errors.New("no data to chart")

var (
	currentColor = drawing.ColorFromHex("2563eb") // blue-600
	targetColor  = drawing.ColorFromHex("9ca3af") // gray-400
)

var shortLabels = map[domain.Category]string{
	domain.CategoryCRI:         "CRI",
	domain.CategoryShopping:    "Shopping",
	domain.CategoryLogistica:   "Logística",
	domain.CategoryEscritorio:  "Escritório",
	domain.CategoryRendaUrbana: "Renda Urbana",
	domain.CategoryFOF:         "FoF",
}

func shortLabel(c domain.Category) string {
	if l, ok := shortLabels[c]; ok {
		return l
	}
	return string(c)
}

// categoryOrder returns the known categories first, then any others sorted.
func categoryOrder(sets ...map[domain.Category]float64) []domain.Category {
	seen := make(map[domain.Category]bool)
	var out []domain.Category
	for _, c := range domain.Categories {
		for _, set := range sets {
			if _, ok := set[c]; ok && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	var extra []domain.Category
	for _, set := range sets {
		for c := range set {
			if !seen[c] {
				seen[c] = true
				extra = append(extra, c)
			}
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// RenderAllocationPie draws one slice per category with a positive share.
// Values may be amounts or percentages; labels show each slice's share.
func RenderAllocationPie(title string, values map[domain.Category]float64) ([]byte, error) {
	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return nil, ErrNoData
	}

	var slices []chart.Value
	for _, c := range categoryOrder(values) {
		v := values[c]
		if v <= 0 {
			continue
		}
		slices = append(slices, chart.Value{
			Value: v,
			Label: fmt.Sprintf("%s %s", shortLabel(c), format.PercentagePoints(v/total*100)),
		})
	}

	pie := chart.PieChart{
		Title:  title,
		Width:  640,
		Height: 640,
		Values: slices,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCurrentVsTarget draws a pair of bars per category: the current
// share next to the target share, both in percentage points.
func RenderCurrentVsTarget(current, target map[domain.Category]float64) ([]byte, error) {
	var maxValue float64
	for _, set := range []map[domain.Category]float64{current, target} {
		for _, v := range set {
			maxValue = math.Max(maxValue, v)
		}
	}
	if maxValue <= 0 {
		return nil, ErrNoData
	}

	var bars []chart.Value
	for _, c := range categoryOrder(current, target) {
		label := shortLabel(c)
		bars = append(bars,
			chart.Value{
				Value: math.Max(current[c], 0),
				Label: label,
				Style: chart.Style{FillColor: currentColor, StrokeColor: currentColor},
			},
			chart.Value{
				Value: math.Max(target[c], 0),
				Label: "alvo",
				Style: chart.Style{FillColor: targetColor, StrokeColor: targetColor},
			},
		)
	}

	graph := chart.BarChart{
		Title:  "Alocação atual vs. alvo",
		Width:  1100,
		Height: 480,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		BarWidth:   40,
		BarSpacing: 20,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: math.Ceil(maxValue*1.1/5) * 5},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPriceHistory draws daily closes as a line chart.
func RenderPriceHistory(ticker string, prices []marketdata.PricePoint) ([]byte, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d: %w", len(prices), ErrNoData)
	}

	xValues := make([]time.Time, len(prices))
	yValues := make([]float64, len(prices))
	for i, p := range prices {
		xValues[i] = p.Date
		yValues[i] = p.Price
	}

	graph := chart.Chart{
		Title:  ticker,
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("01/06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return format.Currency(f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: "Fechamento",
				Style: chart.Style{
					StrokeColor: currentColor,
					StrokeWidth: 2,
				},
				XValues: xValues,
				YValues: yValues,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

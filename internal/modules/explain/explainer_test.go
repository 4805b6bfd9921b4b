package explain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func sampleExplanation() domain.Explanation {
	return domain.Explanation{
		Ticker:         "KNCR11",
		Name:           "Kinea Rendimentos Imobiliários",
		Category:       domain.CategoryCRI,
		Score:          0.82,
		Rank:           1,
		UnitPrice:      105.38,
		ShareCount:     12,
		InvestedAmount: 1264.56,
		DividendYield:  0.108,
		MonthlyIncome:  11.38,
		Strengths:      []domain.Metric{domain.MetricDividendYield, domain.MetricLiquidity},
		Weaknesses:     []domain.Metric{domain.MetricPriceVolatility},
	}
}

func TestPrompt(t *testing.T) {
	prompt, err := Prompt(sampleExplanation())
	require.NoError(t, err)

	assert.Contains(t, prompt, "Ticker: KNCR11 (Kinea Rendimentos Imobiliários)")
	assert.Contains(t, prompt, "Tipo: "+domain.CategoryCRI.DisplayName())
	assert.Contains(t, prompt, "R$ 105,38")
	assert.Contains(t, prompt, "10,80%")
	assert.Contains(t, prompt, "12 cotas")
	assert.Contains(t, prompt, "R$ 1.264,56")
	assert.Contains(t, prompt, "Pontos fortes: dividend yield, liquidez")
	assert.Contains(t, prompt, "Pontos de atenção: volatilidade")
	assert.Contains(t, prompt, "3 parágrafos")
}

func TestPrompt_OmitsEmptyMetricLists(t *testing.T) {
	in := sampleExplanation()
	in.Name = ""
	in.Strengths = nil
	in.Weaknesses = nil

	prompt, err := Prompt(in)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Ticker: KNCR11\n")
	assert.NotContains(t, prompt, "Pontos fortes")
	assert.NotContains(t, prompt, "Pontos de atenção")
}

func TestExplain(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateContent", mock.Anything, mock.MatchedBy(func(p string) bool {
		return len(p) > 0
	})).Return("  KNCR11 paga dividendos mensais.\n", nil).Once()

	e := NewExplainer(gen, 0, zerolog.Nop())
	text, err := e.Explain(context.Background(), sampleExplanation())

	require.NoError(t, err)
	assert.Equal(t, "KNCR11 paga dividendos mensais.", text)
	gen.AssertExpectations(t)
}

func TestExplain_GeneratorError(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateContent", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))

	e := NewExplainer(gen, time.Second, zerolog.Nop())
	_, err := e.Explain(context.Background(), sampleExplanation())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "KNCR11")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExplain_AppliesTimeout(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateContent", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return("ok", nil)

	e := NewExplainer(gen, time.Minute, zerolog.Nop())
	_, err := e.Explain(context.Background(), sampleExplanation())
	require.NoError(t, err)
	gen.AssertExpectations(t)
}

func TestNoop(t *testing.T) {
	var e domain.Explainer = Noop{}
	text, err := e.Explain(context.Background(), sampleExplanation())
	assert.NoError(t, err)
	assert.Empty(t, text)
}

func TestMetricLabel(t *testing.T) {
	assert.Equal(t, "P/VP", MetricLabel(domain.MetricPriceToBook))
	assert.Equal(t, "custom", MetricLabel(domain.Metric("custom")))
}

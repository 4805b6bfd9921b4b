// Package explain writes short narratives for recommended buys.
package explain

import (
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/pkg/format"
)

// DefaultTimeout bounds a single narrative request.
const DefaultTimeout = 20 * time.Second

// TextGenerator is a language model that completes a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

var promptTemplate = template.Must(template.New("prompt").Funcs(template.FuncMap{
	"brl":     format.Currency,
	"pct":     format.Percentage,
	"metrics": joinMetrics,
}).Parse(`Você é um especialista em fundos imobiliários (FIIs) e precisa explicar ao investidor por que o FII {{.Ticker}} é uma boa escolha para sua carteira.

Dados do FII:
- Ticker: {{.Ticker}}{{if .Name}} ({{.Name}}){{end}}
- Tipo: {{.Category.DisplayName}}
- Posição no ranking da categoria: {{.Rank}}
- Preço atual: {{brl .UnitPrice}}
- Dividend Yield anual: {{pct .DividendYield}}
- Quantidade sugerida: {{.ShareCount}} cotas
- Investimento total: {{brl .InvestedAmount}}
- Renda mensal estimada: {{brl .MonthlyIncome}}
{{- if .Strengths}}
- Pontos fortes: {{metrics .Strengths}}{{end}}
{{- if .Weaknesses}}
- Pontos de atenção: {{metrics .Weaknesses}}{{end}}

Explique de forma clara por que este FII se destaca na categoria, como contribui para a diversificação da carteira e quais as perspectivas para este tipo de ativo.
Responda de forma direta e objetiva em até 3 parágrafos.`))

// Prompt renders the request sent to the model.
func Prompt(in domain.Explanation) (string, error) {
	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, in); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}

// Explainer asks a language model for the rationale behind a buy.
type Explainer struct {
	generator TextGenerator
	timeout   time.Duration
	log       zerolog.Logger
}

// NewExplainer creates an explainer. A non-positive timeout uses
// DefaultTimeout.
func NewExplainer(generator TextGenerator, timeout time.Duration, log zerolog.Logger) *Explainer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Explainer{
		generator: generator,
		timeout:   timeout,
		log:       log.With().Str("service", "explain").Logger(),
	}
}

// Explain implements domain.Explainer.
func (e *Explainer) Explain(ctx context.Context, in domain.Explanation) (string, error) {
	prompt, err := Prompt(in)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to explain %s: %w", in.Ticker, err)
	}

	e.log.Debug().Str("ticker", in.Ticker).Int("chars", len(text)).Msg("Explanation generated")
	return strings.TrimSpace(text), nil
}

// Noop never produces a narrative; used when no model is configured.
type Noop struct{}

// Explain implements domain.Explainer.
func (Noop) Explain(ctx context.Context, in domain.Explanation) (string, error) {
	return "", nil
}

var metricLabels = map[domain.Metric]string{
	domain.MetricDividendYield:       "dividend yield",
	domain.MetricPriceToBook:         "P/VP",
	domain.MetricLiquidity:           "liquidez",
	domain.MetricPriceTrend:          "tendência de preço",
	domain.MetricPriceVolatility:     "volatilidade",
	domain.MetricDividendConsistency: "consistência de dividendos",
	domain.MetricNewsSentiment:       "sentimento das notícias",
	domain.MetricRecentSentiment:     "notícias recentes",
	domain.MetricVacancyRate:         "vacância",
	domain.MetricDiversification:     "diversificação",
	domain.MetricCapRate:             "cap rate",
	domain.MetricContractDuration:    "prazo dos contratos",
}

// MetricLabel returns the Portuguese label of a metric.
func MetricLabel(m domain.Metric) string {
	if label, ok := metricLabels[m]; ok {
		return label
	}
	return string(m)
}

func joinMetrics(metrics []domain.Metric) string {
	labels := make([]string, len(metrics))
	for i, m := range metrics {
		labels[i] = MetricLabel(m)
	}
	return strings.Join(labels, ", ")
}

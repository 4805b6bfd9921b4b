// Package report renders recommendations, ledger views and rebalancing
// advice as markdown, optionally styled for a terminal with glamour.
package report

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/allocation"
	"github.com/Andre13Filho/FII-AI/internal/modules/explain"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/rebalancing"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
	"github.com/Andre13Filho/FII-AI/pkg/format"
)

// DefaultWordWrap is the terminal width used by Render.
const DefaultWordWrap = 100

var funcs = template.FuncMap{
	"brl": format.Currency,
	"pct": format.Percentage,
	"pts": format.PercentagePoints,
	"category": func(c domain.Category) string {
		return c.DisplayName()
	},
	"join": strings.Join,
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
	"labels": func(metrics []domain.Metric) string {
		out := make([]string, len(metrics))
		for i, m := range metrics {
			out[i] = explain.MetricLabel(m)
		}
		return strings.Join(out, ", ")
	},
	"side": func(s portfolio.Side) string {
		if s == portfolio.SideSell {
			return "venda"
		}
		return "compra"
	},
}

const recommendationTemplate = `# Recomendação de FIIs

Gerada em {{ .GeneratedAt.Format "02/01/2006 15:04" }}

| Capital total | Orçamento FII | Investido | Renda mensal | Renda anual | Yield anual |
|---:|---:|---:|---:|---:|---:|
| {{ brl .TotalCapital }} | {{ brl .FIIBudget }} | {{ brl .Invested }} | {{ brl .MonthlyIncome }} | {{ brl .AnnualIncome }} | {{ pct .AnnualYield }} |

{{- if .Categories }}

## Por categoria

| Categoria | Fundos | Investimento | % | Renda mensal | DY médio |
|:---|---:|---:|---:|---:|---:|
{{- range .Categories }}
| {{ .DisplayName }} | {{ .Count }} | {{ brl .Investment }} | {{ pts .Percentage }} | {{ brl .MonthlyIncome }} | {{ pts .AvgDividendYield }} |
{{- end }}
{{- end }}

{{- if .Positions }}

## Fundos

| Ticker | Categoria | Cotas | Preço | Investimento | DY | Renda mensal |
|:---|:---|---:|---:|---:|---:|---:|
{{- range .Positions }}
| {{ .Ticker }} | {{ category .Category }} | {{ .ShareCount }} | {{ brl .UnitPrice }}{{ if .PriceFallback }}*{{ end }} | {{ brl .InvestedAmount }} | {{ pct .DividendYield }} | {{ brl .MonthlyIncome }} |
{{- end }}
{{- range .Positions }}{{ if .Explanation }}

### {{ .Ticker }}

{{ .Explanation }}
{{- end }}{{ end }}
{{- else }}

Nenhum fundo coube no orçamento.
{{- end }}

{{- if .Simulated }}

> Dados simulados para: {{ join .Simulated ", " }}
{{- end }}
`

const ledgerTemplate = `# Carteira

{{- with .Summary }}

| Posições | Cotas | Total investido |
|---:|---:|---:|
| {{ .PositionCount }} | {{ .TotalShares }} | {{ brl .TotalInvested }} |
{{- end }}

{{- if .Summary.InvestedByCategory }}

## Por categoria

| Categoria | Investido | % |
|:---|---:|---:|
{{- range $c, $v := .Summary.InvestedByCategory }}
| {{ category $c }} | {{ brl $v }} | {{ pts (index $.Summary.ByCategory $c) }} |
{{- end }}
{{- end }}

{{- if .Positions }}

## Posições

| Ticker | Categoria | Cotas | Preço médio | Investido |
|:---|:---|---:|---:|---:|
{{- range .Positions }}
| {{ .Ticker }} | {{ category .Category }} | {{ .ShareCount }} | {{ brl .AverageCost }} | {{ brl .Invested }} |
{{- end }}
{{- else }}

Nenhuma posição registrada.
{{- end }}

{{- with .Performance }}{{ if .Positions }}

## Desempenho

| Ticker | Preço atual | Valor atual | Resultado | Retorno |
|:---|---:|---:|---:|---:|
{{- range .Positions }}
| {{ .Ticker }} | {{ brl .CurrentPrice }} | {{ brl .CurrentValue }} | {{ brl .UnrealizedPnL }} | {{ pct .Return }} |
{{- end }}
| **Total** | | **{{ brl .CurrentValue }}** | **{{ brl .UnrealizedPnL }}** | **{{ pct .Return }}** |
{{- end }}
{{- if .Unpriced }}

> Sem cotação: {{ join .Unpriced ", " }}
{{- end }}{{ end }}
`

const rebalanceTemplate = `# Rebalanceamento

{{- if eq .Status "empty" }}

Nenhuma posição registrada.
{{- else if eq .Status "balanced" }}

A carteira está balanceada.
{{- else }}

Valor a investir: **{{ brl .Investable }}**
{{- range .Suggestions }}

## {{ .DisplayName }}

Atual {{ pts .Current }}, alvo {{ pts .Target }}, desvio {{ pts .Deviation.Deviation }}. Alocado: {{ brl .Allocated }}.
{{- if .Funds }}

| Ticker | Cotas | Preço | Valor | DY |
|:---|---:|---:|---:|---:|
{{- range .Funds }}
| {{ .Ticker }} | {{ .ShareCount }} | {{ brl .UnitPrice }} | {{ brl .Amount }} | {{ pct .DividendYield }} |
{{- end }}
{{- end }}
{{- end }}
{{- if .Overweight }}

## Acima do alvo

| Categoria | Atual | Alvo | Desvio |
|:---|---:|---:|---:|
{{- range .Overweight }}
| {{ .DisplayName }} | {{ pts .Current }} | {{ pts .Target }} | {{ pts .Deviation }} |
{{- end }}
{{- end }}
{{- end }}
`

const historyTemplate = `# Histórico de transações
{{- if . }}

| Data | Ticker | Operação | Cotas | Preço | Total |
|:---|:---|:---|---:|---:|---:|
{{- range . }}
| {{ .Date }} | {{ .Ticker }} | {{ side .Side }} | {{ .ShareCount }} | {{ brl .UnitPrice }} | {{ brl .Total }} |
{{- end }}
{{- else }}

Nenhuma transação registrada.
{{- end }}
`

const fundsTemplate = `# {{ .Category.DisplayName }}
{{- if .Funds }}

| # | Ticker | Nome | Nota | Preço | DY | P/VP | Destaques |
|---:|:---|:---|---:|---:|---:|---:|:---|
{{- range .Funds }}
| {{ .Rank }} | {{ .Ticker }} | {{ .Name }} | {{ printf "%.3f" .FinalScore }} | {{ brl .Price }} | {{ pct (deref .DividendYield) }} | {{ printf "%.2f" (deref .PriceToBook) }} | {{ labels .Strengths }} |
{{- end }}
{{- else }}

Nenhum fundo disponível.
{{- end }}
`

var (
	fundsTmpl          = template.Must(template.New("funds").Funcs(funcs).Parse(fundsTemplate))
	historyTmpl        = template.Must(template.New("history").Funcs(funcs).Parse(historyTemplate))
	recommendationTmpl = template.Must(template.New("recommendation").Funcs(funcs).Parse(recommendationTemplate))
	ledgerTmpl         = template.Must(template.New("ledger").Funcs(funcs).Parse(ledgerTemplate))
	rebalanceTmpl      = template.Must(template.New("rebalance").Funcs(funcs).Parse(rebalanceTemplate))
)

// LedgerView is the data behind the ledger report. Performance is optional.
type LedgerView struct {
	Summary     portfolio.Summary
	Positions   []portfolio.Position
	Performance *portfolio.Performance
}

// Recommendation renders a recommendation as markdown.
func Recommendation(rec *allocation.Recommendation) (string, error) {
	return execute(recommendationTmpl, rec)
}

// Ledger renders positions, totals and, when present, performance.
func Ledger(view LedgerView) (string, error) {
	return execute(ledgerTmpl, view)
}

// Funds renders the ranked funds of one category.
func Funds(category domain.Category, funds []scoring.ScoredAsset) (string, error) {
	return execute(fundsTmpl, struct {
		Category domain.Category
		Funds    []scoring.ScoredAsset
	}{category, funds})
}

// History renders transactions, in the order given.
func History(entries []portfolio.HistoryEntry) (string, error) {
	return execute(historyTmpl, entries)
}

// Rebalance renders rebalancing suggestions.
func Rebalance(result rebalancing.Result) (string, error) {
	return execute(rebalanceTmpl, result)
}

func execute(tmpl *template.Template, data interface{}) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render %s report: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// Render styles markdown for a terminal. style is a glamour standard style
// ("dark", "light", "notty", ...); empty means "dark".
func Render(markdown, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(DefaultWordWrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/allocation"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/rebalancing"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
)

func sampleRecommendation() *allocation.Recommendation {
	return &allocation.Recommendation{
		GeneratedAt:   time.Date(2024, 6, 14, 10, 30, 0, 0, time.UTC),
		TotalCapital:  40000,
		FIIBudget:     10000,
		Invested:      9854.2,
		MonthlyIncome: 88.5,
		AnnualIncome:  1062,
		AnnualYield:   0.1078,
		Positions: []allocation.AllocatedPosition{{
			Ticker:         "KNCR11",
			Category:       domain.CategoryCRI,
			UnitPrice:      105.38,
			ShareCount:     12,
			InvestedAmount: 1264.56,
			DividendYield:  0.108,
			MonthlyIncome:  11.38,
			Explanation:    "Fundo de papel com boa liquidez.",
			PriceFallback:  true,
		}},
		Categories: []allocation.CategorySummary{{
			Category:         domain.CategoryCRI,
			DisplayName:      domain.CategoryCRI.DisplayName(),
			Investment:       1264.56,
			Count:            1,
			MonthlyIncome:    11.38,
			Percentage:       12.83,
			AvgDividendYield: 10.8,
		}},
		Simulated: []string{"KNCR11"},
	}
}

func TestRecommendation(t *testing.T) {
	md, err := Recommendation(sampleRecommendation())
	require.NoError(t, err)

	assert.Contains(t, md, "Gerada em 14/06/2024 10:30")
	assert.Contains(t, md, "| R$ 40.000,00 | R$ 10.000,00 | R$ 9.854,20 |")
	assert.Contains(t, md, "| Fundos de CRI | 1 | R$ 1.264,56 | 12,83% |")
	assert.Contains(t, md, "| KNCR11 | Fundos de CRI | 12 | R$ 105,38* |")
	assert.Contains(t, md, "### KNCR11")
	assert.Contains(t, md, "Fundo de papel com boa liquidez.")
	assert.Contains(t, md, "Dados simulados para: KNCR11")
}

func TestRecommendation_NothingAffordable(t *testing.T) {
	md, err := Recommendation(&allocation.Recommendation{TotalCapital: 10})
	require.NoError(t, err)
	assert.Contains(t, md, "Nenhum fundo coube no orçamento.")
	assert.NotContains(t, md, "## Fundos")
}

func TestLedger(t *testing.T) {
	positions := []portfolio.Position{
		{Ticker: "HGLG11", Category: domain.CategoryLogistica, ShareCount: 150, AverageCost: 102},
	}
	perf := &portfolio.Performance{
		TotalInvested: 15300,
		CurrentValue:  16500,
		UnrealizedPnL: 1200,
		Return:        0.0784,
		Positions: []portfolio.PositionPerformance{{
			Ticker: "HGLG11", CurrentPrice: 110, CurrentValue: 16500, UnrealizedPnL: 1200, Return: 0.0784,
		}},
		Unpriced: []string{"MXRF11"},
	}

	md, err := Ledger(LedgerView{
		Summary:     portfolio.Summarize(positions),
		Positions:   positions,
		Performance: perf,
	})
	require.NoError(t, err)

	assert.Contains(t, md, "| 1 | 150 | R$ 15.300,00 |")
	assert.Contains(t, md, "| Fundos de Logística | R$ 15.300,00 | 100,00% |")
	assert.Contains(t, md, "| HGLG11 | Fundos de Logística | 150 | R$ 102,00 | R$ 15.300,00 |")
	assert.Contains(t, md, "## Desempenho")
	assert.Contains(t, md, "| HGLG11 | R$ 110,00 | R$ 16.500,00 | R$ 1.200,00 | 7,84% |")
	assert.Contains(t, md, "Sem cotação: MXRF11")
}

func TestLedger_Empty(t *testing.T) {
	md, err := Ledger(LedgerView{Summary: portfolio.Summarize(nil)})
	require.NoError(t, err)
	assert.Contains(t, md, "Nenhuma posição registrada.")
	assert.NotContains(t, md, "Desempenho")
}

func TestFunds(t *testing.T) {
	md, err := Funds(domain.CategoryLogistica, []scoring.ScoredAsset{{
		AssetMetrics: domain.AssetMetrics{
			Ticker: "HGLG11", Name: "CSHG Logística", Price: 160,
			DividendYield: domain.Float(0.085), PriceToBook: domain.Float(1.02),
		},
		FinalScore: 0.8123,
		Rank:       1,
		Strengths:  []domain.Metric{domain.MetricDividendYield, domain.MetricVacancyRate},
	}})
	require.NoError(t, err)
	assert.Contains(t, md, "# Fundos de Logística")
	assert.Contains(t, md, "| 1 | HGLG11 | CSHG Logística | 0.812 | R$ 160,00 | 8,50% | 1.02 | dividend yield, vacância |")

	md, err = Funds(domain.CategoryFOF, nil)
	require.NoError(t, err)
	assert.Contains(t, md, "Nenhum fundo disponível.")
}

func TestHistory(t *testing.T) {
	md, err := History([]portfolio.HistoryEntry{
		{Date: "2024-03-04", Ticker: "HGLG11", Side: portfolio.SideSell, ShareCount: 20, UnitPrice: 110, Total: 2200},
		{Date: "2024-01-02", Ticker: "HGLG11", Side: portfolio.SideBuy, ShareCount: 100, UnitPrice: 100, Total: 10000},
	})
	require.NoError(t, err)

	assert.Contains(t, md, "| 2024-03-04 | HGLG11 | venda | 20 | R$ 110,00 | R$ 2.200,00 |")
	assert.Contains(t, md, "| 2024-01-02 | HGLG11 | compra | 100 |")
	assert.Less(t, strings.Index(md, "2024-03-04"), strings.Index(md, "2024-01-02"))

	md, err = History(nil)
	require.NoError(t, err)
	assert.Contains(t, md, "Nenhuma transação registrada.")
}

func TestRebalance(t *testing.T) {
	tests := []struct {
		name   string
		result rebalancing.Result
		want   []string
	}{
		{"empty", rebalancing.Result{Status: rebalancing.StatusEmpty}, []string{"Nenhuma posição registrada."}},
		{"balanced", rebalancing.Result{Status: rebalancing.StatusBalanced}, []string{"A carteira está balanceada."}},
		{"rebalance", rebalancing.Result{
			Status:     rebalancing.StatusRebalance,
			Investable: 500,
			Suggestions: []rebalancing.CategorySuggestion{{
				Deviation: rebalancing.Deviation{
					Category: domain.CategoryFOF, DisplayName: "Fundos de Fundos (FoF)",
					Current: 2, Target: 14, Deviation: -12,
				},
				Allocated: 500,
				Funds: []rebalancing.FundSuggestion{
					{Ticker: "BCFF11", UnitPrice: 60, ShareCount: 2, Amount: 120, DividendYield: 0.1},
				},
			}},
			Overweight: []rebalancing.Deviation{
				{Category: domain.CategoryCRI, DisplayName: "Fundos de CRI", Current: 48, Target: 27, Deviation: 21},
			},
		}, []string{
			"Valor a investir: **R$ 500,00**",
			"## Fundos de Fundos (FoF)",
			"desvio -12,00%",
			"| BCFF11 | 2 | R$ 60,00 | R$ 120,00 | 10,00% |",
			"| Fundos de CRI | 48,00% | 27,00% | 21,00% |",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := Rebalance(tt.result)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, md, want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	md, err := Recommendation(sampleRecommendation())
	require.NoError(t, err)

	out, err := Render(md, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "KNCR11")
}

package marketdata

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/universe"
	"github.com/Andre13Filho/FII-AI/pkg/formulas"
)

type span struct{ lo, hi float64 }

type quoteRanges struct {
	yield, price, priceToBook span
}

// quoteProfiles are the per-category draw ranges of a simulated quote.
var quoteProfiles = map[domain.Category]quoteRanges{
	domain.CategoryCRI:         {yield: span{0.08, 0.12}, price: span{80, 120}, priceToBook: span{0.85, 1.15}},
	domain.CategoryShopping:    {yield: span{0.06, 0.10}, price: span{90, 130}, priceToBook: span{0.80, 1.10}},
	domain.CategoryLogistica:   {yield: span{0.07, 0.11}, price: span{85, 125}, priceToBook: span{0.75, 1.05}},
	domain.CategoryEscritorio:  {yield: span{0.065, 0.095}, price: span{75, 115}, priceToBook: span{0.70, 1.00}},
	domain.CategoryRendaUrbana: {yield: span{0.075, 0.105}, price: span{95, 140}, priceToBook: span{0.90, 1.20}},
	domain.CategoryFOF:         {yield: span{0.07, 0.10}, price: span{90, 135}, priceToBook: span{0.95, 1.25}},
}

var liquidityRange = span{50000, 500000}

var newsSources = []string{"Status Invest", "InfoMoney", "Valor Econômico", "XP Research"}

var headlines = map[Sentiment][]string{
	SentimentPositive: {
		"%s distribui dividendos acima do esperado",
		"Gestora do %s anuncia aquisição estratégica",
		"Ocupação dos imóveis do %s atinge máxima histórica",
		"Analistas elevam recomendação para %s",
		"%s renova contrato com inquilino-âncora",
		"Resultados do %s superam expectativas do mercado",
	},
	SentimentNeutral: {
		"%s mantém distribuição de dividendos",
		"Assembleia de cotistas do %s aprova contas",
		"Gestora do %s apresenta relatório trimestral",
		"%s anuncia novas emissões de cotas",
		"Entenda a estratégia do fundo %s",
		"%s realiza ajustes na carteira de ativos",
	},
	SentimentNegative: {
		"%s reduz distribuição de dividendos",
		"Vacância nos imóveis do %s preocupa investidores",
		"Analistas rebaixam recomendação para %s",
		"%s enfrenta dificuldades com inquilinos",
		"Rentabilidade do %s fica abaixo da média do setor",
		"Gestora do %s alerta para desafios à frente",
	},
}

// Quote is a point-in-time price snapshot.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	DividendYield float64 `json:"dividend_yield"`
	PriceToBook   float64 `json:"price_to_book"`
	Liquidity     float64 `json:"liquidity"`
}

// Fundamentals are the portfolio-level characteristics of a fund.
type Fundamentals struct {
	VacancyRate      float64 `json:"vacancy_rate"`
	NumAssets        int     `json:"num_assets"`
	CapRate          float64 `json:"cap_rate"`
	Diversification  int     `json:"diversification"`
	ContractDuration float64 `json:"average_contract_duration"` // years
}

// SimulatedSource produces plausible, seeded market data. Every ticker draws
// from its own random stream, so results do not depend on call order.
type SimulatedSource struct {
	seed int64
	now  func() time.Time
	log  zerolog.Logger
}

// NewSimulatedSource creates a simulated source. A zero seed is replaced by
// the current time, giving different data on every run.
func NewSimulatedSource(seed int64, log zerolog.Logger) *SimulatedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedSource{
		seed: seed,
		now:  time.Now,
		log:  log.With().Str("service", "simulated_market").Logger(),
	}
}

// Seed returns the effective seed.
func (s *SimulatedSource) Seed() int64 {
	return s.seed
}

func (s *SimulatedSource) stream(kind, ticker string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.ToUpper(ticker)))
	return rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
}

func uniform(r *rand.Rand, s span) float64 {
	return s.lo + r.Float64()*(s.hi-s.lo)
}

func intBetween(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// Quote draws a quote from the category's ranges. Unknown categories use the
// CRI ranges.
func (s *SimulatedSource) Quote(ticker string, category domain.Category) Quote {
	ranges, ok := quoteProfiles[category]
	if !ok {
		ranges = quoteProfiles[domain.CategoryCRI]
	}
	r := s.stream("quote", ticker)

	return Quote{
		Ticker:        ticker,
		Name:          "FII " + ticker,
		DividendYield: formulas.Round(uniform(r, ranges.yield), 4),
		Price:         formulas.Round(uniform(r, ranges.price), 2),
		PriceToBook:   formulas.Round(uniform(r, ranges.priceToBook), 2),
		Liquidity:     formulas.Round(uniform(r, liquidityRange), 2),
	}
}

// Fundamentals draws fund characteristics typical of the category.
func (s *SimulatedSource) Fundamentals(ticker string, category domain.Category) Fundamentals {
	r := s.stream("fundamentals", ticker)
	var f Fundamentals

	switch category {
	case domain.CategoryCRI:
		f.VacancyRate = formulas.Round(uniform(r, span{0, 0.05}), 4)
		f.NumAssets = intBetween(r, 15, 50)
		f.CapRate = formulas.Round(uniform(r, span{0.09, 0.14}), 4)
		f.Diversification = intBetween(r, 8, 15) // debtors
		f.ContractDuration = formulas.Round(uniform(r, span{2, 8}), 1)
	case domain.CategoryShopping, domain.CategoryLogistica, domain.CategoryEscritorio:
		f.VacancyRate = formulas.Round(uniform(r, span{0.05, 0.25}), 4)
		f.NumAssets = intBetween(r, 3, 20)
		f.CapRate = formulas.Round(uniform(r, span{0.07, 0.12}), 4)
		f.Diversification = f.NumAssets // properties
		f.ContractDuration = formulas.Round(uniform(r, span{3, 10}), 1)
	case domain.CategoryRendaUrbana:
		f.VacancyRate = formulas.Round(uniform(r, span{0.02, 0.15}), 4)
		f.NumAssets = intBetween(r, 5, 25)
		f.CapRate = formulas.Round(uniform(r, span{0.08, 0.13}), 4)
		f.Diversification = f.NumAssets
		f.ContractDuration = formulas.Round(uniform(r, span{5, 15}), 1)
	case domain.CategoryFOF:
		// Funds of funds hold quotas, not buildings
		f.NumAssets = intBetween(r, 10, 30)
		f.CapRate = formulas.Round(uniform(r, span{0.07, 0.11}), 4)
		f.Diversification = intBetween(r, 4, 8) // segments
	default:
		f.VacancyRate = formulas.Round(uniform(r, span{0.05, 0.15}), 4)
		f.NumAssets = intBetween(r, 5, 25)
		f.CapRate = formulas.Round(uniform(r, span{0.08, 0.12}), 4)
		f.Diversification = intBetween(r, 5, 12)
		f.ContractDuration = formulas.Round(uniform(r, span{3, 8}), 1)
	}

	return f
}

// History simulates a year of business-day prices with a drift, normal daily
// noise and one dividend per month.
func (s *SimulatedSource) History(ticker string) History {
	r := s.stream("history", ticker)
	days := businessDays(s.now())

	initial := uniform(r, span{80, 120})
	trend := uniform(r, span{-0.15, 0.15})
	dailyTrend := math.Pow(1+trend, 1.0/formulas.TradingDaysPerYear) - 1
	volatility := uniform(r, span{0.01, 0.02})

	prices := make([]PricePoint, len(days))
	price := initial
	for i, d := range days {
		if i > 0 {
			price *= 1 + dailyTrend + r.NormFloat64()*volatility
			if price < 0.01 {
				price = 0.01
			}
		}
		prices[i] = PricePoint{Date: d, Price: price}
	}

	// Group indexes by month, keeping calendar order
	var months [][]int
	for i, d := range days {
		if i == 0 || d.Month() != days[i-1].Month() {
			months = append(months, nil)
		}
		months[len(months)-1] = append(months[len(months)-1], i)
	}

	dividends := make([]DividendPayment, 0, len(months))
	for _, idx := range months {
		pick := idx[r.Intn(len(idx))]
		value := prices[pick].Price * uniform(r, span{0.004, 0.01})
		dividends = append(dividends, DividendPayment{
			Date:  prices[pick].Date,
			Value: formulas.Round(value, 2),
		})
	}

	return History{Prices: prices, Dividends: dividends}
}

// News simulates 3 to 8 recent headlines, mostly neutral, newest first.
func (s *SimulatedSource) News(ticker string) []NewsItem {
	r := s.stream("news", ticker)
	today := s.now()

	count := intBetween(r, 3, 8)
	items := make([]NewsItem, 0, count)
	for i := 0; i < count; i++ {
		var sentiment Sentiment
		switch p := r.Float64(); {
		case p < 0.25:
			sentiment = SentimentPositive
		case p < 0.85:
			sentiment = SentimentNeutral
		default:
			sentiment = SentimentNegative
		}

		titles := headlines[sentiment]
		daysAgo := intBetween(r, 1, 90)
		items = append(items, NewsItem{
			Date:      today.AddDate(0, 0, -daysAgo),
			Title:     fmt.Sprintf(titles[r.Intn(len(titles))], ticker),
			Source:    newsSources[r.Intn(len(newsSources))],
			Sentiment: sentiment,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})
	return items
}

// FetchMetrics implements domain.MetricsSource with fully simulated data.
func (s *SimulatedSource) FetchMetrics(ctx context.Context, ticker string, category domain.Category) (domain.AssetMetrics, error) {
	if err := ctx.Err(); err != nil {
		return domain.AssetMetrics{}, err
	}

	q := s.Quote(ticker, category)
	metrics := assemble(ticker, category, domain.SourceSimulated, quoteFields{
		Name:          q.Name,
		Price:         q.Price,
		DividendYield: domain.Float(q.DividendYield),
		PriceToBook:   domain.Float(q.PriceToBook),
		Liquidity:     domain.Float(q.Liquidity),
	}, s.History(ticker).Metrics(), AnalyzeNews(s.News(ticker)), s.Fundamentals(ticker, category))

	s.log.Debug().Str("ticker", ticker).Str("category", string(category)).Msg("Simulated metrics generated")
	return metrics, nil
}

// GetPrice implements domain.PriceSource. The quote is drawn from the ranges
// of the first catalog category listing the ticker.
func (s *SimulatedSource) GetPrice(ctx context.Context, ticker string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	category := domain.CategoryCRI
	if cats := universe.CategoriesOf(ticker); len(cats) > 0 {
		category = cats[0]
	}
	return s.Quote(strings.ToUpper(strings.TrimSpace(ticker)), category).Price, nil
}

// quoteFields are the quote-derived inputs; nil means not reported.
type quoteFields struct {
	Name          string
	Price         float64
	DividendYield *float64
	PriceToBook   *float64
	Liquidity     *float64
}

// assemble merges quote, history, news and fundamentals into scoring inputs.
func assemble(ticker string, category domain.Category, source domain.DataSource, q quoteFields,
	hist HistoricalMetrics, news NewsAnalysis, f Fundamentals) domain.AssetMetrics {
	name := q.Name
	if name == "" {
		name = "FII " + ticker
	}

	var quoted float64
	if q.DividendYield != nil {
		quoted = *q.DividendYield
	}

	return domain.AssetMetrics{
		Ticker:   ticker,
		Name:     name,
		Category: category,
		Price:    q.Price,
		Source:   source,

		DividendYield:       q.DividendYield,
		PriceToBook:         q.PriceToBook,
		Liquidity:           q.Liquidity,
		PriceTrend:          domain.Float(hist.TrendPct),
		PriceVolatility:     domain.Float(hist.VolatilityPct),
		DividendConsistency: domain.Float(DividendConsistency(hist, quoted)),
		NewsSentiment:       domain.Float(news.SentimentScore),
		RecentSentiment:     domain.Float(news.RecentSentiment),
		VacancyRate:         domain.Float(f.VacancyRate),
		Diversification:     domain.Float(float64(f.Diversification)),
		CapRate:             domain.Float(f.CapRate),
		ContractDuration:    domain.Float(f.ContractDuration),
	}
}

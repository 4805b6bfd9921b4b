// Package universe is the static FII catalog: which tickers belong to each
// category and the reference dividend table used when live data is missing.
package universe

import (
	"sort"
	"strings"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// tickersByCategory is the candidate universe per category.
// A fund may appear in more than one category (e.g. hybrid CRI/urban funds).
var tickersByCategory = map[domain.Category][]string{
	domain.CategoryCRI: {
		"KNCR11", "KNIP11", "KNHY11", "HGCR11", "VGIR11",
		"RECR11", "IRDM11", "RBRY11", "VCJR11", "KCRE11",
		"KNSC11", "KNUQ11", "KFEN11", "RCRB11", "BTCR11",
		"VCRR11", "MCCI11", "VRTA11", "RZTR11", "OUFF11",
	},
	domain.CategoryShopping: {
		"VISC11", "XPML11", "MALL11", "HGBS11", "HSML11",
		"VRTA11", "SHOP11", "SHUL11", "ATSA11", "FIGS11",
		"BPML11", "PQDP11", "HPDP11", "VSHO11", "FLRP11",
		"ABCP11", "SHPH11", "SPVJ11", "FVPQ11", "JRDM11",
		"ELDO11", "SHDP11", "SCPF11", "WPLZ11", "VPSI11",
	},
	domain.CategoryLogistica: {
		"VILG11", "HGLG11", "BRCO11", "BTLG11", "LVBI11",
		"XPLG11", "CXTL11", "SDIL11", "OULG11", "LGCP11",
		"DERE11", "ALZR11", "PLOG11", "PATL11", "HSLG11",
		"VSLG11", "GALG11", "RBRL11", "VTLT11", "GGRD11",
	},
	domain.CategoryEscritorio: {
		"BRCR11", "HGRE11", "RBRP11", "PVBI11", "JSRE11",
		"KNRI11", "RCRB11", "GTWR11", "ALMI11", "EDGA11",
		"BBPO11", "VINO11", "RBED11", "THRA11", "HGPO11",
		"TEPP11", "ONEF11", "BTRA11", "FIIB11",
	},
	domain.CategoryRendaUrbana: {
		"KNSC11", "HCTR11", "TRXF11", "GGRC11", "VINO11",
		"BBPO11", "RBVA11", "HCST11", "LASC11", "MGCR11",
		"XPPR11", "RZAK11", "RBRS11", "HOSI11", "GSFI11",
		"BARI11", "HFOF11", "MFII11", "XPSF11", "VGIR11",
	},
	domain.CategoryFOF: {
		"RBFF11", "KFOF11", "HFOF11", "BCIA11", "HABT11",
		"CFHI11", "XPFT11", "BCFF11", "IFIE11", "ARRI11",
		"QIFF11", "RFOF11", "IBFF11", "FOFT11", "AFHI11",
		"BPFF11", "IRDM11", "MGFF11",
	},
}

// DefaultAllocation is the recommended share of the FII budget per category.
var DefaultAllocation = map[domain.Category]float64{
	domain.CategoryCRI:         0.27,
	domain.CategoryShopping:    0.17,
	domain.CategoryLogistica:   0.17,
	domain.CategoryEscritorio:  0.16,
	domain.CategoryRendaUrbana: 0.09,
	domain.CategoryFOF:         0.14,
}

// Tickers returns a copy of the candidate list for a category.
func Tickers(category domain.Category) []string {
	src := tickersByCategory[category]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// CategoriesOf returns every category that lists the ticker, in display order.
func CategoriesOf(ticker string) []domain.Category {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	var result []domain.Category
	for _, c := range domain.Categories {
		for _, t := range tickersByCategory[c] {
			if t == ticker {
				result = append(result, c)
				break
			}
		}
	}
	return result
}

// AllTickers returns the de-duplicated universe, sorted.
func AllTickers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range tickersByCategory {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}

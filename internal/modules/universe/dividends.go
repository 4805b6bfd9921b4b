package universe

import "strings"

// DividendInfo is reference data for a fund: monthly yield, last monthly
// dividend per share and a reference price.
type DividendInfo struct {
	MonthlyYield float64 `json:"monthly_yield"`
	LastDividend float64 `json:"last_dividend"`
	Price        float64 `json:"price"`
}

// dividendTable holds demonstration estimates, not market data.
var dividendTable = map[string]DividendInfo{
	// CRI
	"KNCR11": {0.0090, 0.95, 105.38},
	"KNIP11": {0.0098, 1.03, 104.90},
	"KNHY11": {0.0115, 1.21, 105.22},
	"HGCR11": {0.0092, 1.12, 121.74},
	"VGIR11": {0.0088, 0.92, 104.54},
	"RECR11": {0.0105, 1.25, 119.05},
	"IRDM11": {0.0112, 1.21, 108.04},
	"RBRY11": {0.0097, 0.95, 97.94},
	"VCJR11": {0.0095, 0.93, 97.89},
	"KCRE11": {0.0086, 0.85, 98.83},
	"KNSC11": {0.0094, 0.96, 102.13},
	"KNUQ11": {0.0092, 0.85, 92.39},
	"KFEN11": {0.0106, 1.10, 103.77},
	"RCRB11": {0.0089, 0.93, 104.49},
	"BTCR11": {0.0103, 1.05, 101.94},
	"VCRR11": {0.0099, 0.98, 98.99},
	"MCCI11": {0.0095, 0.96, 101.05},
	"VRTA11": {0.0093, 0.89, 95.70},
	"RZTR11": {0.0110, 1.08, 98.18},
	"OUFF11": {0.0088, 0.87, 98.86},

	// Shopping
	"VISC11": {0.0080, 0.70, 87.50},
	"XPML11": {0.0075, 0.65, 86.67},
	"MALL11": {0.0066, 0.56, 84.85},
	"HGBS11": {0.0078, 0.72, 92.31},
	"HSML11": {0.0070, 0.60, 85.71},

	// Logistica
	"VILG11": {0.0082, 0.90, 109.76},
	"HGLG11": {0.0073, 0.98, 134.24},
	"BRCO11": {0.0085, 0.83, 97.65},
	"BTLG11": {0.0075, 0.75, 100.00},
	"LVBI11": {0.0087, 0.88, 101.15},

	// Escritorio
	"BRCR11": {0.0068, 0.50, 73.53},
	"HGRE11": {0.0063, 0.58, 92.06},
	"RBRP11": {0.0072, 0.60, 83.33},
	"PVBI11": {0.0070, 0.55, 78.57},
	"JSRE11": {0.0065, 0.48, 73.85},

	// Renda urbana
	"TRXF11": {0.0083, 0.82, 98.80},
	"GGRC11": {0.0085, 0.85, 100.00},
	"HCTR11": {0.0080, 0.78, 97.50},
	"RBVA11": {0.0082, 0.75, 91.46},
	"HCST11": {0.0078, 0.72, 92.31},

	// FoF
	"RBFF11": {0.0076, 0.62, 81.58},
	"KFOF11": {0.0079, 0.68, 86.08},
	"HFOF11": {0.0082, 0.70, 85.37},
	"BCIA11": {0.0075, 0.65, 86.67},
	"HABT11": {0.0080, 0.68, 85.00},
}

// LookupDividend returns the reference entry for a ticker, if any.
func LookupDividend(ticker string) (DividendInfo, bool) {
	info, ok := dividendTable[strings.ToUpper(strings.TrimSpace(ticker))]
	return info, ok
}

// ReferencePrice returns the table price for a ticker, or 0 when unknown.
func ReferencePrice(ticker string) float64 {
	info, ok := LookupDividend(ticker)
	if !ok {
		return 0
	}
	return info.Price
}

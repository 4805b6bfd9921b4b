package portfolio

import (
	"fmt"
	"io"
	"sort"

	"github.com/gocarina/gocsv"
)

// HistoryEntry is a transaction flattened with its position for listing and
// export.
type HistoryEntry struct {
	ID         string  `json:"id" csv:"id"`
	Ticker     string  `json:"ticker" csv:"ticker"`
	Category   string  `json:"category" csv:"category"`
	Date       string  `json:"date" csv:"date"`
	Side       Side    `json:"side" csv:"side"`
	ShareCount int     `json:"share_count" csv:"share_count"`
	UnitPrice  float64 `json:"unit_price" csv:"unit_price"`
	Total      float64 `json:"total" csv:"total"`
}

// History lists the transactions of one ticker, or of every open position
// when ticker is empty, newest first.
func (l *Ledger) History(ticker string) []HistoryEntry {
	ticker = normalizeTicker(ticker)

	l.mu.Lock()
	positions := l.snapshot()
	l.mu.Unlock()

	type dated struct {
		entry HistoryEntry
		seq   int
		unix  int64
	}

	var rows []dated
	for _, p := range positions {
		if ticker != "" && p.Ticker != ticker {
			continue
		}
		for i, tx := range p.Transactions {
			rows = append(rows, dated{
				entry: HistoryEntry{
					ID:         tx.ID,
					Ticker:     p.Ticker,
					Category:   string(p.Category),
					Date:       tx.Date.Format(dateLayout),
					Side:       tx.Side,
					ShareCount: tx.ShareCount,
					UnitPrice:  tx.UnitPrice,
					Total:      float64(tx.ShareCount) * tx.UnitPrice,
				},
				seq:  i,
				unix: tx.Date.Unix(),
			})
		}
	}

	// Same-day transactions keep recording order, latest first.
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].unix != rows[j].unix {
			return rows[i].unix > rows[j].unix
		}
		if rows[i].entry.Ticker != rows[j].entry.Ticker {
			return rows[i].entry.Ticker < rows[j].entry.Ticker
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]HistoryEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out
}

// ExportCSV writes the full transaction history of the open positions as CSV.
func (l *Ledger) ExportCSV(w io.Writer) error {
	entries := l.History("")
	if err := gocsv.Marshal(entries, w); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	return nil
}

// Package portfolio keeps the weighted-average-cost ledger of fund positions.
package portfolio

import (
	"errors"
	"fmt"
	"time"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// Side is the direction of a transaction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Transaction is one executed buy or sell.
type Transaction struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Side       Side      `json:"side"`
	ShareCount int       `json:"share_count"`
	UnitPrice  float64   `json:"unit_price"`
}

// Position is the open holding of one ticker. A position with zero shares
// does not exist.
type Position struct {
	Ticker        string          `json:"ticker"`
	Category      domain.Category `json:"category"`
	ShareCount    int             `json:"share_count"`
	AverageCost   float64         `json:"average_cost"`
	FirstAcquired time.Time       `json:"first_acquired"`
	Transactions  []Transaction   `json:"transactions"`
}

// Invested is the cost basis of the position.
func (p Position) Invested() float64 {
	return float64(p.ShareCount) * p.AverageCost
}

func (p Position) clone() Position {
	c := p
	c.Transactions = make([]Transaction, len(p.Transactions))
	copy(c.Transactions, p.Transactions)
	return c
}

// Ledger input errors. Always returned wrapped in a *ValidationError.
var (
	ErrInvalidTicker      = errors.New("ticker is required")
	ErrInvalidCategory    = errors.New("unknown category")
	ErrInvalidQuantity    = errors.New("share count must be positive")
	ErrInvalidPrice       = errors.New("unit price must be positive")
	ErrNoPosition         = errors.New("no open position")
	ErrInsufficientShares = errors.New("not enough shares held")
)

// ValidationError reports a rejected ledger operation. The ledger is left
// unchanged.
type ValidationError struct {
	Op     string // "buy" or "sell"
	Ticker string
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Ticker, e.Err)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

const dateLayout = "2006-01-02"

// dateOnly truncates t to midnight UTC; the ledger tracks calendar days.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

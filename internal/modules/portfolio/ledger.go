package portfolio

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// Store persists the full set of open positions.
type Store interface {
	Load() ([]Position, error)
	Save(positions []Position) error
}

// Ledger is the sole writer of positions. Every mutation rewrites the store;
// if the write fails the in-memory state is rolled back.
type Ledger struct {
	mu        sync.Mutex
	store     Store
	positions map[string]Position
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// NewLedger creates a ledger and loads its current state from the store.
func NewLedger(store Store, log zerolog.Logger) (*Ledger, error) {
	l := &Ledger{
		store:     store,
		positions: make(map[string]Position),
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log.With().Str("service", "ledger").Logger(),
	}

	loaded, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	for _, p := range loaded {
		l.positions[p.Ticker] = p.clone()
	}

	l.log.Debug().Int("positions", len(l.positions)).Msg("Ledger loaded")
	return l, nil
}

// RecordBuy adds shares at unitPrice, creating the position if needed.
// The average cost is recomputed as the share-weighted mean of the old cost
// and the new price. A zero date means today.
func (l *Ledger) RecordBuy(ticker string, category domain.Category, unitPrice float64, shares int, date time.Time) (Position, error) {
	ticker = normalizeTicker(ticker)

	switch {
	case ticker == "":
		return Position{}, &ValidationError{Op: "buy", Ticker: ticker, Err: ErrInvalidTicker}
	case shares <= 0:
		return Position{}, &ValidationError{Op: "buy", Ticker: ticker, Err: ErrInvalidQuantity, Detail: fmt.Sprintf("got %d", shares)}
	case !validPrice(unitPrice):
		return Position{}, &ValidationError{Op: "buy", Ticker: ticker, Err: ErrInvalidPrice, Detail: fmt.Sprintf("got %.2f", unitPrice)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	date = l.dateOrToday(date)
	tx := Transaction{
		ID:         l.newID(),
		Date:       date,
		Side:       SideBuy,
		ShareCount: shares,
		UnitPrice:  unitPrice,
	}

	prev, exists := l.positions[ticker]
	var next Position
	if exists {
		next = prev.clone()
		next.AverageCost = weightedAverageCost(prev.ShareCount, prev.AverageCost, shares, unitPrice)
		next.ShareCount += shares
		next.Transactions = append(next.Transactions, tx)
	} else {
		if !category.IsKnown() {
			return Position{}, &ValidationError{Op: "buy", Ticker: ticker, Err: ErrInvalidCategory, Detail: string(category)}
		}
		next = Position{
			Ticker:        ticker,
			Category:      category,
			ShareCount:    shares,
			AverageCost:   unitPrice,
			FirstAcquired: date,
			Transactions:  []Transaction{tx},
		}
	}

	l.positions[ticker] = next
	if err := l.persist(); err != nil {
		if exists {
			l.positions[ticker] = prev
		} else {
			delete(l.positions, ticker)
		}
		return Position{}, err
	}

	l.log.Info().
		Str("ticker", ticker).
		Int("shares", shares).
		Float64("unit_price", unitPrice).
		Float64("average_cost", next.AverageCost).
		Msg("Buy recorded")

	return next.clone(), nil
}

// RecordSell removes shares from an open position. The average cost is left
// untouched; a position reaching zero shares is deleted. The returned
// position has ShareCount 0 when it was closed.
func (l *Ledger) RecordSell(ticker string, shares int, unitPrice float64, date time.Time) (Position, error) {
	ticker = normalizeTicker(ticker)

	switch {
	case ticker == "":
		return Position{}, &ValidationError{Op: "sell", Ticker: ticker, Err: ErrInvalidTicker}
	case shares <= 0:
		return Position{}, &ValidationError{Op: "sell", Ticker: ticker, Err: ErrInvalidQuantity, Detail: fmt.Sprintf("got %d", shares)}
	case !validPrice(unitPrice):
		return Position{}, &ValidationError{Op: "sell", Ticker: ticker, Err: ErrInvalidPrice, Detail: fmt.Sprintf("got %.2f", unitPrice)}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	prev, exists := l.positions[ticker]
	if !exists {
		return Position{}, &ValidationError{Op: "sell", Ticker: ticker, Err: ErrNoPosition}
	}
	if shares > prev.ShareCount {
		return Position{}, &ValidationError{
			Op:     "sell",
			Ticker: ticker,
			Err:    ErrInsufficientShares,
			Detail: fmt.Sprintf("holding %d, selling %d", prev.ShareCount, shares),
		}
	}

	next := prev.clone()
	next.ShareCount -= shares
	next.Transactions = append(next.Transactions, Transaction{
		ID:         l.newID(),
		Date:       l.dateOrToday(date),
		Side:       SideSell,
		ShareCount: shares,
		UnitPrice:  unitPrice,
	})

	if next.ShareCount == 0 {
		delete(l.positions, ticker)
	} else {
		l.positions[ticker] = next
	}

	if err := l.persist(); err != nil {
		l.positions[ticker] = prev
		return Position{}, err
	}

	l.log.Info().
		Str("ticker", ticker).
		Int("shares", shares).
		Float64("unit_price", unitPrice).
		Int("remaining", next.ShareCount).
		Msg("Sell recorded")

	return next.clone(), nil
}

// CurrentPositions returns copies of all open positions, sorted by ticker.
func (l *Ledger) CurrentPositions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// Position returns the open position of a ticker.
func (l *Ledger) Position(ticker string) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.positions[normalizeTicker(ticker)]
	if !ok {
		return Position{}, false
	}
	return p.clone(), true
}

// snapshot copies the positions sorted by ticker. Callers hold l.mu.
func (l *Ledger) snapshot() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, p := range l.positions {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ticker < out[j].Ticker
	})
	return out
}

func (l *Ledger) persist() error {
	if err := l.store.Save(l.snapshot()); err != nil {
		l.log.Error().Err(err).Msg("Failed to save ledger")
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

func (l *Ledger) dateOrToday(date time.Time) time.Time {
	if date.IsZero() {
		date = l.now()
	}
	return dateOnly(date)
}

// validPrice reports whether p is a finite positive price.
func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

// weightedAverageCost is (q0*c0 + q1*p1) / (q0+q1).
func weightedAverageCost(oldShares int, oldCost float64, newShares int, newPrice float64) float64 {
	total := decimal.NewFromInt(int64(oldShares)).Mul(decimal.NewFromFloat(oldCost)).
		Add(decimal.NewFromInt(int64(newShares)).Mul(decimal.NewFromFloat(newPrice)))
	return total.Div(decimal.NewFromInt(int64(oldShares + newShares))).InexactFloat64()
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Andre13Filho/FII-AI/internal/database"
	"github.com/Andre13Filho/FII-AI/internal/domain"
)

// SQLiteStore keeps the ledger in the positions and transactions tables of
// the ledger database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a store on a migrated ledger database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads every position with its transactions in recording order.
func (s *SQLiteStore) Load() ([]Position, error) {
	rows, err := s.db.Query(`
		SELECT ticker, category, share_count, average_cost, first_acquired
		FROM positions
		ORDER BY ticker
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []Position
	index := make(map[string]int)
	for rows.Next() {
		var p Position
		var category, acquired string
		if err := rows.Scan(&p.Ticker, &category, &p.ShareCount, &p.AverageCost, &acquired); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Category = domain.Category(category)
		if p.FirstAcquired, err = time.Parse(dateLayout, acquired); err != nil {
			return nil, fmt.Errorf("invalid first_acquired for %s: %w", p.Ticker, err)
		}
		p.Transactions = []Transaction{}
		index[p.Ticker] = len(positions)
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	txRows, err := s.db.Query(`
		SELECT id, ticker, date, side, share_count, unit_price
		FROM transactions
		ORDER BY ticker, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var tx Transaction
		var ticker, date, side string
		if err := txRows.Scan(&tx.ID, &ticker, &date, &side, &tx.ShareCount, &tx.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if tx.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid date for transaction %s: %w", tx.ID, err)
		}
		tx.Side = Side(side)

		i, ok := index[ticker]
		if !ok {
			continue
		}
		positions[i].Transactions = append(positions[i].Transactions, tx)
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return positions, nil
}

// Save replaces both tables in one transaction.
func (s *SQLiteStore) Save(positions []Position) error {
	return database.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM transactions"); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM positions"); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}

		for _, p := range positions {
			_, err := tx.Exec(`
				INSERT INTO positions (ticker, category, share_count, average_cost, first_acquired)
				VALUES (?, ?, ?, ?, ?)
			`, p.Ticker, string(p.Category), p.ShareCount, p.AverageCost, p.FirstAcquired.Format(dateLayout))
			if err != nil {
				return fmt.Errorf("failed to insert position %s: %w", p.Ticker, err)
			}

			for seq, t := range p.Transactions {
				_, err := tx.Exec(`
					INSERT INTO transactions (id, ticker, seq, date, side, share_count, unit_price)
					VALUES (?, ?, ?, ?, ?, ?, ?)
				`, t.ID, p.Ticker, seq, t.Date.Format(dateLayout), string(t.Side), t.ShareCount, t.UnitPrice)
				if err != nil {
					return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
				}
			}
		}
		return nil
	})
}

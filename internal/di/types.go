// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/Andre13Filho/FII-AI/internal/clientdata"
	"github.com/Andre13Filho/FII-AI/internal/config"
	"github.com/Andre13Filho/FII-AI/internal/database"
	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/allocation"
	"github.com/Andre13Filho/FII-AI/internal/modules/charts"
	"github.com/Andre13Filho/FII-AI/internal/modules/marketdata"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/rebalancing"
	"github.com/Andre13Filho/FII-AI/internal/reliability"
)

// Container holds all initialized services
type Container struct {
	Config *config.Config

	// Databases. LedgerDB is nil with the JSON backend.
	CacheDB  *database.DB
	LedgerDB *database.DB

	// Repositories
	ClientData  *clientdata.Repository
	LedgerStore portfolio.Store

	// Market data
	Simulated *marketdata.SimulatedSource
	Market    marketdata.Source // live with simulated fallback, or simulated only

	// Services
	Ledger     *portfolio.Ledger
	Explainer  domain.Explainer
	Allocation *allocation.Service
	Advisor    *rebalancing.Advisor
	Charts     *charts.Service
	Backup     *reliability.BackupService // nil when no bucket is configured

	// Target category mix in percentage points
	Target map[domain.Category]float64
}

// Databases returns the open databases, for health checks.
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.CacheDB, c.LedgerDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes every open database.
func (c *Container) Close() error {
	var firstErr error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

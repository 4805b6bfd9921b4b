package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/config"
	"github.com/Andre13Filho/FII-AI/internal/database"
)

// InitializeDatabases opens the quote cache and, for the sqlite backend,
// the ledger database, applying their schemas.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{Config: cfg}

	// cache.db - quote cache, safe to delete
	cacheDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("cache"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	if err := cacheDB.Migrate(); err != nil {
		cacheDB.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}
	container.CacheDB = cacheDB

	if cfg.LedgerBackend == config.BackendSQLite {
		// ledger.db - positions and transactions, maximum durability
		ledgerDB, err := database.New(database.Config{
			Path:    cfg.DatabasePath("ledger"),
			Profile: database.ProfileLedger,
			Name:    "ledger",
		})
		if err != nil {
			cacheDB.Close()
			return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
		}
		if err := ledgerDB.Migrate(); err != nil {
			cacheDB.Close()
			ledgerDB.Close()
			return nil, fmt.Errorf("failed to migrate ledger database: %w", err)
		}
		container.LedgerDB = ledgerDB
	}

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("ledger_backend", cfg.LedgerBackend).
		Int("databases", len(container.Databases())).
		Msg("Databases initialized")
	return container, nil
}

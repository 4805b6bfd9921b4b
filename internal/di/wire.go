package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/config"
	allocationhandlers "github.com/Andre13Filho/FII-AI/internal/modules/allocation/handlers"
	chartshandlers "github.com/Andre13Filho/FII-AI/internal/modules/charts/handlers"
	portfoliohandlers "github.com/Andre13Filho/FII-AI/internal/modules/portfolio/handlers"
	rebalancinghandlers "github.com/Andre13Filho/FII-AI/internal/modules/rebalancing/handlers"
	"github.com/Andre13Filho/FII-AI/internal/server"
)

// Wire initializes all dependencies and returns a fully configured container.
// Order: databases, repositories, services.
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeRepositories(container, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := InitializeServices(ctx, container, log); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, nil
}

// Modules builds the HTTP handlers mounted under /api.
func Modules(container *Container, log zerolog.Logger) []server.RouteRegistrar {
	// A nil *BackupService must reach the handler as a nil interface
	var backup portfoliohandlers.Backuper
	if container.Backup != nil {
		backup = container.Backup
	}

	return []server.RouteRegistrar{
		allocationhandlers.NewHandler(container.Allocation, log),
		portfoliohandlers.NewHandler(container.Ledger, container.Market, backup, log),
		rebalancinghandlers.NewHandler(container.Advisor, container.Ledger, container.Target, log),
		chartshandlers.NewHandler(container.Charts, container.Ledger, container.Target, log),
	}
}

package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/clientdata"
	"github.com/Andre13Filho/FII-AI/internal/clients/brapi"
	"github.com/Andre13Filho/FII-AI/internal/clients/gemini"
	"github.com/Andre13Filho/FII-AI/internal/config"
	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/allocation"
	"github.com/Andre13Filho/FII-AI/internal/modules/charts"
	"github.com/Andre13Filho/FII-AI/internal/modules/explain"
	"github.com/Andre13Filho/FII-AI/internal/modules/marketdata"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/rebalancing"
	"github.com/Andre13Filho/FII-AI/internal/modules/scoring"
	"github.com/Andre13Filho/FII-AI/internal/reliability"
)

// InitializeRepositories creates the quote cache and the ledger store.
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.ClientData = clientdata.NewRepository(container.CacheDB.Conn())

	if err := clientdata.Prune(container.ClientData, log); err != nil {
		log.Warn().Err(err).Msg("Continuing with stale cache entries")
	}

	if container.LedgerDB != nil {
		container.LedgerStore = portfolio.NewSQLiteStore(container.LedgerDB.Conn())
	} else {
		container.LedgerStore = portfolio.NewJSONStore(container.Config.LedgerPath(), log)
	}
	return nil
}

// InitializeServices builds market data, the ledger and every domain service.
func InitializeServices(ctx context.Context, container *Container, log zerolog.Logger) error {
	cfg := container.Config

	container.Simulated = marketdata.NewSimulatedSource(cfg.SimulationSeed, log)
	container.Market = marketSource(container, log)

	ledger, err := portfolio.NewLedger(container.LedgerStore, log)
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	container.Ledger = ledger

	container.Explainer = newExplainer(ctx, cfg, log)

	settings := cfg.Planner.Settings()
	container.Target = rebalancing.TargetPoints(settings.Fractions)

	planner := allocation.NewPlanner(cfg.Planner.DefaultPrice, container.Explainer, log)
	container.Allocation = allocation.NewService(container.Market, scoring.NewScorer(log), planner, settings, log)
	container.Advisor = rebalancing.NewAdvisor(container.Allocation, container.Market, cfg.Planner.RebalanceThreshold, log)
	container.Charts = charts.NewService(container.Simulated, log)

	if cfg.Backup.Enabled() {
		backup, err := newBackupService(ctx, container, log)
		if err != nil {
			// Backups are optional; the ledger works without them
			log.Warn().Err(err).Msg("Backups disabled")
		} else {
			container.Backup = backup
		}
	}

	log.Info().
		Str("metrics_source", cfg.MetricsSource).
		Int64("simulation_seed", container.Simulated.Seed()).
		Bool("explanations", cfg.Gemini.APIKey != "").
		Bool("backups", container.Backup != nil).
		Msg("Services initialized")
	return nil
}

func marketSource(container *Container, log zerolog.Logger) marketdata.Source {
	cfg := container.Config
	if cfg.MetricsSource != config.SourceLive {
		return container.Simulated
	}

	client := brapi.NewClient(brapi.Config{
		BaseURL:           cfg.Brapi.BaseURL,
		Token:             cfg.Brapi.Token,
		Timeout:           cfg.FetchTimeout,
		RequestsPerSecond: cfg.Brapi.RequestsPerSecond,
	}, log)
	quotes := marketdata.NewCachedQuotes(client, container.ClientData, log)
	live := marketdata.NewLiveSource(quotes, container.Simulated, log)
	return marketdata.NewFallbackSource(live, container.Simulated, cfg.FetchTimeout, log)
}

func newExplainer(ctx context.Context, cfg *config.Config, log zerolog.Logger) domain.Explainer {
	if cfg.Gemini.APIKey == "" {
		return explain.Noop{}
	}
	client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Warn().Err(err).Msg("Explanations disabled")
		return explain.Noop{}
	}
	return explain.NewExplainer(client, 0, log)
}

func newBackupService(ctx context.Context, container *Container, log zerolog.Logger) (*reliability.BackupService, error) {
	b := container.Config.Backup
	store, err := reliability.NewS3Client(ctx, reliability.S3Config{
		Bucket:          b.Bucket,
		Endpoint:        b.Endpoint,
		Region:          b.Region,
		AccessKeyID:     b.AccessKeyID,
		SecretAccessKey: b.SecretAccessKey,
	}, log)
	if err != nil {
		return nil, err
	}

	var sources []reliability.Snapshotter
	if container.LedgerDB != nil {
		sources = append(sources, reliability.SQLiteSnapshot{DB: container.LedgerDB.Conn(), FileName: "ledger.db"})
	} else {
		sources = append(sources, reliability.FileSnapshot{Path: container.Config.LedgerPath()})
	}
	return reliability.NewBackupService(store, sources, log), nil
}

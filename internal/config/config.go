// Package config provides configuration management functionality.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/allocation"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/rebalancing"
)

// Metrics sources.
const (
	SourceLive      = "live"
	SourceSimulated = "simulated"
)

// Ledger backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// allocationTolerance is how far the category fractions may sum from 1.
const allocationTolerance = 0.01

// Config holds application configuration
type Config struct {
	DataDir        string // always absolute
	LogLevel       string
	LogPretty      bool
	Port           int
	DevMode        bool
	MetricsSource  string
	SimulationSeed int64 // 0 = time-based
	FetchTimeout   time.Duration
	LedgerBackend  string
	ConfigFile     string
	Brapi          BrapiConfig
	Gemini         GeminiConfig
	Backup         BackupConfig
	Planner        PlannerConfig
}

// BrapiConfig holds the market data API settings.
type BrapiConfig struct {
	Token             string
	BaseURL           string
	RequestsPerSecond float64
}

// GeminiConfig holds the narrative model settings. Empty APIKey disables
// explanations.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// BackupConfig locates the backup bucket. Empty Bucket disables backups.
type BackupConfig struct {
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket is configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// PlannerConfig tunes the allocation and rebalancing math. It may be
// overridden by the TOML file named in FII_CONFIG_FILE.
type PlannerConfig struct {
	FIIFraction        float64            `toml:"fii_fraction"`
	DefaultPrice       float64            `toml:"default_price"`
	CategoryAllocation map[string]float64 `toml:"category_allocation"`
	RebalanceThreshold float64            `toml:"rebalance_threshold"`
}

// Fractions returns the category allocation keyed by category.
func (p PlannerConfig) Fractions() map[domain.Category]float64 {
	out := make(map[domain.Category]float64, len(p.CategoryAllocation))
	for k, v := range p.CategoryAllocation {
		c, err := domain.ParseCategory(k)
		if err != nil {
			continue
		}
		out[c] += v
	}
	return out
}

// Settings converts the planner section into allocation settings.
func (p PlannerConfig) Settings() allocation.Settings {
	return allocation.Settings{FIIFraction: p.FIIFraction, Fractions: p.Fractions()}
}

func defaultPlanner() PlannerConfig {
	defaults := allocation.DefaultSettings()
	alloc := make(map[string]float64, len(defaults.Fractions))
	for c, f := range defaults.Fractions {
		alloc[string(c)] = f
	}
	return PlannerConfig{
		FIIFraction:        defaults.FIIFraction,
		DefaultPrice:       allocation.DefaultPrice,
		CategoryAllocation: alloc,
		RebalanceThreshold: rebalancing.DefaultThreshold,
	}
}

// Load reads configuration from environment variables and the optional
// TOML planner file.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("FII_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	token := getEnv("BRAPI_TOKEN", "")
	defaultSource := SourceSimulated
	if token != "" {
		defaultSource = SourceLive
	}

	cfg := &Config{
		DataDir:        dataDir,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		Port:           getEnvAsInt("PORT", 8001),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		MetricsSource:  getEnv("METRICS_SOURCE", defaultSource),
		SimulationSeed: int64(getEnvAsInt("SIMULATION_SEED", 0)),
		FetchTimeout:   time.Duration(getEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		LedgerBackend:  getEnv("LEDGER_BACKEND", BackendJSON),
		ConfigFile:     getEnv("FII_CONFIG_FILE", ""),
		Brapi: BrapiConfig{
			Token:             token,
			BaseURL:           getEnv("BRAPI_BASE_URL", "https://brapi.dev/api"),
			RequestsPerSecond: getEnvAsFloat("BRAPI_REQUESTS_PER_SECOND", 2),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Backup: BackupConfig{
			Bucket:          getEnv("BACKUP_S3_BUCKET", ""),
			Endpoint:        getEnv("BACKUP_S3_ENDPOINT", ""),
			Region:          getEnv("BACKUP_S3_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_S3_SECRET_ACCESS_KEY", ""),
		},
		Planner: defaultPlanner(),
	}

	if cfg.ConfigFile != "" {
		if err := cfg.loadPlannerFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPlannerFile overlays the keys present in a TOML file. A missing file
// is skipped.
func (c *Config) loadPlannerFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var overlay PlannerConfig
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if overlay.FIIFraction != 0 {
		c.Planner.FIIFraction = overlay.FIIFraction
	}
	if overlay.DefaultPrice != 0 {
		c.Planner.DefaultPrice = overlay.DefaultPrice
	}
	if overlay.RebalanceThreshold != 0 {
		c.Planner.RebalanceThreshold = overlay.RebalanceThreshold
	}
	if len(overlay.CategoryAllocation) > 0 {
		c.Planner.CategoryAllocation = overlay.CategoryAllocation
	}
	return nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}

	switch c.MetricsSource {
	case SourceLive, SourceSimulated:
	default:
		return fmt.Errorf("unknown metrics source %q (must be %s or %s)", c.MetricsSource, SourceLive, SourceSimulated)
	}

	switch c.LedgerBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown ledger backend %q (must be %s or %s)", c.LedgerBackend, BackendJSON, BackendSQLite)
	}

	p := c.Planner
	if p.FIIFraction <= 0 || p.FIIFraction > 1 {
		return fmt.Errorf("fii_fraction must be in (0, 1], got %v", p.FIIFraction)
	}
	if p.DefaultPrice <= 0 {
		return fmt.Errorf("default_price must be positive, got %v", p.DefaultPrice)
	}
	if p.RebalanceThreshold < 0 {
		return fmt.Errorf("rebalance_threshold must not be negative, got %v", p.RebalanceThreshold)
	}

	var sum float64
	for k, v := range p.CategoryAllocation {
		if _, err := domain.ParseCategory(k); err != nil {
			return fmt.Errorf("category_allocation: %w", err)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("category_allocation[%s] must be in [0, 1], got %v", k, v)
		}
		sum += v
	}
	if math.Abs(sum-1) > allocationTolerance {
		return fmt.Errorf("category_allocation must sum to 1, got %.4f", sum)
	}

	return nil
}

// LedgerPath is where the JSON ledger lives.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, portfolio.HistoryFileName)
}

// DatabasePath returns the path of a named sqlite database in the data dir.
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name+".db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Andre13Filho/FII-AI/internal/domain"
)

var envKeys = []string{
	"FII_DATA_DIR", "LOG_LEVEL", "LOG_PRETTY", "PORT", "DEV_MODE",
	"BRAPI_TOKEN", "BRAPI_BASE_URL", "BRAPI_REQUESTS_PER_SECOND",
	"FETCH_TIMEOUT_SECONDS", "METRICS_SOURCE", "SIMULATION_SEED",
	"GEMINI_API_KEY", "GEMINI_MODEL", "LEDGER_BACKEND", "FII_CONFIG_FILE",
	"BACKUP_S3_BUCKET", "BACKUP_S3_ENDPOINT", "BACKUP_S3_REGION",
	"BACKUP_S3_ACCESS_KEY_ID", "BACKUP_S3_SECRET_ACCESS_KEY",
}

// cleanEnv blanks every variable Load reads and points the data dir at a
// temp directory.
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("FII_DATA_DIR", dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	dir := cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.DirExists(t, dir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, SourceSimulated, cfg.MetricsSource)
	assert.Equal(t, BackendJSON, cfg.LedgerBackend)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2.0, cfg.Brapi.RequestsPerSecond)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, filepath.Join(dir, "investment_history.json"), cfg.LedgerPath())

	assert.Equal(t, 0.25, cfg.Planner.FIIFraction)
	assert.Equal(t, 100.0, cfg.Planner.DefaultPrice)
	assert.Equal(t, 5.0, cfg.Planner.RebalanceThreshold)
	assert.InDelta(t, 0.27, cfg.Planner.Fractions()[domain.CategoryCRI], 1e-9)
}

func TestLoad_EnvOverrides(t *testing.T) {
	cleanEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("BRAPI_TOKEN", "secret")
	t.Setenv("SIMULATION_SEED", "42")
	t.Setenv("LEDGER_BACKEND", "sqlite")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "3")
	t.Setenv("BACKUP_S3_BUCKET", "ledger-backups")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, SourceLive, cfg.MetricsSource, "a token enables live data")
	assert.Equal(t, int64(42), cfg.SimulationSeed)
	assert.Equal(t, BackendSQLite, cfg.LedgerBackend)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.Backup.Enabled())
}

func TestLoad_PlannerFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "fii.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
fii_fraction = 0.4
rebalance_threshold = 3.5

[category_allocation]
cri = 0.5
logistica = 0.3
fof = 0.2
`), 0o644))
	t.Setenv("FII_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.4, cfg.Planner.FIIFraction)
	assert.Equal(t, 3.5, cfg.Planner.RebalanceThreshold)
	assert.Equal(t, 100.0, cfg.Planner.DefaultPrice, "keys absent from the file keep their defaults")

	settings := cfg.Planner.Settings()
	assert.Equal(t, 0.4, settings.FIIFraction)
	assert.Equal(t, map[domain.Category]float64{
		domain.CategoryCRI:       0.5,
		domain.CategoryLogistica: 0.3,
		domain.CategoryFOF:       0.2,
	}, settings.Fractions)
}

func TestLoad_MissingPlannerFileIsSkipped(t *testing.T) {
	cleanEnv(t)
	t.Setenv("FII_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	_, err := Load()
	assert.NoError(t, err)
}

func TestLoad_InvalidPlannerFile(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "fii.toml")
	require.NoError(t, os.WriteFile(path, []byte("fii_fraction = [oops"), 0o644))
	t.Setenv("FII_CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:          8001,
			FetchTimeout:  time.Second,
			MetricsSource: SourceSimulated,
			LedgerBackend: BackendJSON,
			Planner:       defaultPlanner(),
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"zero timeout", func(c *Config) { c.FetchTimeout = 0 }},
		{"unknown source", func(c *Config) { c.MetricsSource = "yahoo" }},
		{"unknown backend", func(c *Config) { c.LedgerBackend = "postgres" }},
		{"zero fii fraction", func(c *Config) { c.Planner.FIIFraction = 0 }},
		{"fii fraction above one", func(c *Config) { c.Planner.FIIFraction = 1.5 }},
		{"non-positive price", func(c *Config) { c.Planner.DefaultPrice = -1 }},
		{"negative threshold", func(c *Config) { c.Planner.RebalanceThreshold = -1 }},
		{"unknown category", func(c *Config) { c.Planner.CategoryAllocation["hotel"] = 0 }},
		{"allocation sum", func(c *Config) { c.Planner.CategoryAllocation["cri"] = 0.5 }},
		{"negative fraction", func(c *Config) {
			c.Planner.CategoryAllocation = map[string]float64{"cri": 1.2, "fof": -0.2}
		}},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidate_AllocationTolerance(t *testing.T) {
	c := &Config{
		Port: 8001, FetchTimeout: time.Second,
		MetricsSource: SourceLive, LedgerBackend: BackendSQLite,
		Planner: defaultPlanner(),
	}
	c.Planner.CategoryAllocation["cri"] += 0.005
	assert.NoError(t, c.Validate())
}

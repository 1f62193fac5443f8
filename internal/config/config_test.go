package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, 2, cfg.Workers.PoolSize)
	require.Equal(t, 100, cfg.Scraper.MaxScrollPolls)
	require.Equal(t, 3*time.Second, cfg.Scraper.FieldTimeout)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "bus_routes", cfg.Database.Table)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
workers:
  pool_size: 6
scraper:
  headless_mode: false
  max_scroll_polls: 40
database:
  driver: mysql
  dsn: user:pass@tcp(localhost:3306)/busboard
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 6, cfg.Workers.PoolSize)
	require.False(t, cfg.Scraper.HeadlessMode)
	require.Equal(t, 40, cfg.Scraper.MaxScrollPolls)
	require.Equal(t, "mysql", cfg.Database.Driver)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("WORKER_POOL_SIZE", "8")
	t.Setenv("SCRAPER_HEADLESS", "false")
	t.Setenv("DATABASE_TABLE", "bus_routes_staging")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, 8, cfg.Workers.PoolSize)
	require.False(t, cfg.Scraper.HeadlessMode)
	require.Equal(t, "bus_routes_staging", cfg.Database.Table)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("BUSBOARD_DSN", "file:test.db")

	out := expandEnvVars("dsn: ${BUSBOARD_DSN}")
	require.Equal(t, "dsn: file:test.db", out)

	// Unset variables stay verbatim.
	out = expandEnvVars("dsn: ${BUSBOARD_MISSING}")
	require.Equal(t, "dsn: ${BUSBOARD_MISSING}", out)
}

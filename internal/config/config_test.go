package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 10*time.Minute, cfg.Recalculation.LockTTL)
	assert.Zero(t, cfg.Recalculation.Interval)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  url: postgres://yaml/leads
redis:
  addr: localhost:6379
kommo:
  baseUrl: https://acme.kommo.com/api/v4
  statusId: 42
recalculation:
  interval: 1h
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("KOMMO_STATUS_ID", "7")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "postgres://yaml/leads", cfg.Database.URL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "https://acme.kommo.com/api/v4", cfg.Kommo.BaseURL)
	assert.Equal(t, 7, cfg.Kommo.StatusID)
	assert.Equal(t, time.Hour, cfg.Recalculation.Interval)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("DATABASE_URL", "postgres://localhost/leads")
	t.Setenv("RECALC_INTERVAL", "soon")

	_, err := Load()

	assert.ErrorContains(t, err, "RECALC_INTERVAL")
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()

	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()

	assert.Error(t, err)
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alejandrodnm/tradescan/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Pipeline.MaxTrades)
	assert.Equal(t, 5, cfg.Pipeline.FetchWorkers)
	assert.Equal(t, 10, cfg.Pipeline.EnrichWorkers)
	assert.Equal(t, time.Minute, cfg.Lookback())
	assert.Equal(t, "window", cfg.Governor.Mode)
	assert.Equal(t, 5, cfg.Governor.Burst)
	assert.Equal(t, 5*time.Second, cfg.Window())
	assert.Equal(t, 8, cfg.Governor.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.InitialDelay())
	assert.False(t, cfg.Governor.SharedBudget)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ExampleFile(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "GIFF", cfg.Pipeline.InputSymbol)
	assert.Equal(t, "WPLS", cfg.Pipeline.OutputSymbol)
	assert.Equal(t, "trades_with_balances.json", cfg.Output.JSONPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BALANCE_API_SECRET", "s3cret")
	t.Setenv("STORAGE_DSN", ":memory:")

	cfg, err := config.Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "s3cret", cfg.API.BalanceSecret)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
}

func TestLoad_InvalidMode(t *testing.T) {
	_, err := config.Load(writeConfig(t, "governor:\n  mode: leaky\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8087", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8, cfg.Pipeline.MaxConcurrency)
	assert.Equal(t, "^NSEI", cfg.Pipeline.Benchmark)
	assert.Equal(t, 45*time.Second, cfg.Pipeline.FetchTimeout)
	assert.Equal(t, 365, cfg.MarketData.LookbackDays)
	assert.Equal(t, 6*time.Hour, cfg.MarketData.CacheTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PIPELINE_MAX_CONCURRENCY", "2")
	t.Setenv("MARKETDATA_RATE_LIMIT", "1.5")
	t.Setenv("PIPELINE_FETCH_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2, cfg.Pipeline.MaxConcurrency)
	assert.Equal(t, 1.5, cfg.MarketData.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.FetchTimeout)
}

func TestLoadRejectsInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "sandbox")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	t.Setenv("PIPELINE_MAX_CONCURRENCY", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("MARKETDATA_RATE_LIMIT", "fast")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxConns)
	assert.Equal(t, 5.0, cfg.MarketData.RateLimit)
}

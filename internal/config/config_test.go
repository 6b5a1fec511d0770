package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/config"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/orcamento")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "secret")
	for _, key := range []string{"NUMBERING_BACKEND", "QUOTE_VALIDITY", "CART_TTL", "PORT", "LOW_STOCK_CRON", "QUOTE_TRANSACTIONAL", "LOCK_TTL", "WORKER_CONCURRENCY", "OBS_ENABLE_PROMETHEUS", "OBS_METRICS_NAMESPACE", "OBS_TRACING_SAMPLING_RATIO"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.NumberingBackend)
	require.Equal(t, 7*24*time.Hour, cfg.QuoteValidity)
	require.Equal(t, 7*24*time.Hour, cfg.CartTTL)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, "0 8 * * *", cfg.LowStockCron)
	require.False(t, cfg.QuoteTransactional)
	require.True(t, cfg.Obs.Prometheus)
	require.Equal(t, "orcamento", cfg.Obs.MetricsNamespace)
	require.Equal(t, 1.0, cfg.Obs.SamplingRatio)
}

func TestLoadRequiresSecrets(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("REDIS_URL", "")
	_, err := config.Load()
	require.ErrorContains(t, err, "JWT_SECRET")
	require.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadNumberingBackend(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("NUMBERING_BACKEND", "mysql")
	_, err := config.Load()
	require.ErrorContains(t, err, "NUMBERING_BACKEND")

	t.Setenv("NUMBERING_BACKEND", "Redis")
	t.Setenv("QUOTE_TRANSACTIONAL", "true")
	t.Setenv("CART_TTL", "2h")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "redis", cfg.NumberingBackend)
	require.True(t, cfg.QuoteTransactional)
	require.Equal(t, 2*time.Hour, cfg.CartTTL)
}

func TestLoadReportsMalformedValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOCK_TTL", "ten seconds")
	t.Setenv("WORKER_CONCURRENCY", "-2")
	t.Setenv("OBS_TRACING_SAMPLING_RATIO", "1.5")
	_, err := config.Load()
	require.ErrorContains(t, err, "LOCK_TTL")
	require.ErrorContains(t, err, "WORKER_CONCURRENCY")
	require.ErrorContains(t, err, "OBS_TRACING_SAMPLING_RATIO")
}

func TestHTTPAddr(t *testing.T) {
	require.Equal(t, ":9090", (&config.Config{Port: "9090"}).HTTPAddr())
	require.Equal(t, ":9090", (&config.Config{Port: ":9090"}).HTTPAddr())
	require.Equal(t, ":8080", (&config.Config{}).HTTPAddr())
}

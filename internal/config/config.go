// Package config reads the process configuration from the environment, with
// an optional .env file for local runs.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	CORSAllowedOrigins []string
	AccessTokenTTL     time.Duration
	MigrateOnStart     bool

	QuoteTransactional bool
	QuoteValidity      time.Duration
	NumberingBackend   string
	TimeZone           string
	SessionTTL         time.Duration
	LockTTL            time.Duration
	LockRetryBackoff   time.Duration
	IdempotencyTTL     time.Duration

	CartTTL           time.Duration
	StoreRateLimit    string
	CatalogCacheTTL   time.Duration
	StorageDir        string
	StorageBaseURL    string
	MaxUploadBytes    int64
	MaxBodyBytes      int64
	DocumentArchive   bool
	LowStockCron      string
	WorkerConcurrency int

	Obs Obs
}

// Obs configures logging, metrics, tracing and profiling.
type Obs struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	Prometheus       bool
	MetricsBucketsMS string
	Tracing          bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
	Pprof            bool
	PprofUser        string
	PprofPass        string
}

// Load reads the environment (after an optional .env) into a Config.
// Malformed values are reported together rather than silently defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	r := &reader{k: k}

	cfg := &Config{
		AppEnv:             r.str("APP_ENV", "development"),
		Port:               r.str("PORT", "8080"),
		DatabaseURL:        r.required("DATABASE_URL"),
		RedisURL:           r.required("REDIS_URL"),
		JWTSecret:          r.required("JWT_SECRET"),
		CORSAllowedOrigins: r.list("CORS_ALLOWED_ORIGINS"),
		AccessTokenTTL:     r.duration("ACCESS_TOKEN_TTL", 12*time.Hour),
		MigrateOnStart:     r.flag("MIGRATE_ON_START"),

		QuoteTransactional: r.flag("QUOTE_TRANSACTIONAL"),
		QuoteValidity:      r.duration("QUOTE_VALIDITY", 7*24*time.Hour),
		NumberingBackend:   strings.ToLower(r.str("NUMBERING_BACKEND", "postgres")),
		TimeZone:           r.str("APP_TIMEZONE", "America/Sao_Paulo"),
		SessionTTL:         r.duration("QUOTE_SESSION_TTL", 24*time.Hour),
		LockTTL:            r.duration("LOCK_TTL", 10*time.Second),
		LockRetryBackoff:   r.duration("LOCK_RETRY_BACKOFF", 50*time.Millisecond),
		IdempotencyTTL:     r.duration("IDEMPOTENCY_TTL", 24*time.Hour),

		CartTTL:           r.duration("CART_TTL", 7*24*time.Hour),
		StoreRateLimit:    r.str("STORE_RATE_LIMIT", "120-M"),
		CatalogCacheTTL:   r.duration("CATALOG_CACHE_TTL", time.Minute),
		StorageDir:        r.str("STORAGE_DIR", "./data"),
		StorageBaseURL:    r.str("STORAGE_BASE_URL", "/files"),
		MaxUploadBytes:    r.positive("MAX_UPLOAD_BYTES", 5<<20),
		MaxBodyBytes:      r.positive("MAX_BODY_BYTES", 1<<20),
		DocumentArchive:   r.flag("DOCUMENT_ARCHIVE_ENABLED"),
		LowStockCron:      r.str("LOW_STOCK_CRON", "0 8 * * *"),
		WorkerConcurrency: int(r.positive("WORKER_CONCURRENCY", 5)),

		Obs: Obs{
			LogFormat:        r.str("OBS_LOG_FORMAT", "json"),
			LogLevel:         r.str("OBS_LOG_LEVEL", "info"),
			MetricsNamespace: r.str("OBS_METRICS_NAMESPACE", "orcamento"),
			Prometheus:       r.flagDefault("OBS_ENABLE_PROMETHEUS", true),
			MetricsBucketsMS: r.str("OBS_METRICS_BUCKETS_MS", ""),
			Tracing:          r.flagDefault("OBS_ENABLE_TRACING", true),
			TracingExporter:  r.str("OBS_TRACING_EXPORTER", "otlp"),
			OTLPEndpoint:     r.str("OBS_OTLP_ENDPOINT", ""),
			SamplingRatio:    r.ratio("OBS_TRACING_SAMPLING_RATIO", 1),
			Pprof:            r.flag("OBS_ENABLE_PPROF"),
			PprofUser:        r.str("SECURE_PPROF_BASIC_AUTH_USER", ""),
			PprofPass:        r.str("SECURE_PPROF_BASIC_AUTH_PASS", ""),
		},
	}
	switch cfg.NumberingBackend {
	case "postgres", "redis":
	default:
		r.fail("NUMBERING_BACKEND", fmt.Errorf("must be postgres or redis, got %q", cfg.NumberingBackend))
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Location resolves TimeZone, falling back to UTC when the zone database lacks it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HTTPAddr returns the listen address for Port ("8080" or ":8080").
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	switch {
	case port == "":
		return ":8080"
	case strings.HasPrefix(port, ":"):
		return port
	default:
		return ":" + port
	}
}

// reader pulls typed values out of koanf, collecting one error per bad key.
type reader struct {
	k    *koanf.Koanf
	errs []error
}

func (r *reader) fail(key string, err error) {
	r.errs = append(r.errs, fmt.Errorf("%s: %w", key, err))
}

func (r *reader) raw(key string) string {
	return strings.TrimSpace(r.k.String(key))
}

func (r *reader) str(key, def string) string {
	if v := r.raw(key); v != "" {
		return v
	}
	return def
}

func (r *reader) required(key string) string {
	v := r.raw(key)
	if v == "" {
		r.fail(key, errors.New("is required"))
	}
	return v
}

func (r *reader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(r.raw(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.raw(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		r.fail(key, fmt.Errorf("invalid duration %q", v))
		return def
	}
	return d
}

func (r *reader) positive(key string, def int64) int64 {
	v := r.raw(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		r.fail(key, fmt.Errorf("must be a positive integer, got %q", v))
		return def
	}
	return n
}

func (r *reader) flag(key string) bool {
	return r.flagDefault(key, false)
}

func (r *reader) flagDefault(key string, def bool) bool {
	switch strings.ToLower(r.raw(key)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	}
	return def
}

func (r *reader) ratio(key string, def float64) float64 {
	v := r.raw(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		r.fail(key, fmt.Errorf("must be between 0 and 1, got %q", v))
		return def
	}
	return f
}

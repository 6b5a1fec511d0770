// Package app assembles the services shared by the api and worker binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/backend-orcamento/internal/auth"
	"github.com/noah-isme/backend-orcamento/internal/cart"
	"github.com/noah-isme/backend-orcamento/internal/catalog"
	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/config"
	"github.com/noah-isme/backend-orcamento/internal/customer"
	"github.com/noah-isme/backend-orcamento/internal/db"
	dbgen "github.com/noah-isme/backend-orcamento/internal/db/gen"
	"github.com/noah-isme/backend-orcamento/internal/document"
	"github.com/noah-isme/backend-orcamento/internal/events"
	"github.com/noah-isme/backend-orcamento/internal/jobs"
	"github.com/noah-isme/backend-orcamento/internal/kit"
	"github.com/noah-isme/backend-orcamento/internal/lock"
	"github.com/noah-isme/backend-orcamento/internal/numbering"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/quote"
	"github.com/noah-isme/backend-orcamento/internal/resilience"
	"github.com/noah-isme/backend-orcamento/internal/settings"
	"github.com/noah-isme/backend-orcamento/internal/storage"
)

// Dependencies holds the connections and services of one process.
type Dependencies struct {
	Config    *config.Config
	Log       zerolog.Logger
	DB        *pgxpool.Pool
	Queries   *dbgen.Queries
	Redis     *redis.Client
	Validator *validator.Validate
	Tasks     *asynq.Client
	Files     storage.Disk
	Events    *events.Bus

	Auth      *auth.Service
	Catalog   *catalog.Service
	Kits      *kit.Service
	Customers *customer.Service
	Settings  *settings.Service
	Sessions  *quote.SessionStore
	Quotes    *quote.Service
	Cart      *cart.Service
}

// Open connects to Postgres and Redis, runs migrations when configured and
// builds every service. Callers must Close the result.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger, appName string) (*Dependencies, error) {
	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
			return nil, err
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = appName
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		log.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	d := &Dependencies{
		Config:    cfg,
		Log:       log,
		DB:        pool,
		Queries:   dbgen.New(pool),
		Redis:     redisClient,
		Validator: common.NewValidator(),
		Files:     storage.Disk{Root: cfg.StorageDir, BaseURL: cfg.StorageBaseURL},
	}
	if cfg.DocumentArchive {
		opt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("parse asynq redis uri: %w", err)
		}
		d.Tasks = asynq.NewClient(opt)
	}
	if err := d.wire(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

func (d *Dependencies) wire() error {
	cfg := d.Config
	q := d.Queries

	notifiers := []events.Notifier{events.LogNotifier{Log: d.Log}}
	if d.Tasks != nil {
		notifiers = append(notifiers, jobs.ArchiveNotifier{Client: d.Tasks, Log: d.Log})
	}
	d.Events = &events.Bus{Store: q, Notifiers: notifiers, Log: d.Log.With().Str("component", "events").Logger()}

	var err error
	d.Auth, err = auth.NewService(auth.Config{Queries: q, Secret: cfg.JWTSecret, AccessTokenTTL: cfg.AccessTokenTTL})
	if err != nil {
		return fmt.Errorf("initialise auth service: %w", err)
	}
	d.Catalog, err = catalog.NewService(catalog.ServiceConfig{
		Queries:   q,
		Cache:     catalog.NewCache(d.Redis, cfg.CatalogCacheTTL),
		Files:     d.Files,
		Validator: d.Validator,
		Logger:    d.Log.With().Str("component", "catalog").Logger(),
	})
	if err != nil {
		return fmt.Errorf("initialise catalog service: %w", err)
	}

	numbers, err := numbering.New(cfg.NumberingBackend, q, d.Redis, cfg.Location())
	if err != nil {
		return err
	}
	d.Quotes = &quote.Service{
		Q:        q,
		Numbers:  numbers,
		Renderer: document.FPDF{Logo: logoFetcher(cfg, d.Log), Log: d.Log.With().Str("component", "document").Logger()},
		Events:   d.Events,
		Log:      d.Log.With().Str("component", "quote").Logger(),
		Location: cfg.Location(),
		Validity: cfg.QuoteValidity,
	}
	if cfg.QuoteTransactional {
		d.Quotes.Atomic = func(ctx context.Context, fn func(quote.Queries) error) error {
			return db.RunInTx(ctx, d.DB, q, func(tx *dbgen.Queries) error { return fn(tx) })
		}
	}
	d.Sessions = &quote.SessionStore{
		R:       d.Redis,
		TTL:     cfg.SessionTTL,
		Locker:  lock.Locker{R: d.Redis, RetryBackoff: cfg.LockRetryBackoff, MaxWait: cfg.LockTTL},
		LockTTL: cfg.LockTTL,
	}

	d.Kits = &kit.Service{
		Q:        q,
		Validate: d.Validator,
		Events:   d.Events,
		Atomic: func(ctx context.Context, fn func(kit.Queries) error) error {
			return db.RunInTx(ctx, d.DB, q, func(tx *dbgen.Queries) error { return fn(tx) })
		},
		Log: d.Log.With().Str("component", "kit").Logger(),
	}
	d.Customers = &customer.Service{Q: q, Validate: d.Validator}
	d.Settings = &settings.Service{Q: q, Validate: d.Validator}
	d.Cart = &cart.Service{R: d.Redis, Products: d.Catalog, TTL: cfg.CartTTL}
	return nil
}

// Close releases every connection opened by Open.
func (d *Dependencies) Close() {
	if d == nil {
		return
	}
	var errs []error
	if d.Tasks != nil {
		errs = append(errs, d.Tasks.Close())
	}
	if d.Redis != nil {
		errs = append(errs, d.Redis.Close())
	}
	if d.DB != nil {
		d.DB.Close()
	}
	if err := errors.Join(errs...); err != nil {
		d.Log.Error().Err(err).Msg("close dependencies")
	}
}

func logoFetcher(cfg *config.Config, log zerolog.Logger) resilience.Fetcher {
	return resilience.Fetcher{
		Client:      &http.Client{Timeout: 5 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Breaker:     resilience.NewBreaker(3, 0.5, time.Minute).WithTarget("logo").WithLogger(log),
		MaxAttempts: 2,
		BaseBackoff: 200 * time.Millisecond,
		Jitter:      0.2,
		MaxBytes:    cfg.MaxUploadBytes,
	}
}

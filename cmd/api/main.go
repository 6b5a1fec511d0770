package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"

	"github.com/noah-isme/backend-orcamento/internal/app"
	"github.com/noah-isme/backend-orcamento/internal/config"
	"github.com/noah-isme/backend-orcamento/internal/health"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/ratelimit"
	"github.com/noah-isme/backend-orcamento/internal/resilience"
)

func main() {
	cfg := config.MustLoad()

	oc := cfg.Obs
	logger := obs.NewLogger(oc.LogFormat, oc.LogLevel).With().Str("env", cfg.AppEnv).Str("component", "api").Logger()

	resilience.MustRegister(nil)
	obs.MustRegisterDomainMetrics(oc.MetricsNamespace, nil)

	tracingEnabled := oc.Tracing
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "orcamento-api",
			Endpoint:      oc.OTLPEndpoint,
			Exporter:      oc.TracingExporter,
			SamplingRatio: oc.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	deps, err := app.Open(startCtx, cfg, logger, "orcamento-api")
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	opts := app.RouterOptions{
		Tracing:   tracingEnabled,
		Pprof:     oc.Pprof,
		PprofUser: oc.PprofUser,
		PprofPass: oc.PprofPass,
		Health:    health.Probes(deps.DB, deps.Redis),
	}
	if oc.Prometheus {
		opts.Metrics = obs.NewHTTPMetrics(oc.MetricsNamespace, obs.ParseBucketsCSV(oc.MetricsBucketsMS), nil)
		if err := redisotel.InstrumentMetrics(deps.Redis); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	storeLimiter, err := ratelimit.New(deps.Redis, cfg.StoreRateLimit, "ratelimit:store")
	if err != nil {
		logger.Error().Err(err).Msg("storefront rate limiter disabled")
	} else {
		opts.StoreLimiter = storeLimiter
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           app.NewRouter(deps, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Bool("transactional_quotes", cfg.QuoteTransactional).
		Str("numbering", cfg.NumberingBackend).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}


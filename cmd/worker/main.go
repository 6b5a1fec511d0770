package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/noah-isme/backend-orcamento/internal/app"
	"github.com/noah-isme/backend-orcamento/internal/config"
	"github.com/noah-isme/backend-orcamento/internal/jobs"
	"github.com/noah-isme/backend-orcamento/internal/obs"
	"github.com/noah-isme/backend-orcamento/internal/resilience"
)

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Str("component", "worker").Logger()
	resilience.MustRegister(nil)
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	deps, err := app.Open(startCtx, cfg, logger, "orcamento-worker")
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise dependencies")
	}
	defer deps.Close()

	scheduler := cron.New(cron.WithLocation(cfg.Location()))
	sweep := &jobs.LowStockSweep{
		Q:        deps.Queries,
		R:        deps.Redis,
		Events:   deps.Events,
		Location: cfg.Location(),
		Log:      logger.With().Str("job", "low_stock").Logger(),
	}
	if _, err := sweep.Schedule(scheduler, cfg.LowStockCron, time.Minute); err != nil {
		logger.Fatal().Err(err).Str("cron", cfg.LowStockCron).Msg("schedule low stock sweep")
	}
	scheduler.Start()

	var server *asynq.Server
	if cfg.DocumentArchive {
		redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url for tasks")
		}
		server = asynq.NewServer(redisOpt, asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues:      map[string]int{jobs.QueueDocuments: 1},
			Logger:      asynqLogger{log: logger},
		})
		mux := asynq.NewServeMux()
		mux.Handle(jobs.TypeArchiveDocument, jobs.ArchiveHandler{
			Quotes: deps.Quotes,
			Store:  deps.Files,
			Log:    logger.With().Str("job", "archive").Logger(),
		})
		if err := server.Start(mux); err != nil {
			logger.Fatal().Err(err).Msg("start task server")
		}
	}

	logger.Info().Str("low_stock_cron", cfg.LowStockCron).Bool("document_archive", cfg.DocumentArchive).Msg("worker starting")
	<-ctx.Done()

	if server != nil {
		server.Shutdown()
	}
	<-scheduler.Stop().Done()
	logger.Info().Msg("worker shutdown complete")
}


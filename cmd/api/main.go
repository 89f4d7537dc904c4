package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/lead-roulette/internal/infra/config"
	"github.com/xavierca1/lead-roulette/internal/infra/database"
	"github.com/xavierca1/lead-roulette/internal/infra/http/handlers"
	"github.com/xavierca1/lead-roulette/internal/infra/http/middleware"
	"github.com/xavierca1/lead-roulette/internal/infra/integration/kommo"
	"github.com/xavierca1/lead-roulette/internal/infra/logger"
	"github.com/xavierca1/lead-roulette/internal/infra/metrics"
	"github.com/xavierca1/lead-roulette/internal/infra/queue"
	"github.com/xavierca1/lead-roulette/internal/infra/scheduler"
	"github.com/xavierca1/lead-roulette/internal/infra/worker"
	"github.com/xavierca1/lead-roulette/internal/roulette"
	"github.com/xavierca1/lead-roulette/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuração inválida", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.AppEnv, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("servidor encerrado com erro", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
	}

	// 2. Mensageria
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	var sched roulette.TimeoutScheduler
	var asynqWorker *scheduler.Worker
	if cfg.RedisURL != "" {
		client, err := scheduler.NewClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sched = client
	} else {
		log.Warn("REDIS_URL vazio: timeouts só pela varredura periódica")
	}

	// 3. Engine
	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)
	engine := roulette.New(roulette.Options{
		Caps:              cfg.TierCaps,
		Journal:           database.NewJournal(db),
		Scheduler:         sched,
		Metrics:           recorder,
		Logger:            log,
		AssignmentTimeout: cfg.AssignmentTimeout,
		ShiftCeiling:      cfg.ShiftCeiling,
		LeadTTL:           cfg.LeadTTL,
	})

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	snapshot, err := database.NewSnapshotSource(db).Load(loadCtx, time.Now())
	cancel()
	if err != nil {
		return err
	}
	engine.Restore(snapshot)

	if cfg.RedisURL != "" {
		asynqWorker, err = scheduler.NewWorker(cfg.RedisURL, engine, log)
		if err != nil {
			return err
		}
	}

	// 4. Casos de uso
	producer := queue.NewProducer(rabbitMQ.Ch)
	queries := usecase.NewQueryUseCase(engine, database.NewCaptureRepository(db), database.NewDashboardRepository(db), time.UTC)
	attendanceUC := usecase.NewAttendanceUseCase(engine, database.NewBrokerRepository(db), log)
	captureUC := usecase.NewCaptureLeadUseCase(engine, producer, log)
	ingestUC := usecase.NewIngestLeadUseCase(engine, log)

	// 5. HTTP
	router := newRouter(routes{
		Health:       handlers.NewHealthHandler(db, rabbitMQ, engine),
		Attendance:   handlers.NewAttendanceHandler(attendanceUC, log),
		Leads:        handlers.NewLeadHandler(queries, log),
		Captures:     handlers.NewCaptureHandler(captureUC, queries, log),
		Webhooks:     handlers.NewWebhookHandler(ingestUC, log),
		Stores:       handlers.NewStoreHandler(queries, log),
		JWTSecret:    []byte(cfg.JWTSecret),
		IngestAPIKey: cfg.IngestAPIKey,
		IngestLimit:  middleware.NewIPRateLimiter(cfg.IngestRatePerMinute, log),
		CORSOrigins:  cfg.CORSOrigins,
	}, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 6. Consumidor do CRM
	crm := kommo.NewClient(cfg.KommoBaseURL, cfg.KommoAPIToken, cfg.KommoStatusID, log)
	handOffWorker := queue.NewWorker(rabbitMQ.Ch, crm, engine, recorder, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("servidor da roleta no ar", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		engine.Run(gctx)
		return nil
	})
	g.Go(func() error {
		worker.NewSweepWorker(engine, cfg.SweepInterval, log).Start(gctx)
		return nil
	})
	g.Go(func() error {
		worker.NewStoreSyncWorker(database.NewStoreRepository(db), engine, cfg.SweepInterval, log).Start(gctx)
		return nil
	})
	g.Go(func() error {
		return handOffWorker.Start(gctx, queue.QueueName)
	})
	g.Go(func() error {
		return asynqWorker.Run(gctx)
	})

	return g.Wait()
}

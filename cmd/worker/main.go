package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"djnml-feed/internal/domain/codes"
	pgRepo "djnml-feed/internal/infra/adapter/persistence/postgres"
	"djnml-feed/internal/infra/db"
	"djnml-feed/internal/infra/langdetect"
	"djnml-feed/internal/infra/publisher"
	"djnml-feed/internal/infra/timeparse"
	workerPkg "djnml-feed/internal/infra/worker"
	"djnml-feed/internal/infra/xmltree"
	"djnml-feed/internal/observability/logging"
	"djnml-feed/internal/observability/slo"
	"djnml-feed/internal/resilience/circuitbreaker"
	"djnml-feed/internal/usecase/ingest"
	"djnml-feed/internal/usecase/parse"
)

// eventSink is an ingest.EventPublisher whose breaker state can be reported.
type eventSink interface {
	ingest.EventPublisher
	BreakerOpen() bool
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("ingest_parallelism", workerConfig.IngestParallelism),
		slog.Duration("ingest_timeout", workerConfig.IngestTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.String("inbox_dir", workerConfig.InboxDir))

	registry := loadRegistry(logger)
	events := initPublisher(logger)
	defer func() {
		if err := events.Close(); err != nil {
			logger.Error("failed to close event publisher", slog.Any("error", logging.SanitizeError(err)))
		}
	}()

	storeBreaker := circuitbreaker.NewDBCircuitBreaker(database)
	stories := pgRepo.NewStoryRepoWithBreaker(storeBreaker)

	engine := parse.NewEngine(
		xmltree.NewParser(),
		timeparse.New(),
		registry,
		parse.WithLanguageDetector(langdetect.New(0)),
	)
	svc := ingest.NewService(engine, stories, events, ingest.Config{
		Parallelism: workerConfig.IngestParallelism,
		ArchiveDir:  workerConfig.ArchiveDir,
		FailedDir:   workerConfig.FailedDir,
	}, logger)

	startMetricsServer(ctx, logger, dependencyProbes{store: storeBreaker, events: events})

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	startCronWorker(ctx, logger, svc, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the story store and applies the schema.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.OpenFromEnv(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", logging.SanitizeError(err)))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", logging.SanitizeError(err)))
		_ = database.Close()
		os.Exit(1)
	}
	return database
}

// loadRegistry reads CODE_VOCABULARY_PATH when set and falls back to the
// built-in vocabulary otherwise.
func loadRegistry(logger *slog.Logger) *codes.Registry {
	path := os.Getenv("CODE_VOCABULARY_PATH")
	if path == "" {
		return codes.Default()
	}
	reg, err := codes.LoadRegistryFile(path)
	if err != nil {
		logger.Error("failed to load code vocabulary", slog.String("path", path), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("code vocabulary loaded", slog.String("path", path), slog.Int("codes", reg.Len()))
	return reg
}

// initPublisher returns a Kafka publisher when KAFKA_BROKERS and KAFKA_TOPIC
// are both set, and a publisher that drops events otherwise.
func initPublisher(logger *slog.Logger) eventSink {
	cfg := publisher.LoadKafkaConfigFromEnv()
	if !cfg.Enabled() {
		logger.Info("story events disabled")
		return publisher.NewNoopPublisher()
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid Kafka configuration", slog.Any("error", logging.SanitizeError(err)))
		os.Exit(1)
	}
	logger.Info("story events enabled",
		slog.Any("brokers", cfg.Brokers),
		slog.String("topic", cfg.Topic),
		slog.Duration("batch_timeout", cfg.BatchTimeout))
	return publisher.NewKafkaPublisher(cfg)
}

// startCronWorker schedules inbox sweeps and blocks until ctx is done.
func startCronWorker(ctx context.Context, logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	// a sweep still running when the next tick fires is not overlapped
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runIngestJob(ctx, logger, svc, cfg, metrics, healthServer)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runIngestJob sweeps the inbox once with the configured timeout.
func runIngestJob(parent context.Context, logger *slog.Logger, svc *ingest.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	startTime := time.Now()
	logger.Info("ingest started", slog.String("inbox_dir", cfg.InboxDir))

	ctx, cancel := context.WithTimeout(parent, cfg.IngestTimeout)
	defer cancel()

	stats, err := svc.IngestDir(ctx, cfg.InboxDir)
	elapsed := time.Since(startTime)
	metrics.RecordJobDuration(elapsed.Seconds())
	metrics.RecordIngestStats(stats)
	if stats != nil {
		slo.ObserveSweep(slo.Sweep{
			Files:       stats.Files,
			Parsed:      stats.Parsed,
			Published:   stats.Published,
			Unpublished: stats.Unpublished,
			Duration:    elapsed,
		})
	}
	healthServer.RecordRun(stats, err)
	if err != nil {
		logger.Error("ingest failed", slog.Any("error", logging.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordLastSuccess()

	logger.Info("ingest completed",
		slog.String("run_id", stats.RunID),
		slog.Int("files", stats.Files),
		slog.Int64("parsed", stats.Parsed),
		slog.Int64("failed", stats.Failed),
		slog.Int64("stored", stats.Stored),
		slog.Int64("deleted", stats.Deleted),
		slog.Int64("modified", stats.Modified),
		slog.Int64("skipped", stats.Skipped),
		slog.Int64("published", stats.Published),
		slog.Int64("unpublished", stats.Unpublished),
		slog.Duration("duration", stats.Duration),
	)
}

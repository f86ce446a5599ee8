package worker

import (
	"fmt"
	"log/slog"
	"time"

	"djnml-feed/internal/pkg/config"
)

// WorkerConfig holds the configuration of the ingest worker.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Invalid values never stop the worker: LoadConfigFromEnv falls back to the
// default for that field, logs a warning and records a metric.
type WorkerConfig struct {
	// CronSchedule is the five field cron expression that triggers an
	// inbox sweep.
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in.
	Timezone string

	// IngestParallelism bounds how many files are parsed at once.
	// Range: 1-32
	IngestParallelism int

	// IngestTimeout caps a single sweep. Range: 1m-4h
	IngestTimeout time.Duration

	// HealthPort is the port of the liveness and readiness server.
	// Range: 1024-65535
	HealthPort int

	// InboxDir is scanned for *.nml files on every run.
	InboxDir string

	// ArchiveDir receives files that were applied. Empty leaves them in place.
	ArchiveDir string

	// FailedDir receives files that could not be parsed or stored.
	FailedDir string
}

// DefaultConfig returns the values used when the environment is silent.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:      "*/5 * * * *", // every five minutes
		Timezone:          "UTC",
		IngestParallelism: 4,
		IngestTimeout:     10 * time.Minute,
		HealthPort:        9091,
		InboxDir:          "./inbox",
		ArchiveDir:        "",
		FailedDir:         "",
	}
}

// Validate checks every field and reports all failures together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.IngestParallelism, 1, 32); err != nil {
		errs = append(errs, fmt.Errorf("ingest parallelism: %w", err))
	}
	if err := config.ValidateDuration(c.IngestTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("ingest timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if c.InboxDir == "" {
		errs = append(errs, fmt.Errorf("inbox dir: must not be empty"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from the environment.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default "*/5 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "UTC")
//   - INGEST_PARALLELISM: integer 1-32 (default 4)
//   - INGEST_TIMEOUT: duration 1m-4h (default 10m)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default 9091)
//   - INBOX_DIR, ARCHIVE_DIR, FAILED_DIR: directories, taken verbatim
//
// The returned error is always nil; a bad value is replaced by its default.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	track := func(field, label string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", label),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	track("cron_schedule", "CronSchedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	track("timezone", "Timezone", result)

	result = config.LoadEnvInt("INGEST_PARALLELISM", cfg.IngestParallelism, func(v int) error {
		return config.ValidateIntRange(v, 1, 32)
	})
	cfg.IngestParallelism = result.Value.(int)
	track("ingest_parallelism", "IngestParallelism", result)

	result = config.LoadEnvDuration("INGEST_TIMEOUT", cfg.IngestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.IngestTimeout = result.Value.(time.Duration)
	track("ingest_timeout", "IngestTimeout", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	track("health_port", "HealthPort", result)

	cfg.InboxDir = config.LoadEnvString("INBOX_DIR", cfg.InboxDir)
	cfg.ArchiveDir = config.LoadEnvString("ARCHIVE_DIR", cfg.ArchiveDir)
	cfg.FailedDir = config.LoadEnvString("FAILED_DIR", cfg.FailedDir)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}

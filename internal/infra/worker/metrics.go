package worker

import (
	"djnml-feed/internal/pkg/config"
	"djnml-feed/internal/usecase/ingest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the ingest worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// metrics for the scheduled inbox sweeps.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: sweeps by status (success/failure)
//   - worker_cron_job_duration_seconds: duration histogram of a sweep
//   - worker_cron_job_files_total: files seen by outcome (parsed/failed)
//   - worker_cron_job_actions_total: applied actions by kind
//   - worker_cron_job_last_success_timestamp: last successful sweep
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal *prometheus.CounterVec

	// Buckets: 1s, 5s, 30s, 1m, 5m, 15m, 30m
	CronJobDurationSeconds prometheus.Histogram

	// Labels: outcome (parsed, failed)
	CronJobFilesTotal *prometheus.CounterVec

	// Labels: action (stored, deleted, modified, skipped)
	CronJobActionsTotal *prometheus.CounterVec

	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates the worker metrics. They are registered with the
// default registry on creation, so call it once per process.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of inbox sweeps by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of an inbox sweep in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobFilesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_files_total",
			Help: "Total number of inbox files by outcome",
		}, []string{"outcome"}),

		CronJobActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_actions_total",
			Help: "Total number of story actions applied by the worker",
		}, []string{"action"}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful inbox sweep",
		}),
	}
}

// MustRegister is a no-op: promauto registers on creation.
func (m *WorkerMetrics) MustRegister() {}

// RecordJobRun increments the run counter for status ("success" or "failure").
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a sweep in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordIngestStats adds the counters of one sweep. A nil stats is ignored.
func (m *WorkerMetrics) RecordIngestStats(stats *ingest.IngestStats) {
	if stats == nil {
		return
	}
	m.CronJobFilesTotal.WithLabelValues("parsed").Add(float64(stats.Parsed))
	m.CronJobFilesTotal.WithLabelValues("failed").Add(float64(stats.Failed))
	m.CronJobActionsTotal.WithLabelValues("stored").Add(float64(stats.Stored))
	m.CronJobActionsTotal.WithLabelValues("deleted").Add(float64(stats.Deleted))
	m.CronJobActionsTotal.WithLabelValues("modified").Add(float64(stats.Modified))
	m.CronJobActionsTotal.WithLabelValues("skipped").Add(float64(stats.Skipped))
}

// RecordLastSuccess stamps the current time as the last successful sweep.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}

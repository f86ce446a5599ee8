// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Parse metrics track the transformation engine
var (
	// ParseTotal counts parse calls by status (success, invalid_code, malformed, not_found)
	ParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djnml_parse_total",
			Help: "Total number of DJNML documents parsed",
		},
		[]string{"status"},
	)

	// ParseDuration measures time to parse one document
	ParseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "djnml_parse_duration_seconds",
			Help:    "Time taken to parse a DJNML document",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)

	// FieldMissTotal counts extraction steps that yielded no value
	FieldMissTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djnml_field_miss_total",
			Help: "Total number of extraction steps that yielded no value",
		},
		[]string{"step"},
	)

	// InvalidCodeTotal counts parses aborted by an unknown coding symbol
	InvalidCodeTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "djnml_invalid_code_total",
			Help: "Total number of parses aborted by an invalid code",
		},
	)
)

// Ingest metrics track the story pipeline
var (
	// IngestFilesTotal counts ingested files by status (parsed, failed)
	IngestFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djnml_ingest_files_total",
			Help: "Total number of files handled by the ingest pipeline",
		},
		[]string{"status"},
	)

	// IngestActionsTotal counts applied story actions (store, delete, modify)
	IngestActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djnml_ingest_actions_total",
			Help: "Total number of story actions applied",
		},
		[]string{"action"},
	)

	// IngestRunDuration measures a full ingest run
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "djnml_ingest_run_duration_seconds",
			Help:    "Time taken by one ingest run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	// EventsPublishedTotal counts change events by result (success, failure)
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "djnml_events_published_total",
			Help: "Total number of story change events published",
		},
		[]string{"result"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordOperationDuration records the duration of a named operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

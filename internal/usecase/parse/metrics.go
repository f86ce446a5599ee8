package parse

import (
	"time"

	"djnml-feed/internal/observability/metrics"
)

// Parse outcome labels.
const (
	StatusSuccess     = "success"
	StatusInvalidCode = "invalid_code"
	StatusMalformed   = "malformed"
	StatusNotFound    = "not_found"
)

// MetricsRecorder abstracts parse metrics so tests can inject a recorder.
type MetricsRecorder interface {
	RecordParse(status string, duration time.Duration)
	RecordFieldMiss(step string)
	RecordInvalidCode()
}

// PrometheusMetrics records to the process-wide Prometheus registry.
type PrometheusMetrics struct{}

func (PrometheusMetrics) RecordParse(status string, duration time.Duration) {
	metrics.RecordParse(status, duration)
}

func (PrometheusMetrics) RecordFieldMiss(step string) {
	metrics.RecordFieldMiss(step)
}

func (PrometheusMetrics) RecordInvalidCode() {
	metrics.RecordInvalidCode()
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) RecordParse(string, time.Duration) {}
func (NoopMetrics) RecordFieldMiss(string)            {}
func (NoopMetrics) RecordInvalidCode()                {}

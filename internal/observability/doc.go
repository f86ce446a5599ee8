// Package observability groups the logging, metrics, SLO and tracing
// support shared by the djnml CLI and the ingest worker.
//
// Subpackages:
//   - logging: slog constructors and error sanitizing
//   - metrics: Prometheus counters and histograms for parsing and ingest
//   - slo: gauges tracking the ingest service level indicators
//   - tracing: OpenTelemetry span helpers and HTTP middleware
//
// Example usage:
//
//	import (
//	    "djnml-feed/internal/observability/logging"
//	    "djnml-feed/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("worker started")
//
//	    metrics.RecordIngestFile(true)
//	}
package observability

// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the application metrics:
//   - Parse metrics (outcomes, duration, field misses, invalid codes)
//   - Ingest metrics (files, story actions, run duration, change events)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the worker's /metrics endpoint.
//
// Example usage:
//
//	import "djnml-feed/internal/observability/metrics"
//
//	start := time.Now()
//	doc, err := engine.Parse(ctx, r)
//	metrics.RecordParse("success", time.Since(start))
package metrics

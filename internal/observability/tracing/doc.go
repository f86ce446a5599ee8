// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created on the global otel tracer provider; without an exporter
// configured they are no-ops. The parse engine opens "djnml.parse" and the
// ingest pipeline opens "djnml.ingest.file" and "djnml.ingest.apply".
//
// Example usage:
//
//	import "djnml-feed/internal/observability/tracing"
//
//	func ingest(ctx context.Context) (err error) {
//	    ctx, span := tracing.StartSpan(ctx, "djnml.ingest.file")
//	    defer func() { tracing.EndSpan(span, err) }()
//	    // ... parse and apply ...
//	}
package tracing

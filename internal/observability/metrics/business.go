package metrics

import "time"

// RecordParse records the outcome and duration of one parse.
func RecordParse(status string, duration time.Duration) {
	ParseTotal.WithLabelValues(status).Inc()
	ParseDuration.Observe(duration.Seconds())
}

// RecordFieldMiss records an extraction step that yielded no value.
func RecordFieldMiss(step string) {
	FieldMissTotal.WithLabelValues(step).Inc()
}

// RecordInvalidCode records a parse aborted by an unknown symbol.
func RecordInvalidCode() {
	InvalidCodeTotal.Inc()
}

// RecordIngestFile records a file handled by the ingest pipeline.
// Status should be either "parsed" or "failed".
func RecordIngestFile(success bool) {
	status := "parsed"
	if !success {
		status = "failed"
	}
	IngestFilesTotal.WithLabelValues(status).Inc()
}

// RecordIngestAction records an applied story action.
func RecordIngestAction(action string) {
	IngestActionsTotal.WithLabelValues(action).Inc()
}

// RecordIngestRun records the duration of a full ingest run.
func RecordIngestRun(duration time.Duration) {
	IngestRunDuration.Observe(duration.Seconds())
}

// RecordEventPublished records the result of publishing a change event.
func RecordEventPublished(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	EventsPublishedTotal.WithLabelValues(result).Inc()
}

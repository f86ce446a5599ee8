package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordParse(t *testing.T) {
	before := testutil.ToFloat64(ParseTotal.WithLabelValues("success"))

	RecordParse("success", 3*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(ParseTotal.WithLabelValues("success")))
}

func TestRecordFieldMiss(t *testing.T) {
	tests := []string{"envelope", "copyright", "language"}

	for _, step := range tests {
		t.Run(step, func(t *testing.T) {
			before := testutil.ToFloat64(FieldMissTotal.WithLabelValues(step))
			RecordFieldMiss(step)
			assert.Equal(t, before+1, testutil.ToFloat64(FieldMissTotal.WithLabelValues(step)))
		})
	}
}

func TestRecordInvalidCode(t *testing.T) {
	before := testutil.ToFloat64(InvalidCodeTotal)
	RecordInvalidCode()
	assert.Equal(t, before+1, testutil.ToFloat64(InvalidCodeTotal))
}

func TestRecordIngestFile(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		label   string
	}{
		{name: "parsed", success: true, label: "parsed"},
		{name: "failed", success: false, label: "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(IngestFilesTotal.WithLabelValues(tt.label))
			RecordIngestFile(tt.success)
			assert.Equal(t, before+1, testutil.ToFloat64(IngestFilesTotal.WithLabelValues(tt.label)))
		})
	}
}

func TestRecordIngestAction(t *testing.T) {
	for _, action := range []string{"store", "delete", "modify"} {
		before := testutil.ToFloat64(IngestActionsTotal.WithLabelValues(action))
		RecordIngestAction(action)
		assert.Equal(t, before+1, testutil.ToFloat64(IngestActionsTotal.WithLabelValues(action)), action)
	}
}

func TestRecordEventPublished(t *testing.T) {
	before := testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("failure"))
	RecordEventPublished(false)
	assert.Equal(t, before+1, testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("failure")))
}

func TestDurationRecorders(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordIngestRun(2 * time.Second)
		RecordOperationDuration("stories.upsert", 5*time.Millisecond)
	})
}

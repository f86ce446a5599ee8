package ingest

import (
	"context"
	"time"

	"djnml-feed/internal/domain/entity"
	"djnml-feed/internal/usecase/parse"
)

// Parser loads one file. *parse.Engine satisfies it.
type Parser interface {
	LoadFileReport(ctx context.Context, path string) (*parse.Report, error)
}

// EventPublisher delivers change events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// Action is the kind of change applied to a story.
type Action string

const (
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
	ActionModify Action = "modify"
)

// Event announces one applied action. Modify events carry the patch in its
// record form so consumers can rebuild it with parse.Engine.BuildModification.
type Event struct {
	RunID      string             `json:"run_id"`
	Action     Action             `json:"action"`
	Key        string             `json:"key"`
	Publisher  string             `json:"publisher"`
	Product    string             `json:"product"`
	DocDate    string             `json:"doc_date"`
	Seq        int                `json:"seq"`
	Headline   *string            `json:"headline,omitempty"`
	Urgency    *int               `json:"urgency,omitempty"`
	Reason     *string            `json:"reason,omitempty"`
	Fields     []entity.Field     `json:"fields,omitempty"`
	Patch      *parse.PatchRecord `json:"patch,omitempty"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func newEvent(runID string, action Action, key entity.StoryKey, at time.Time) Event {
	return Event{
		RunID:      runID,
		Action:     action,
		Key:        key.String(),
		Publisher:  key.Publisher,
		Product:    key.Product,
		DocDate:    key.DocDate.Format("20060102"),
		Seq:        key.Seq,
		OccurredAt: at.UTC(),
	}
}

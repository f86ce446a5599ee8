package repository

import (
	"context"
	"time"

	"djnml-feed/internal/domain/entity"
)

// Story is the stored projection of a published story.
type Story struct {
	Key          entity.StoryKey
	Headline     *string
	Text         *string
	Summary      *string
	PressCutout  *string
	Urgency      int
	Language     *string
	SubjectCodes []string
	CompanyCodes []string
	UpdatedAt    time.Time
}

type StoryRepository interface {
	// Upsert stores a content-bearing document, replacing any story with
	// the same key.
	Upsert(ctx context.Context, doc *entity.Document) error
	// Get returns entity.ErrNotFound when no story has the key.
	Get(ctx context.Context, key entity.StoryKey) (*Story, error)
	// Delete reports whether a story was removed.
	Delete(ctx context.Context, key entity.StoryKey) (bool, error)
	// ApplyModification overwrites exactly the fields the patch carries and
	// reports whether a stored story matched the key.
	ApplyModification(ctx context.Context, key entity.StoryKey, mod entity.Modification) (bool, error)
}

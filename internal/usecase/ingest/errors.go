// Package ingest applies parsed DJNML documents to the story store.
// Stories are upserted, delete notices retract stories and modify sections
// patch them. Every applied action is announced as a change event.
package ingest

import "errors"

// Sentinel errors for ingest operations.
var (
	// ErrParseFailed marks a file the parse engine rejected.
	ErrParseFailed = errors.New("failed to parse document")

	// ErrStoreFailed marks a file whose actions could not all be stored.
	ErrStoreFailed = errors.New("failed to store story")

	// ErrPublishFailed indicates change events could not be delivered.
	// Stored actions are kept; events are best effort.
	ErrPublishFailed = errors.New("failed to publish change events")
)

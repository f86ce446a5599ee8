package publisher

import (
	"context"

	"djnml-feed/internal/usecase/ingest"
)

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a new no-op publisher.
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// Publish discards events.
func (p *NoopPublisher) Publish(context.Context, ...ingest.Event) error { return nil }

// Close is a no-op for the noop publisher.
func (p *NoopPublisher) Close() error { return nil }

// BreakerOpen is always false.
func (p *NoopPublisher) BreakerOpen() bool { return false }

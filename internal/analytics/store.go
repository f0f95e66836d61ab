package analytics

import "context"

// Store defines the interface for persisting analytics events.
// Its methods double as messaging handlers for the matching topics.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkAccessed(ctx context.Context, event *LinkAccessedEvent) error
}

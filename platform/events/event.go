// Package events provides a lightweight in-process event bus for decoupling
// modules. Handlers run asynchronously so publishers never block on
// subscribers.
package events

import (
	"context"
	"time"
)

// Event is the interface all domain events implement.
type Event interface {
	// EventName returns a unique identifier for the event type,
	// e.g. "request.submitted".
	EventName() string

	// OccurredAt returns when the event was created.
	OccurredAt() time.Time
}

// Handler processes an event. Implementations must be safe for concurrent use.
type Handler func(ctx context.Context, event Event) error

// Bus publishes events to subscribed handlers.
type Bus interface {
	// Publish delivers the event to all handlers subscribed to its name.
	// Delivery is asynchronous; Publish never blocks on handlers.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for all handlers to finish.
	// Used in tests and short-lived commands where async delivery would
	// race with process exit.
	PublishSync(ctx context.Context, event Event)

	// Subscribe registers a handler for the given event name.
	Subscribe(eventName string, handler Handler)
}

// BaseEvent provides the OccurredAt implementation for domain events.
type BaseEvent struct {
	Time time.Time
}

// NewBaseEvent creates a BaseEvent stamped with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Time: time.Now().UTC()}
}

// OccurredAt returns the event creation time.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Time
}

// Package events is the in-process publish/subscribe mechanism the
// booking and lead modules use to talk to each other.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is anything that can travel on a Bus.
type Event interface {
	// EventName is the routing key handlers subscribe to, e.g.
	// "appointments.booking.created".
	EventName() string
	OccurredAt() time.Time
}

// Identified is implemented by events that embed BaseEvent. The bus uses
// the ID to correlate handler failures in the logs.
type Identified interface {
	EventID() uuid.UUID
}

// BaseEvent is embedded by every domain event.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func (e BaseEvent) EventID() uuid.UUID { return e.ID }

// NewBaseEvent stamps a fresh ID and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events by name.
type Bus interface {
	// Publish hands the event to its handlers without waiting for them.
	// Handler errors never reach the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync runs the handlers before returning and reports their errors.
	PublishSync(ctx context.Context, event Event) error

	Subscribe(eventName string, handler Handler)
}

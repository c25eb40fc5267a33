package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a typed, timestamped record of a business fact. The event
// name is the discriminant handlers match on; it is assigned by the event
// constructor, never by the emitter. Events are read-only during dispatch.
type DomainEvent interface {
	// EventName returns the discriminant, e.g. "subscription.activated".
	EventName() string
	// EventID returns the unique ID assigned at construction.
	EventID() uuid.UUID
	// OccurredAt returns the UTC timestamp assigned at construction.
	OccurredAt() time.Time
	// Metadata returns the free-form metadata attached to the event.
	Metadata() map[string]any
}

// BaseEvent supplies the DomainEvent plumbing. Concrete events embed it and
// add their own required fields.
type BaseEvent struct {
	ID        uuid.UUID
	Name      string
	Timestamp time.Time
	Meta      map[string]any
}

// NewBase creates the embeddable base for a concrete event, assigning an ID,
// a UTC timestamp and empty metadata.
func NewBase(name string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now().UTC(),
		Meta:      make(map[string]any),
	}
}

func (e BaseEvent) EventName() string        { return e.Name }
func (e BaseEvent) EventID() uuid.UUID       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time    { return e.Timestamp }
func (e BaseEvent) Metadata() map[string]any { return e.Meta }

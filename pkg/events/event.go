package events

import "time"

// Event is what crosses the bus when a session changes state. Consumers see
// the type code and a flat payload; they never get the session itself.
type Event interface {
	// EventType returns the code for this event, e.g. "SESSION_ENDED".
	EventType() string

	// Payload returns the event data, flat and JSON-marshalable.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain-struct implementation every session event uses.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) Payload() map[string]interface{} { return e.Data }

func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }

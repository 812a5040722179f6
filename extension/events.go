// events.go defines the notifications extensions receive about bank changes.
//
// Events are delivered after the change has committed. Handlers observe;
// they cannot veto or roll back the write that produced the event.

package extension

import "github.com/jpl-au/exambank/internal/store"

// EventType identifies the kind of event as "<kind>:<op>", for example
// "question:insert" or "tag:assign".
type EventType string

// Event is the base interface for all events.
type Event interface {
	EventType() EventType
	EventID() string
}

// ChangeEvent reports one committed store mutation.
//
// For tag assignments Kind and ID name the tagged entity. Answers are
// identified by store.AnswerKey.
type ChangeEvent struct {
	Kind store.Kind
	ID   string
	Op   store.Op
}

// NewChangeEvent converts a store change into an event.
func NewChangeEvent(c store.Change) ChangeEvent {
	return ChangeEvent{Kind: c.Kind, ID: c.ID, Op: c.Op}
}

func (e ChangeEvent) EventType() EventType { return EventType(string(e.Kind) + ":" + string(e.Op)) }
func (e ChangeEvent) EventID() string      { return e.ID }

// EventHandler is implemented by extensions that want to receive events.
type EventHandler interface {
	HandleEvent(ctx Context, e Event) error
}

// Package events defines the notifications the picker and the importer send to
// their host page.
package events

import "sync"

const (
	ActionBack = "back"
	ActionAdd  = "add"

	TypeUpdateHierarchy = "updateHierarchy"
	TypeCloseModal      = "closeModal"
)

// Event is emitted upward; only the fields relevant to its kind are set.
type Event struct {
	Action       string `json:"action,omitempty"`
	CollectionID string `json:"collectionId,omitempty"`
	ResourceType string `json:"resourceType,omitempty"`
	Status       bool   `json:"status,omitempty"`
	Type         string `json:"type,omitempty"`
}

func Back() Event { return Event{Action: ActionBack} }

// Add asks the host to attach the resource id (of the given object type) to
// the open collection.
func Add(id, resourceType string) Event {
	return Event{Action: ActionAdd, CollectionID: id, ResourceType: resourceType}
}

func UpdateHierarchy() Event { return Event{Status: true, Type: TypeUpdateHierarchy} }

func CloseModal() Event { return Event{Status: true, Type: TypeCloseModal} }

// Sink receives events. A nil Sink drops them.
type Sink func(Event)

// Emit forwards ev when s is set.
func (s Sink) Emit(ev Event) {
	if s != nil {
		s(ev)
	}
}

// Recorder collects events in order; handy for the CLI and for tests. It may
// be fed from several goroutines.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Sink() Sink {
	return func(ev Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	}
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Last returns the most recent event.
func (r *Recorder) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

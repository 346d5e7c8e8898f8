// Package hooks is a typed publish/subscribe registry for the fixed
// lifecycle points of the mutating commands. The core never depends on a
// hook being registered; handlers receive a mutable payload they may adjust.
package hooks

import (
	"sync"

	"litdb/src/internal/schema"
)

// Event names one lifecycle point.
type Event string

const (
	PreAdd     Event = "pre-add"
	PostAdd    Event = "post-add"
	PreEdit    Event = "pre-edit"
	PostEdit   Event = "post-edit"
	PreModify  Event = "pre-modify"
	PostModify Event = "post-modify"
	PreDelete  Event = "pre-delete"
	PostDelete Event = "post-delete"
	PreUndo    Event = "pre-undo"
	PostUndo   Event = "post-undo"
	PreRedo    Event = "pre-redo"
	PostRedo   Event = "post-redo"
)

// Payload is the mutable context handed to handlers.
type Payload struct {
	Command string
	Labels  []string
	Entries []*schema.Entry
}

// Handler reacts to one event.
type Handler func(*Payload)

// Registry maps events to their subscribed handlers.
type Registry struct {
	mu       sync.Mutex
	handlers map[Event][]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: map[Event][]Handler{}}
}

// Subscribe registers a handler for the event.
func (r *Registry) Subscribe(ev Event, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[ev] = append(r.handlers[ev], h)
}

// Publish invokes the event's handlers in subscription order with the shared
// payload. Publishing an event nobody subscribed to is a no-op.
func (r *Registry) Publish(ev Event, p *Payload) {
	r.mu.Lock()
	hs := append([]Handler(nil), r.handlers[ev]...)
	r.mu.Unlock()
	for _, h := range hs {
		h(p)
	}
}

// defaultRegistry serves the package-level convenience functions.
var defaultRegistry = NewRegistry()

// Subscribe registers a handler on the default registry.
func Subscribe(ev Event, h Handler) { defaultRegistry.Subscribe(ev, h) }

// Publish fires an event on the default registry.
func Publish(ev Event, p *Payload) { defaultRegistry.Publish(ev, p) }

package eventbus

import "sync"

// EventKind discriminates the two metamodel-updated notifications the
// instance pools react to (§4.3).
type EventKind string

const (
	NodeMetamodelUpdated     EventKind = "NODE_METAMODEL_UPDATED"
	WorkflowMetamodelUpdated EventKind = "WORKFLOW_METAMODEL_UPDATED"
)

// Event carries the id of the updated metamodel. Subscribers re-fetch the
// current document from the catalog rather than receiving it inline, so a
// stale event never carries stale data.
type Event struct {
	Kind       EventKind
	FamilyID   string
	MetamodelID string
}

// Handler reacts to a published Event. Handlers run synchronously on the
// publisher's goroutine; a slow handler blocks the next Publish, so
// handlers that do real work (pool swap/deprecate) should be fast and
// non-blocking internally, or hand off to their own queue.
type Handler func(Event)

// Bus is an in-process, synchronous publish/subscribe channel.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler. Handlers are invoked in subscription
// order on every subsequent Publish.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish calls every subscribed handler, in subscription order, with
// event. Publish does not recover handler panics: a misbehaving handler
// is a programming error in this in-process wiring, not a runtime
// condition to mask.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

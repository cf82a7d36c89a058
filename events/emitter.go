package events

import "sync"

// Listener receives emitted events. Implementations must not block for long;
// emission happens on the request path.
type Listener interface {
	OnEvent(event *Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(event *Event)

// OnEvent implements Listener.
func (f ListenerFunc) OnEvent(event *Event) { f(event) }

// Emitter fans events out to registered listeners. Safe for concurrent use;
// listeners may be added while runs are in flight.
type Emitter struct {
	mu        sync.RWMutex
	listeners []Listener
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// AddListener registers a listener for all subsequent events.
func (e *Emitter) AddListener(l Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Emit delivers the event to every registered listener in registration order.
func (e *Emitter) Emit(event *Event) {
	if e == nil || event == nil {
		return
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, l := range e.listeners {
		l.OnEvent(event)
	}
}

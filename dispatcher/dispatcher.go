// Package dispatcher implements the synchronous hook point the content
// services notify around structural mutations. Listeners are plain
// functions kept per event name and invoked in registration order;
// there is no queue and no goroutine handoff, a listener runs on the
// caller's stack, possibly inside the caller's transaction.
package dispatcher

import (
	"sync"
)

// Event carries the subject of a notification plus free-form params.
type Event struct {
	Name    string
	Subject interface{}
	Params  map[string]interface{}
}

// Listener handles one event. The boolean return is only meaningful
// for NotifyUntil, where true stops the chain; Notify ignores it.
type Listener func(Event) bool

// FilterListener folds a value through the listener chain.
type FilterListener func(Event, interface{}) interface{}

// Dispatcher is a registry of listeners keyed by event name. The zero
// value is not usable; call New.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	filters   map[string][]FilterListener
}

// New creates an empty dispatcher.
func New() *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		filters:   make(map[string][]FilterListener),
	}
}

// Register adds a listener for an event name. Listeners fire in the
// order they were registered.
func (d *Dispatcher) Register(name string, l Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], l)
}

// RegisterFilter adds a filter listener for an event name.
func (d *Dispatcher) RegisterFilter(name string, l FilterListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filters[name] = append(d.filters[name], l)
}

// Notify invokes every listener for the event, ignoring return values.
func (d *Dispatcher) Notify(name string, subject interface{}, params map[string]interface{}) {
	ev := Event{Name: name, Subject: subject, Params: params}
	for _, l := range d.snapshot(name) {
		l(ev)
	}
}

// NotifyUntil invokes listeners in order and stops at the first one
// returning true. It reports whether any listener did.
func (d *Dispatcher) NotifyUntil(name string, subject interface{}, params map[string]interface{}) bool {
	ev := Event{Name: name, Subject: subject, Params: params}
	for _, l := range d.snapshot(name) {
		if l(ev) {
			return true
		}
	}
	return false
}

// Filter threads subject through every filter listener and returns the
// final value. With no listeners registered the subject comes back
// unchanged.
func (d *Dispatcher) Filter(name string, subject interface{}, params map[string]interface{}) interface{} {
	ev := Event{Name: name, Subject: subject, Params: params}

	d.mu.RLock()
	chain := make([]FilterListener, len(d.filters[name]))
	copy(chain, d.filters[name])
	d.mu.RUnlock()

	for _, l := range chain {
		subject = l(ev, subject)
		ev.Subject = subject
	}
	return subject
}

// ListenerCount returns how many plain listeners an event has.
func (d *Dispatcher) ListenerCount(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[name])
}

func (d *Dispatcher) snapshot(name string) []Listener {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Listener, len(d.listeners[name]))
	copy(out, d.listeners[name])
	return out
}

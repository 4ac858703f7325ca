// Package events is an in-process push channel between the backend and the
// panel. It stands in for the host window's event delivery.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Event names.
const (
	StateUpdate = "state-update"
)

// Event is one emitted message.
type Event struct {
	Name string
	Data any
}

// Handler receives events for a name it subscribed to.
type Handler func(Event)

type subscription struct {
	id      string
	handler Handler
}

// Bus delivers events to subscribers synchronously, in subscription order,
// on the emitting goroutine.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscription)}
}

// On subscribes handler to name and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus) On(name string, handler Handler) (off func()) {
	id := uuid.NewString()

	b.mu.Lock()
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, id) })
	}
}

func (b *Bus) remove(name, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[name]) == 0 {
		delete(b.subs, name)
	}
}

// Emit delivers data to every current subscriber of name.
func (b *Bus) Emit(name string, data any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[name]))
	copy(subs, b.subs[name])
	b.mu.RUnlock()

	evt := Event{Name: name, Data: data}
	for _, s := range subs {
		s.handler(evt)
	}
}

// Count returns the number of subscribers for name.
func (b *Bus) Count(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

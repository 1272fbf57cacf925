// Package events provides an in-process publish/subscribe bus for progress
// notifications. Events are hints: delivery is at-least-once at best, slow
// subscribers lose events, and consumers are expected to re-fetch the
// authoritative snapshot after any event.
package events

import (
	"sync"
)

// Event types delivered on a project subscription.
const (
	TypeProgress      = "progress"
	TypeRecordCreated = "record_created"
)

// Event is one notification for a project.
type Event struct {
	Type string      `json:"event"`
	Data interface{} `json:"data"`
}

type subscriber struct {
	ch chan Event
}

// Bus fans events out to per-project subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers a subscriber for a project's events.
// Parameters:
//   - projectID: project to watch.
// Returns:
//   - <-chan Event: buffered event channel; closed on unsubscribe.
//   - func(): unsubscribe function, safe to call once.
func (b *Bus) Subscribe(projectID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, 16)}

	b.mu.Lock()
	if b.subs[projectID] == nil {
		b.subs[projectID] = make(map[*subscriber]struct{})
	}
	b.subs[projectID][sub] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if set, ok := b.subs[projectID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(b.subs, projectID)
				}
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers an event to all subscribers of a project. Subscribers
// whose buffers are full miss the event rather than blocking the publisher.
func (b *Bus) Publish(projectID string, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[projectID] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports the number of active subscribers for a project.
func (b *Bus) SubscriberCount(projectID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[projectID])
}

// File: lixenwraith/reload/updates.go
package reload

import (
	"sync"
	"sync/atomic"
)

const DefaultMaxSubscribers = 100 // Prevent resource exhaustion

// Event describes one applied configuration change.
type Event struct {
	Old Config
	New Config
}

// Updates is the in-process update coordinator: a fan-out of applied
// configuration changes to subscribers that do not go through the job queue
// (caches invalidating themselves, a debug endpoint, and so on). It is one of
// the plain shared handles on the runtime state; it is internally thread-safe
// and never swapped.
type Updates struct {
	mu     sync.RWMutex
	subs   map[int64]chan Event
	nextID atomic.Int64
	max    int
}

// NewUpdates creates a coordinator with the default subscriber cap.
func NewUpdates() *Updates {
	return &Updates{
		subs: make(map[int64]chan Event),
		max:  DefaultMaxSubscribers,
	}
}

// Subscribe registers for change events. The returned cancel func must be
// called to release the subscription. Returns a closed channel when the
// subscriber cap is reached.
func (u *Updates) Subscribe() (<-chan Event, func()) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.subs) >= u.max {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := u.nextID.Add(1)
	ch := make(chan Event, 1)
	u.subs[id] = ch

	cancel := func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if sub, ok := u.subs[id]; ok {
			delete(u.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscriptions.
func (u *Updates) SubscriberCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.subs)
}

// publish delivers an event to every subscriber without blocking the reload
// loop: a subscriber that has not drained its previous event misses this one.
func (u *Updates) publish(e Event) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	for _, ch := range u.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

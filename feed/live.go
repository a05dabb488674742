package feed

import (
	"context"
	"sync"
)

// LiveFeed keeps the most recent notifications for display, newest first.
// Adding to a full feed evicts the oldest entry. State is in-memory only and
// resets with the process.
type LiveFeed struct {
	mu       sync.Mutex
	capacity int
	events   []Notification
}

func NewLiveFeed(capacity int) *LiveFeed {
	if capacity <= 0 {
		capacity = 50
	}
	return &LiveFeed{
		capacity: capacity,
	}
}

// Add prepends a notification, evicting the oldest when the feed is full.
func (f *LiveFeed) Add(n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append([]Notification{n}, f.events...)
	if len(f.events) > f.capacity {
		f.events = f.events[:f.capacity]
	}
}

// Snapshot returns a copy of the current feed contents, newest first.
func (f *LiveFeed) Snapshot() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Notification, len(f.events))
	copy(out, f.events)
	return out
}

// Len reports how many notifications the feed currently holds.
func (f *LiveFeed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.events)
}

// Run subscribes to the bus and consumes notifications until the context is
// cancelled or the subscription is closed.
func (f *LiveFeed) Run(ctx context.Context, bus *Bus) {
	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			f.Add(n)
		}
	}
}

// Package feed carries newly ingested events to in-process subscribers,
// primarily the dashboard live feed during local development.
package feed

import (
	"sync"
	"time"

	"github.com/storepulse/store-analytics/models"
)

// Notification is the envelope fanned out to subscribers. The timestamp is
// assigned by whoever publishes (the interceptor in development), never by
// the client.
type Notification struct {
	StoreID   string         `json:"storeId"`
	Event     string         `json:"event"`
	Data      models.JSONMap `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

const subscriberBuffer = 64

// Bus is a minimal publish/subscribe fan-out. Publish never blocks: a
// subscriber that falls behind loses notifications, which is acceptable for
// a best-effort analytics feed.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]chan Notification
	nextID int
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[int]chan Notification),
	}
}

// Subscribe registers a new listener and returns its id together with the
// channel notifications arrive on.
func (b *Bus) Subscribe() (int, <-chan Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Notification, subscriberBuffer)
	b.subs[id] = ch

	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers the notification to every current subscriber.
func (b *Bus) Publish(n Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- n:
		default:
			// subscriber buffer full, drop
		}
	}
}

// SubscriberCount reports how many listeners are currently registered.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

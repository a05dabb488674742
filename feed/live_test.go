package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveFeedNewestFirst(t *testing.T) {
	f := NewLiveFeed(10)

	for i := 0; i < 3; i++ {
		f.Add(Notification{Event: fmt.Sprintf("e%d", i)})
	}

	got := f.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "e2", got[0].Event)
	assert.Equal(t, "e1", got[1].Event)
	assert.Equal(t, "e0", got[2].Event)
}

func TestLiveFeedEvictsOldest(t *testing.T) {
	f := NewLiveFeed(3)

	for i := 0; i < 5; i++ {
		f.Add(Notification{Event: fmt.Sprintf("e%d", i)})
	}

	got := f.Snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "e4", got[0].Event)
	assert.Equal(t, "e2", got[2].Event)
}

func TestLiveFeedSnapshotIsACopy(t *testing.T) {
	f := NewLiveFeed(10)
	f.Add(Notification{Event: "e0"})

	snap := f.Snapshot()
	snap[0].Event = "mutated"

	assert.Equal(t, "e0", f.Snapshot()[0].Event)
}

func TestLiveFeedRunConsumesBus(t *testing.T) {
	bus := NewBus()
	f := NewLiveFeed(10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		f.Run(ctx, bus)
		close(done)
	}()

	// wait for the subscription to land before publishing
	require.Eventually(t, func() bool {
		return bus.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	bus.Publish(Notification{StoreID: "s1", Event: "page_view"})
	bus.Publish(Notification{StoreID: "s1", Event: "click"})

	require.Eventually(t, func() bool {
		return f.Len() == 2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, "click", f.Snapshot()[0].Event)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancellation")
	}
	assert.Equal(t, 0, bus.SubscriberCount())
}

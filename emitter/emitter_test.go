package emitter

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storepulse/store-analytics/devproxy"
	"github.com/storepulse/store-analytics/feed"
	"github.com/storepulse/store-analytics/models"
)

type capture struct {
	mu     sync.Mutex
	bodies []models.TrackingEventReceiver
}

func (c *capture) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var receiver models.TrackingEventReceiver
		if err := json.Unmarshal(b, &receiver); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.bodies = append(c.bodies, receiver)
		c.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}
}

func (c *capture) received() []models.TrackingEventReceiver {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.TrackingEventReceiver, len(c.bodies))
	copy(out, c.bodies)
	return out
}

func TestEmitterPreservesOrder(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler())
	defer server.Close()

	e := New("s1", server.URL+"/api/track", server.Client())
	e.Emit("event", "page_view", map[string]interface{}{"url": "/"})
	e.Emit("event", "click", map[string]interface{}{"element": "button"})
	e.Emit("event", "click", map[string]interface{}{"element": "a"})
	e.Close()

	got := c.received()
	require.Len(t, got, 3)
	assert.Equal(t, "page_view", got[0].Event)
	assert.Equal(t, "click", got[1].Event)
	assert.Equal(t, "button", got[1].Data["element"])
	assert.Equal(t, "a", got[2].Data["element"])
	for _, receiver := range got {
		assert.Equal(t, "s1", receiver.StoreID)
	}
}

func TestEmitterIgnoresUnknownCommands(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler())
	defer server.Close()

	e := New("s1", server.URL+"/api/track", server.Client())
	e.Emit("identify", "user-1")
	e.Emit("event") // no name
	e.Emit("event", 42)
	e.Emit("event", "")
	e.Close()

	assert.Empty(t, c.received())
}

func TestEmitterDefaultsDataToEmptyMap(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler())
	defer server.Close()

	e := New("s1", server.URL+"/api/track", server.Client())
	e.Emit("event", "page_view")
	e.Close()

	got := c.received()
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Data)
	assert.Empty(t, got[0].Data)
}

func TestEmitterSwallowsTransportFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	server.Close() // connection refused from here on

	e := New("s1", server.URL+"/api/track", nil)
	e.Emit("event", "click", map[string]interface{}{"element": "button"})

	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close hung on a failing transport")
	}
}

func TestEmitterDropsEventsAfterClose(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler())
	defer server.Close()

	e := New("s1", server.URL+"/api/track", server.Client())
	e.Emit("event", "page_view")
	e.Close()

	// fire-and-forget must hold through shutdown: no panic, no delivery
	assert.NotPanics(t, func() {
		e.Emit("event", "click", map[string]interface{}{"element": "button"})
	})
	assert.NotPanics(t, e.Close)

	got := c.received()
	require.Len(t, got, 1)
	assert.Equal(t, "page_view", got[0].Event)
}

func TestEmitterConcurrentEmitAndClose(t *testing.T) {
	c := &capture{}
	server := httptest.NewServer(c.handler())
	defer server.Close()

	e := New("s1", server.URL+"/api/track", server.Client())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				e.Emit("event", "click", map[string]interface{}{"element": "button"})
			}
		}()
	}

	assert.NotPanics(t, e.Close)
	wg.Wait()
}

func TestEmitterThroughInterceptor(t *testing.T) {
	bus := feed.NewBus()
	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	client := &http.Client{}
	restore := devproxy.Install(client, bus)
	defer restore()

	e := New("demo-1", "http://dev.invalid/api/track", client)
	e.Emit("event", "click", map[string]interface{}{"element": "button", "text": "Subscribe"})
	e.Close()

	select {
	case n := <-ch:
		assert.Equal(t, "demo-1", n.StoreID)
		assert.Equal(t, "click", n.Event)
		assert.Equal(t, "Subscribe", n.Data["text"])
	case <-time.After(time.Second):
		t.Fatal("interceptor dispatched no notification")
	}
}

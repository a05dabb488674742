// Package emitter is a small client for the tracking ingestion endpoint. It
// mirrors the embeddable widget's contract: a variadic command function, a
// local FIFO queue so call order is preserved, and fire-and-forget delivery
// that never surfaces failures to the caller.
package emitter

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/storepulse/store-analytics/models"
)

const queueSize = 256

type Emitter struct {
	storeID  string
	endpoint string
	client   *http.Client

	mu     sync.Mutex
	closed bool
	queue  chan models.TrackingEventReceiver
	done   chan struct{}
}

// New starts an emitter delivering to endpoint on behalf of storeID. The
// client may carry a devproxy interceptor; pass nil for http.DefaultClient.
// A single worker goroutine drains the queue, so events arrive in the order
// they were emitted.
func New(storeID, endpoint string, client *http.Client) *Emitter {
	if client == nil {
		client = http.DefaultClient
	}

	e := &Emitter{
		storeID:  storeID,
		endpoint: endpoint,
		client:   client,
		queue:    make(chan models.TrackingEventReceiver, queueSize),
		done:     make(chan struct{}),
	}

	go e.flushLoop()

	return e
}

// Emit is the variadic command function. Only the "event" command with a
// (name, data) pair translates into a transport call; every other command is
// ignored so unknown commands from callers can't break anything.
func (e *Emitter) Emit(command string, args ...interface{}) {
	if command != "event" || len(args) == 0 {
		return
	}

	name, ok := args[0].(string)
	if !ok || name == "" {
		return
	}

	data := models.JSONMap{}
	if len(args) > 1 {
		switch v := args[1].(type) {
		case models.JSONMap:
			data = v
		case map[string]interface{}:
			data = v
		}
	}

	receiver := models.TrackingEventReceiver{
		StoreID: e.storeID,
		Event:   name,
		Data:    data,
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		// An emit racing a shutdown is dropped like any other failure,
		// never surfaced to the caller.
		log.Printf("emitter: closed, dropping event %q", name)
		return
	}

	select {
	case e.queue <- receiver:
	default:
		// Queue full. Dropping beats blocking the caller.
		log.Printf("emitter: queue full, dropping event %q", name)
	}
}

// Close stops accepting new events and drains whatever is already queued
// before returning, so an orderly shutdown doesn't lose buffered events.
// Emit calls after (or racing) Close are dropped, not panics.
func (e *Emitter) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	<-e.done
}

func (e *Emitter) flushLoop() {
	for receiver := range e.queue {
		e.send(receiver)
	}
	close(e.done)
}

func (e *Emitter) send(receiver models.TrackingEventReceiver) {
	body, err := json.Marshal(receiver)
	if err != nil {
		log.Println("emitter: error marshalling event:", err)
		return
	}

	resp, err := e.client.Post(e.endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Println("emitter: error delivering event:", err)
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		log.Printf("emitter: ingestion endpoint returned %d", resp.StatusCode)
	}
}

// Package devproxy substitutes the ingestion endpoint with an in-process
// simulation so the dashboard can show live event flow without a backend.
package devproxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storepulse/store-analytics/feed"
	"github.com/storepulse/store-analytics/models"
)

// DefaultRoute is the path suffix the interceptor claims. Requests to any
// other path pass through to the real transport unmodified.
const DefaultRoute = "/api/track"

// Interceptor is an http.RoundTripper that serves the ingestion route
// in-process, validating the body the same way the real endpoint does and
// re-broadcasting valid envelopes on the feed bus. Its synthetic responses
// match the real endpoint's status codes and body shapes, so callers can't
// tell which transport served them.
type Interceptor struct {
	base  http.RoundTripper
	bus   *feed.Bus
	route string

	// Now is the timestamp authority for simulated ingestion. Overridable in
	// tests; defaults to time.Now.
	Now func() time.Time
}

func New(base http.RoundTripper, bus *feed.Bus) *Interceptor {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Interceptor{
		base:  base,
		bus:   bus,
		route: DefaultRoute,
		Now:   time.Now,
	}
}

// Install wraps the client's transport with an interceptor publishing to
// bus. The returned restore function reinstates the client's previous
// transport, leaving no residual state behind.
func Install(client *http.Client, bus *feed.Bus) (restore func()) {
	original := client.Transport
	client.Transport = New(original, bus)
	return func() {
		client.Transport = original
	}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	if !strings.HasSuffix(req.URL.Path, i.route) {
		return i.base.RoundTrip(req)
	}

	if req.Method == http.MethodOptions {
		return i.textResponse(req, http.StatusOK, "ok"), nil
	}

	if req.Method != http.MethodPost {
		return i.jsonResponse(req, http.StatusMethodNotAllowed, map[string]string{
			"error": "Method not allowed",
		}), nil
	}

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return i.jsonResponse(req, http.StatusBadRequest, map[string]string{
				"error": "Invalid JSON body",
			}), nil
		}
		body = b
	}

	// An absent body unmarshals like an empty one, so both transports
	// answer it the same way the real decoder answers EOF.
	var receiver models.TrackingEventReceiver
	if err := json.Unmarshal(body, &receiver); err != nil {
		return i.jsonResponse(req, http.StatusBadRequest, map[string]string{
			"error": "Invalid JSON body",
		}), nil
	}

	if receiver.StoreID == "" || receiver.Event == "" {
		return i.jsonResponse(req, http.StatusBadRequest, map[string]string{
			"error": "Missing required fields: storeId and event",
		}), nil
	}

	if receiver.Data == nil {
		receiver.Data = models.JSONMap{}
	}

	// The simulator is the timestamp authority here, mirroring the server
	// clock in real ingestion. Client-supplied timestamps are never trusted.
	i.bus.Publish(feed.Notification{
		StoreID:   receiver.StoreID,
		Event:     receiver.Event,
		Data:      receiver.Data,
		Timestamp: i.Now().UTC(),
	})

	return i.jsonResponse(req, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Event tracked successfully",
	}), nil
}

func (i *Interceptor) jsonResponse(req *http.Request, status int, v interface{}) *http.Response {
	body, _ := json.Marshal(v)
	resp := i.newResponse(req, status, body)
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func (i *Interceptor) textResponse(req *http.Request, status int, text string) *http.Response {
	resp := i.newResponse(req, status, []byte(text))
	resp.Header.Set("Content-Type", "text/plain")
	return resp
}

func (i *Interceptor) newResponse(req *http.Request, status int, body []byte) *http.Response {
	header := make(http.Header)
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

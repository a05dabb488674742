package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderSnippet(t *testing.T, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/api/store/{storeId}/snippet", GetTrackingSnippet()).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetTrackingSnippet(t *testing.T) {
	rec := renderSnippet(t, "http://dashboard.example.com/api/store/store_abc123/snippet", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `var STORE_ID = "store_abc123";`)
	assert.Contains(t, body, `var INGEST_URL = "http://dashboard.example.com/api/track";`)

	// the widget contract: page_view on load, delegated click capture,
	// unload-surviving delivery, a single global command function
	assert.Contains(t, body, `track("page_view"`)
	assert.Contains(t, body, `document.addEventListener("click"`)
	assert.Contains(t, body, "keepalive: true")
	assert.Contains(t, body, "window.spulse = function")
	assert.Contains(t, body, `closest("a, button")`)
	// className is an object on SVG elements; the attribute is always a string
	assert.Contains(t, body, `el.getAttribute("class")`)

	assert.True(t, len(body) > 0 && body[:8] == "<script>")
}

func TestGetTrackingSnippetHonorsForwardedProto(t *testing.T) {
	rec := renderSnippet(t, "http://dashboard.example.com/api/store/store_abc123/snippet",
		map[string]string{"X-Forwarded-Proto": "https"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `var INGEST_URL = "https://dashboard.example.com/api/track";`)
}

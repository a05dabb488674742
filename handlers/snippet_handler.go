package handlers

import (
	"log"
	"net/http"
	"text/template"

	"github.com/storepulse/store-analytics/utils"
)

// snippetTemplate is the embeddable widget. It exposes a global command
// function (spulse) the host page can call; only the "event" command with a
// (name, data) pair reaches the transport. Envelopes are queued first so call
// order is preserved, then flushed with keepalive fetches that survive page
// unload. Delivery failures are logged to the console and dropped: the
// widget must never break the host page.
const snippetTemplate = `<script>
(function () {
  var STORE_ID = "{{.StoreID}}";
  var INGEST_URL = "{{.IngestURL}}";
  var queue = [];

  function flush() {
    while (queue.length > 0) {
      var envelope = queue.shift();
      try {
        fetch(INGEST_URL, {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify(envelope),
          keepalive: true
        }).catch(function (err) {
          console.debug("spulse: delivery failed", err);
        });
      } catch (err) {
        console.debug("spulse: delivery failed", err);
      }
    }
  }

  function track(name, data) {
    queue.push({ storeId: STORE_ID, event: name, data: data || {} });
    flush();
  }

  window.spulse = function (command) {
    var args = Array.prototype.slice.call(arguments, 1);
    if (command === "event" && args.length > 0) {
      track(args[0], args[1]);
    }
  };

  track("page_view", {
    url: window.location.href,
    title: document.title,
    referrer: document.referrer
  });

  document.addEventListener("click", function (e) {
    if (!(e.target instanceof Element)) return;
    var el = e.target.closest("a, button") || e.target;
    if (!el.tagName) return;
    track("click", {
      element: el.tagName.toLowerCase(),
      text: (el.textContent || "").trim().slice(0, 100),
      path: el.href || el.action || null,
      classes: el.getAttribute("class") || null
    });
  });
})();
</script>`

var snippetTmpl = template.Must(template.New("snippet").Parse(snippetTemplate))

type snippetParams struct {
	StoreID   string
	IngestURL string
}

// GetTrackingSnippet renders the script block a storefront pastes into its
// page markup. The ingestion URL is derived from the request's own origin so
// the snippet points back at whichever deployment served it.
func GetTrackingSnippet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := utils.ExtractStoreIDFromURL(r)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		scheme := "https"
		if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
			scheme = "http"
		}

		params := snippetParams{
			StoreID:   storeID,
			IngestURL: scheme + "://" + r.Host + "/api/track",
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		err = snippetTmpl.Execute(w, params)
		if err != nil {
			log.Println("Error rendering tracking snippet:", err)
		}
	}
}

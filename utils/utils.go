package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mileusna/useragent"
)

func ExtractStoreIDFromURL(r *http.Request) (string, error) {
	vars := mux.Vars(r)

	storeID, ok := vars["storeId"]
	if !ok {
		return "", errors.New("store ID not provided in the URL")
	}

	return storeID, nil
}

func ExtractReportFromURL(r *http.Request) (string, error) {
	vars := mux.Vars(r)

	report, ok := vars["report"]
	if !ok {
		return "", errors.New("report not provided in the URL")
	}

	return report, nil
}

func GetDeviceType(ua *useragent.UserAgent) string {
	if ua.Mobile {
		return "Mobile"
	} else if ua.Tablet {
		return "Tablet"
	} else if ua.Desktop {
		return "Desktop"
	} else if ua.Bot {
		return "Bot"
	} else {
		return "Unknown"
	}
}

// WriteJSON marshals v and writes it with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes the {"error": "..."} body the tracking API uses for
// every failure response.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/storepulse/store-analytics/models"
	"github.com/storepulse/store-analytics/utils"
)

// pageViewScanLimit bounds the page-views-summary scan to the most recent
// rows. Known scalability shortcut: the grand total is computed over at most
// this many events, not the full corpus.
const pageViewScanLimit = 1000

const summaryWindowDays = 7

// GetStoreStats serves the read-only aggregation reports. Each invocation
// recomputes from scratch; there is no cache and no incremental state.
func GetStoreStats(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := utils.ExtractStoreIDFromURL(r)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		report, err := utils.ExtractReportFromURL(r)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		switch report {
		case "page-views-summary":
			getPageViewsSummary(db, w, storeID)
		case "top-pages":
			getTopPages(db, w, storeID)
		case "click-event-summary":
			getClickEventSummary(db, w, storeID)
		case "recent":
			getRecentEvents(db, w, storeID)
		default:
			utils.WriteJSONError(w, http.StatusNotFound, "Invalid endpoint")
		}
	}
}

// getPageViewsSummary counts page_view events per calendar day for the
// trailing week, zero-filled, plus a grand total over the scanned rows.
func getPageViewsSummary(db *sql.DB, w http.ResponseWriter, storeID string) {
	query := `
		SELECT to_char(timestamp AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM (
			SELECT timestamp
			FROM events
			WHERE store_id = $1 AND event = 'page_view'
			ORDER BY timestamp DESC
			LIMIT $2
		) recent
		GROUP BY day
	`

	rows, err := db.Query(query, storeID, pageViewScanLimit)
	if err != nil {
		log.Println("Error querying page view summary:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	countsByDay := make(map[string]int)
	total := 0
	for rows.Next() {
		var day string
		var count int
		err = rows.Scan(&day, &count)
		if err != nil {
			log.Println("Error scanning page view summary:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		countsByDay[day] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		log.Println("Error iterating page view summary:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Zero-fill the trailing window, oldest day first.
	days := make([]string, 0, summaryWindowDays)
	counts := make([]int, 0, summaryWindowDays)
	now := time.Now().UTC()
	for i := summaryWindowDays - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		days = append(days, day)
		counts = append(counts, countsByDay[day])
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"days":   days,
		"counts": counts,
		"total":  total,
	})
}

// getTopPages returns the page_view histogram by payload URL, top 10.
func getTopPages(db *sql.DB, w http.ResponseWriter, storeID string) {
	query := `
		SELECT data->>'url', COUNT(*)
		FROM events
		WHERE store_id = $1 AND event = 'page_view' AND data->>'url' IS NOT NULL
		GROUP BY data->>'url'
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`

	rows, err := db.Query(query, storeID)
	if err != nil {
		log.Println("Error querying top pages:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	urls := []string{}
	counts := []int{}
	for rows.Next() {
		var url string
		var count int
		err = rows.Scan(&url, &count)
		if err != nil {
			log.Println("Error scanning top pages:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		urls = append(urls, url)
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		log.Println("Error iterating top pages:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"urls":   urls,
		"counts": counts,
	})
}

// getClickEventSummary groups click and user_interaction events by the
// clicked element, top 5, alongside the overall count.
func getClickEventSummary(db *sql.DB, w http.ResponseWriter, storeID string) {
	query := `
		SELECT COALESCE(data->>'element', 'unknown'), COUNT(*)
		FROM events
		WHERE store_id = $1 AND event IN ('click', 'user_interaction')
		GROUP BY COALESCE(data->>'element', 'unknown')
		ORDER BY COUNT(*) DESC
		LIMIT 5
	`

	rows, err := db.Query(query, storeID)
	if err != nil {
		log.Println("Error querying click summary:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	elements := []string{}
	counts := []int{}
	for rows.Next() {
		var element string
		var count int
		err = rows.Scan(&element, &count)
		if err != nil {
			log.Println("Error scanning click summary:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		elements = append(elements, element)
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		log.Println("Error iterating click summary:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var total int
	err = db.QueryRow("SELECT COUNT(*) FROM events WHERE store_id = $1 AND event IN ('click', 'user_interaction')", storeID).Scan(&total)
	if err != nil {
		log.Println("Error counting click events:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"elements": elements,
		"counts":   counts,
		"total":    total,
	})
}

// getRecentEvents returns the latest 50 envelopes of any type, newest first.
func getRecentEvents(db *sql.DB, w http.ResponseWriter, storeID string) {
	query := `
		SELECT id, store_id, event, data, session_id, timestamp, user_agent, ip_address,
			device_type, os, browser, country, region, city, is_unique
		FROM events
		WHERE store_id = $1
		ORDER BY timestamp DESC
		LIMIT 50
	`

	rows, err := db.Query(query, storeID)
	if err != nil {
		log.Println("Error querying recent events:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	events := []models.TrackingEvent{}
	for rows.Next() {
		var event models.TrackingEvent
		var sessionID, userAgent, ipAddress sql.NullString
		err = rows.Scan(
			&event.ID,
			&event.StoreID,
			&event.Event,
			&event.Data,
			&sessionID,
			&event.Timestamp,
			&userAgent,
			&ipAddress,
			&event.DeviceType,
			&event.OS,
			&event.Browser,
			&event.Country,
			&event.Region,
			&event.City,
			&event.IsUnique,
		)
		if err != nil {
			log.Println("Error scanning recent event:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if sessionID.Valid {
			event.SessionID = &sessionID.String
		}
		if userAgent.Valid {
			event.UserAgent = &userAgent.String
		}
		if ipAddress.Valid {
			event.IPAddress = &ipAddress.String
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		log.Println("Error iterating recent events:", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
	})
}

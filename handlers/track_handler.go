package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/mileusna/useragent"
	"github.com/oschwald/geoip2-golang"

	"github.com/storepulse/store-analytics/models"
	"github.com/storepulse/store-analytics/utils"
)

// setCORSHeaders makes the ingestion route callable from arbitrary storefront
// origins. The widget snippet runs on domains we don't control.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
}

// CreateTrackingEvent ingests one envelope: verb check, JSON parse, required
// field validation, server-side enrichment, single append-only INSERT. There
// is no retry and no idempotency key; a duplicate POST produces a duplicate
// record. geoipDB may be nil, in which case location enrichment is skipped.
func CreateTrackingEvent(postgresDB *sql.DB, geoipDB *geoip2.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
			return
		}

		if r.Method != http.MethodPost {
			utils.WriteJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var receiver models.TrackingEventReceiver
		err := json.NewDecoder(r.Body).Decode(&receiver)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		if receiver.StoreID == "" || receiver.Event == "" {
			utils.WriteJSONError(w, http.StatusBadRequest, "Missing required fields: storeId and event")
			return
		}

		if receiver.Data == nil {
			receiver.Data = models.JSONMap{}
		}

		// Server-observed enrichment. Both are nullable; we never guess.
		var userAgent *string
		if uaHeader := r.Header.Get("User-Agent"); uaHeader != "" {
			userAgent = &uaHeader
		}

		var ipAddress *string
		if ip := utils.GetClientIP(r); ip != "" {
			ipAddress = &ip
		}

		ua := useragent.Parse(r.Header.Get("User-Agent"))

		location := utils.Location{}
		if geoipDB != nil && ipAddress != nil {
			parsedIP := net.ParseIP(*ipAddress)
			if parsedIP != nil {
				record, err := geoipDB.City(parsedIP)
				if err != nil {
					log.Printf("Error retrieving location for IP %v: %v", parsedIP, err)
				} else {
					location = utils.GetLocationInfo(record)
				}
			}
		}

		// Daily-salted unique visitor flag. Best effort: a failure here must
		// not reject the event itself.
		isUnique := false
		dailySalt, err := utils.GenerateDailySalt()
		if err != nil {
			log.Println("Error generating or grabbing daily salt", err)
		} else {
			var uaValue, ipValue string
			if userAgent != nil {
				uaValue = *userAgent
			}
			if ipAddress != nil {
				ipValue = *ipAddress
			}

			uniqueIdentifier, err := utils.GenerateUniqueIdentifier(dailySalt, receiver.StoreID, ipValue, uaValue)
			if err != nil {
				log.Println("Error generating a unique identifier", err)
			} else {
				var seen bool
				err = postgresDB.QueryRow("SELECT EXISTS(SELECT 1 FROM daily_unique_identifiers WHERE unique_identifier = $1)", uniqueIdentifier).Scan(&seen)
				if err != nil {
					log.Println("Error checking for existing unique identifier", err)
				} else if !seen {
					_, err := postgresDB.Exec("INSERT INTO daily_unique_identifiers (unique_identifier) VALUES ($1)", uniqueIdentifier)
					if err != nil {
						log.Println("Error inserting unique identifier", err)
					} else {
						isUnique = true
					}
				}
			}
		}

		event := models.TrackingEventInsert{
			StoreID:    receiver.StoreID,
			Event:      receiver.Event,
			Data:       receiver.Data,
			SessionID:  receiver.SessionID,
			Timestamp:  time.Now().UTC(), // server clock, never the client's
			UserAgent:  userAgent,
			IPAddress:  ipAddress,
			DeviceType: utils.GetDeviceType(&ua),
			OS:         ua.OS,
			Browser:    ua.Name,
			Country:    location.Country,
			Region:     location.Region,
			City:       location.City,
			IsUnique:   isUnique,
		}

		insertQuery := `
			INSERT INTO events
				(store_id, event, data, session_id, timestamp, user_agent, ip_address, device_type, os, browser, country, region, city, is_unique)
			VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`

		_, err = postgresDB.Exec(insertQuery,
			event.StoreID,
			event.Event,
			event.Data,
			event.SessionID,
			event.Timestamp,
			event.UserAgent,
			event.IPAddress,
			event.DeviceType,
			event.OS,
			event.Browser,
			event.Country,
			event.Region,
			event.City,
			event.IsUnique,
		)
		if err != nil {
			log.Println("Error inserting tracking event", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Failed to store tracking data")
			return
		}

		utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": "Event tracked successfully",
		})
	}
}

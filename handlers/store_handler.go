package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/storepulse/store-analytics/models"
	"github.com/storepulse/store-analytics/utils"
)

func GetStores(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		rows, err := db.Query("SELECT id, public_id, name, domain, created_at FROM stores ORDER BY created_at DESC")
		if err != nil {
			log.Println("Error querying stores:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Error retrieving stores")
			return
		}
		defer rows.Close()

		stores := []models.Store{}
		for rows.Next() {
			var store models.Store
			err := rows.Scan(&store.ID, &store.PublicID, &store.Name, &store.Domain, &store.CreatedAt)
			if err != nil {
				log.Println("Error scanning store:", err)
				utils.WriteJSONError(w, http.StatusInternalServerError, "Error scanning store")
				return
			}
			stores = append(stores, store)
		}
		if err := rows.Err(); err != nil {
			log.Println("Error iterating stores:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Error iterating stores")
			return
		}

		utils.WriteJSON(w, http.StatusOK, stores)
	}
}

func GetStore(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := utils.ExtractStoreIDFromURL(r)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		var store models.Store
		err = db.QueryRow("SELECT id, public_id, name, domain, created_at FROM stores WHERE public_id = $1", storeID).
			Scan(&store.ID, &store.PublicID, &store.Name, &store.Domain, &store.CreatedAt)
		if err == sql.ErrNoRows {
			utils.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("Store %s doesn't exist", storeID))
			return
		}
		if err != nil {
			log.Println("Error querying store:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Error retrieving store")
			return
		}

		utils.WriteJSON(w, http.StatusOK, store)
	}
}

// CreateStore registers a tenant and mints its public tracking identifier.
// The public ID is what the widget snippet embeds as storeId.
func CreateStore(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var insert models.StoreInsert
		err := json.NewDecoder(r.Body).Decode(&insert)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		if insert.Name == "" || insert.Domain == "" {
			utils.WriteJSONError(w, http.StatusBadRequest, "Missing required fields: name and domain")
			return
		}

		publicID := "store_" + uuid.NewString()

		var store models.Store
		err = db.QueryRow(
			"INSERT INTO stores (public_id, name, domain) VALUES ($1, $2, $3) RETURNING id, public_id, name, domain, created_at",
			publicID, insert.Name, insert.Domain,
		).Scan(&store.ID, &store.PublicID, &store.Name, &store.Domain, &store.CreatedAt)
		if err != nil {
			log.Println("Error inserting store:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Error creating store")
			return
		}

		utils.WriteJSON(w, http.StatusCreated, store)
	}
}

// DeleteStore removes the registry row only. Persisted events are append-only
// and are intentionally left untouched.
func DeleteStore(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := utils.ExtractStoreIDFromURL(r)
		if err != nil {
			utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := db.Exec("DELETE FROM stores WHERE public_id = $1", storeID)
		if err != nil {
			log.Println("Error deleting store:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Error deleting store")
			return
		}

		affected, err := result.RowsAffected()
		if err != nil {
			log.Println("Error reading rows affected:", err)
			utils.WriteJSONError(w, http.StatusInternalServerError, "Error deleting store")
			return
		}
		if affected == 0 {
			utils.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("Store %s doesn't exist", storeID))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

package middleware

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/storepulse/store-analytics/utils"
)

// StoreMustExist gates routes that only make sense for a registered store,
// like the snippet generator. Ingestion deliberately does not use it: storeId
// is opaque at the ingestion boundary.
func StoreMustExist(db *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			storeID, err := utils.ExtractStoreIDFromURL(r)
			if err != nil {
				utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
				return
			}

			var exists bool
			err = db.QueryRow("SELECT EXISTS(SELECT 1 FROM stores WHERE public_id = $1)", storeID).Scan(&exists)
			if err != nil {
				log.Println("Error checking if store exists:", err)
				utils.WriteJSONError(w, http.StatusInternalServerError, "Error checking store")
				return
			}
			if !exists {
				utils.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("Store %s doesn't exist", storeID))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package main

import (
	"database/sql"

	"github.com/gorilla/mux"
	"github.com/oschwald/geoip2-golang"

	"github.com/storepulse/store-analytics/handlers"
	"github.com/storepulse/store-analytics/middleware"
)

func SetupRouter(db *sql.DB, geoipDB *geoip2.Reader) *mux.Router {

	router := mux.NewRouter()

	// ingestion route; no Methods() filter because the handler enforces the
	// verb itself and answers OPTIONS pre-flights with its own CORS headers
	router.HandleFunc("/api/track", handlers.CreateTrackingEvent(db, geoipDB))

	// store routes
	router.HandleFunc("/api/stores", handlers.GetStores(db)).Methods("GET")
	router.HandleFunc("/api/store", handlers.CreateStore(db)).Methods("POST")
	router.HandleFunc("/api/store/{storeId}", handlers.GetStore(db)).Methods("GET")
	router.HandleFunc("/api/store/{storeId}", handlers.DeleteStore(db)).Methods("DELETE")
	router.Handle("/api/store/{storeId}/snippet", middleware.StoreMustExist(db)(handlers.GetTrackingSnippet())).Methods("GET")

	// aggregation routes; the handler dispatches on {report} and answers
	// unknown names with 404 Invalid endpoint
	router.HandleFunc("/api/stats/{storeId}/{report}", handlers.GetStoreStats(db)).Methods("GET")

	return router
}

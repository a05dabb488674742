package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"

	"github.com/storepulse/store-analytics/db"
)

func main() {
	// .env is optional; deployed environments set real variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from the environment")
	}

	// db initialization
	database, err := db.CreatePostgresConnection()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.InitSchema(database); err != nil {
		log.Fatal(err)
	}

	// the service runs without GeoIP; events just skip location enrichment
	geoipDB, err := db.CreateGeoIPConnection()
	if err != nil {
		log.Println("GeoIP database unavailable, location enrichment disabled:", err)
		geoipDB = nil
	} else {
		defer geoipDB.Close()
	}

	// router
	router := SetupRouter(database, geoipDB)

	port := 8080
	if p := os.Getenv("PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			port = parsed
		}
	}
	address := fmt.Sprintf(":%d", port)

	log.Printf("Server is listening on port %d...\n", port)

	err = http.ListenAndServe(address, handlers.CORS( // cors config
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"}),
	)(router))
	if err != nil {
		log.Fatalf("Failed to start server: %v\n", err)
	}
}

package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/lib/pq" // imported for side-effects only, not for direct use in the code.
	"github.com/oschwald/geoip2-golang"
)

func CreatePostgresConnection() (*sql.DB, error) {
	connStr := fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
		os.Getenv("POSTGRES_SSLMODE"),
	)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	log.Println("Successfully connected to the Postgres Database")

	return db, nil
}

// InitSchema creates the tables the pipeline needs if they don't exist yet.
// The events table is append-only; nothing in the codebase updates or
// deletes rows from it.
func InitSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS stores (
			id SERIAL PRIMARY KEY,
			public_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			domain TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			store_id TEXT NOT NULL,
			event TEXT NOT NULL,
			data JSONB NOT NULL DEFAULT '{}',
			session_id TEXT,
			timestamp TIMESTAMPTZ NOT NULL,
			user_agent TEXT,
			ip_address TEXT,
			device_type TEXT NOT NULL DEFAULT '',
			os TEXT NOT NULL DEFAULT '',
			browser TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			region TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			is_unique BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_store_timestamp ON events (store_id, timestamp DESC)`,
		`CREATE TABLE IF NOT EXISTS daily_unique_identifiers (
			unique_identifier TEXT PRIMARY KEY
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema init error: %w", err)
		}
	}

	return nil
}

func CreateGeoIPConnection() (*geoip2.Reader, error) {
	dbPath := os.Getenv("GEOIP_DB_PATH")
	if dbPath == "" {
		// Fallback to local development path if env var not set
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home directory error: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".geoip2", "GeoLite2-City.mmdb")
	}

	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("geoip connection error: %w", err)
	}

	log.Println("Successfully connected to GeoIP Database")
	return db, nil
}

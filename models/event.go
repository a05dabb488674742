package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap is the arbitrary event payload, stored in a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for JSONMap", src)
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}

// TrackingEvent represents one persisted envelope. Records are append-only;
// userAgent and ipAddress are nullable because not every request carries them.
type TrackingEvent struct {
	ID         int64     `json:"id"`
	StoreID    string    `json:"storeId"`
	Event      string    `json:"event"`
	Data       JSONMap   `json:"data"`
	SessionID  *string   `json:"sessionId"`
	Timestamp  time.Time `json:"timestamp"`
	UserAgent  *string   `json:"userAgent"`
	IPAddress  *string   `json:"ipAddress"`
	DeviceType string    `json:"deviceType"`
	OS         string    `json:"os"`
	Browser    string    `json:"browser"`
	Country    string    `json:"country"`
	Region     string    `json:"region"`
	City       string    `json:"city"`
	IsUnique   bool      `json:"isUnique"`
}

// TrackingEventReceiver is the client-supplied subset of the envelope.
// Everything else is assigned at the ingestion boundary.
type TrackingEventReceiver struct {
	StoreID   string  `json:"storeId"`
	Event     string  `json:"event"`
	Data      JSONMap `json:"data"`
	SessionID *string `json:"sessionId"`
}

// TrackingEventInsert is the fully enriched record handed to the INSERT.
type TrackingEventInsert struct {
	StoreID    string    `json:"storeId"`
	Event      string    `json:"event"`
	Data       JSONMap   `json:"data"`
	SessionID  *string   `json:"sessionId"`
	Timestamp  time.Time `json:"timestamp"`
	UserAgent  *string   `json:"userAgent"`
	IPAddress  *string   `json:"ipAddress"`
	DeviceType string    `json:"deviceType"`
	OS         string    `json:"os"`
	Browser    string    `json:"browser"`
	Country    string    `json:"country"`
	Region     string    `json:"region"`
	City       string    `json:"city"`
	IsUnique   bool      `json:"isUnique"`
}

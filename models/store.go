package models

import "time"

type Store struct {
	ID        int64     `json:"id"`
	PublicID  string    `json:"publicId"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain"`
	CreatedAt time.Time `json:"createdAt"`
}

type StoreInsert struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type dailySalt struct {
	salt []byte
	date time.Time
}

// Stored in memory, rotated by date string.
var (
	dailySaltMu    sync.Mutex
	dailySaltCache = make(map[string]dailySalt)
)

// getDailySalt generates a random 16-byte salt
func getDailySalt() ([]byte, error) {
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	if err != nil {
		return nil, err
	}
	return salt, nil
}

// GenerateDailySalt generates a unique salt for the current day if it hasn't been generated yet.
func GenerateDailySalt() ([]byte, error) {
	now := time.Now()
	dateString := now.Format("2006-01-02")

	dailySaltMu.Lock()
	defer dailySaltMu.Unlock()

	if salt, ok := dailySaltCache[dateString]; ok {
		return salt.salt, nil
	}

	salt, err := getDailySalt()
	if err != nil {
		return nil, err
	}

	dailySaltCache[dateString] = dailySalt{salt: salt, date: now}
	return salt, nil
}

// GenerateUniqueIdentifier hashes salt + store + IP + user agent so the same
// visitor maps to the same identifier within a day without storing the raw IP.
func GenerateUniqueIdentifier(dailySalt []byte, storeID, ipAddress, userAgent string) (string, error) {
	combinedString := string(dailySalt) + storeID + ipAddress + userAgent

	hasher := sha256.New()
	hasher.Write([]byte(combinedString))
	hashedBytes := hasher.Sum(nil)

	hashedString := hex.EncodeToString(hashedBytes)

	return hashedString, nil
}

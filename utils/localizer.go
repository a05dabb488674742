package utils

import (
	"net/http"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// GetClientIP returns the first address in the X-Forwarded-For chain, or ""
// when the header is absent. The ingestion endpoint stores NULL in that case
// rather than guessing from RemoteAddr.
func GetClientIP(r *http.Request) string {
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}

	parts := strings.Split(xff, ",")
	return strings.TrimSpace(parts[0])
}

// Location holds the parsed location information
type Location struct {
	Country string
	Region  string
	City    string
}

// GetLocationInfo extracts location information from the GeoIP record
func GetLocationInfo(record *geoip2.City) Location {
	location := Location{
		Country: "Unknown",
		Region:  "Unknown",
		City:    "Unknown",
	}

	if record.Country.Names != nil {
		if countryName, ok := record.Country.Names["en"]; ok {
			location.Country = countryName
		}
	}

	if len(record.Subdivisions) > 0 && record.Subdivisions[0].Names != nil {
		if regionName, ok := record.Subdivisions[0].Names["en"]; ok {
			location.Region = regionName
		}
	}

	if record.City.Names != nil {
		if cityName, ok := record.City.Names["en"]; ok {
			location.City = cityName
		}
	}

	return location
}

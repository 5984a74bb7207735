package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
)

// LocationSource identifies how a location reading was obtained
type LocationSource string

const (
	LocationSourceGPS    LocationSource = "gps"
	LocationSourceIP     LocationSource = "ip"
	LocationSourceManual LocationSource = "manual"
)

// LocationSample is a normalized position/address reading from any source.
// Immutable once attached to a shift, break, or activity entry.
// Latitude/Longitude are absent when Error is set.
type LocationSample struct {
	Timestamp int64          `json:"timestamp"`
	Source    LocationSource `json:"source"`
	Latitude  *float64       `json:"latitude,omitempty"`
	Longitude *float64       `json:"longitude,omitempty"`
	Accuracy  *float64       `json:"accuracy,omitempty"` // Error radius in meters, smaller is more precise
	Address   *string        `json:"address,omitempty"`
	City      *string        `json:"city,omitempty"`
	Country   *string        `json:"country,omitempty"`
	Error     *string        `json:"error,omitempty"`
}

// Validate checks the required shape: a timestamp and a known source.
func (l *LocationSample) Validate() error {
	if l.Timestamp == 0 {
		return fmt.Errorf("location sample missing timestamp")
	}
	switch l.Source {
	case LocationSourceGPS, LocationSourceIP, LocationSourceManual:
		return nil
	default:
		return fmt.Errorf("unknown location source: %q", l.Source)
	}
}

// HasCoordinates reports whether the sample carries a usable lat/lon fix
func (l *LocationSample) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// Value implements driver.Valuer so samples can be stored in JSONB columns
func (l LocationSample) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements sql.Scanner for reading JSONB columns
func (l *LocationSample) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into LocationSample", src)
	}
}

const earthRadiusMeters = 6371000.0

// HaversineMeters calculates the great-circle distance between two
// GPS coordinates in meters
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// HaversineKm calculates the great-circle distance in kilometers
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineMeters(lat1, lon1, lat2, lon2) / 1000.0
}

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Location is any location-shaped JSONB value: client coordinates, a staff member's
// clock-in reading or a live "approaching" position shared from the mobile app.
// Every field is optional because upstream writers sometimes persist {} or half a
// payload; use livemap.IsValidLocation before trusting one.
type Location struct {
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	Accuracy         *float64 `json:"accuracy,omitempty"`           // GPS accuracy in meters
	DistanceFromSite *float64 `json:"distance_from_site,omitempty"` // Only on approaching locations
	RecordedAt       *string  `json:"recorded_at,omitempty"`        // Client-side ISO timestamp
	StaffID          *string  `json:"staff_id,omitempty"`
}

// NewLocation builds a location with both coordinates set
func NewLocation(lat, lng float64) *Location {
	return &Location{Latitude: &lat, Longitude: &lng}
}

// ParseLocation decodes a JSONB location column. SQL NULL and JSON null are
// absent and return nil. Any other payload that is not a location object
// decodes to an empty location, which never passes IsValidLocation.
func ParseLocation(raw []byte) *Location {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var l Location
	if err := json.Unmarshal(raw, &l); err != nil {
		return &Location{}
	}
	return &l
}

// Scan implements sql.Scanner for JSONB columns. A scanner cannot report
// absence, so JSON null scans to an empty location here; repositories that
// need to tell null from {} scan the raw bytes and use ParseLocation.
func (l *Location) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Location", src)
	}

	*l = Location{}
	if parsed := ParseLocation(raw); parsed != nil {
		*l = *parsed
	}
	return nil
}

// Value implements driver.Valuer for JSONB columns
func (l Location) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

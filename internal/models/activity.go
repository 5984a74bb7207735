package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ActivityCategory groups audit entries by the subsystem they describe
type ActivityCategory string

const (
	CategoryAuthentication ActivityCategory = "authentication"
	CategoryShift          ActivityCategory = "shift"
	CategoryBreak          ActivityCategory = "break"
	CategoryIncident       ActivityCategory = "incident"
	CategorySystem         ActivityCategory = "system"
)

// Details is a free-form key/value map stored as JSONB
type Details map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(Details{})
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for reading JSONB columns
func (d *Details) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		*d = Details{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Details", src)
	}
}

// ActivityLogEntry is one immutable audit record of a discrete user or
// system action. Entries are write-once: never mutated or deleted.
// An entry may describe the same real-world event as a shift or break
// transition but is structurally independent of it.
type ActivityLogEntry struct {
	ID         string           `json:"id" db:"id"`
	UserID     *string          `json:"userId,omitempty" db:"user_id"`
	UserName   *string          `json:"userName,omitempty" db:"user_name"`
	UserRole   *string          `json:"userRole,omitempty" db:"user_role"`
	Action     string           `json:"action" db:"action"`
	Category   ActivityCategory `json:"category" db:"category"`
	Details    Details          `json:"details" db:"details"`
	IPAddress  *string          `json:"ipAddress,omitempty" db:"ip_address"`
	DeviceType *string          `json:"deviceType,omitempty" db:"device_type"`
	Location   *LocationSample  `json:"location,omitempty" db:"location"`
	Timestamp  int64            `json:"timestamp" db:"timestamp"`
}

// HasLocation reports whether the entry carries a location sample
func (e *ActivityLogEntry) HasLocation() bool {
	return e.Location != nil
}

// ActivityFilters narrows an activity log query. All fields are optional
// and compose with AND semantics.
type ActivityFilters struct {
	Category       string
	Action         string
	UserID         string
	UserRole       string
	From           *int64 // Inclusive lower bound, unix seconds
	To             *int64 // Inclusive upper bound, unix seconds
	HasLocation    *bool
	LocationSource string
	City           string   // Case-insensitive substring match
	MinAccuracy    *float64 // Meters; bounds the error radius, not a quality label
	MaxAccuracy    *float64
}

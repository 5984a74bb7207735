package models

import (
	"math"
	"time"
)

// ShiftStatus represents the current status of a shift
type ShiftStatus string

const (
	ShiftStatusActive    ShiftStatus = "active"    // Worker is on duty
	ShiftStatusCompleted ShiftStatus = "completed" // Shift has ended
)

// BreakType distinguishes short breaks from lunch breaks
type BreakType string

const (
	BreakTypeBreak BreakType = "break"
	BreakTypeLunch BreakType = "lunch"
)

// ShiftRecord represents one continuous on-duty interval for a worker.
// At most one record per worker has a null EndTime at any instant.
type ShiftRecord struct {
	ID              string          `json:"id" db:"id"`
	WorkerID        string          `json:"workerId" db:"worker_id"`
	WorkerName      string          `json:"workerName" db:"worker_name"`
	WorkerEmail     string          `json:"workerEmail" db:"worker_email"`
	StartTime       int64           `json:"startTime" db:"start_time"`
	EndTime         *int64          `json:"endTime" db:"end_time"`
	DurationMinutes *int            `json:"durationMinutes" db:"duration_minutes"`
	Status          ShiftStatus     `json:"status" db:"status"`
	StartLocation   *LocationSample `json:"startLocation,omitempty" db:"start_location"`
	EndLocation     *LocationSample `json:"endLocation,omitempty" db:"end_location"`
	Notes           string          `json:"notes" db:"notes"`
	CreatedAt       int64           `json:"createdAt" db:"created_at"`
	UpdatedAt       int64           `json:"updatedAt" db:"updated_at"`

	// Assembled from the breaks table, not stored on the shift row
	CurrentBreak *BreakRecord  `json:"currentBreak"`
	BreakHistory []BreakRecord `json:"breakHistory"`

	// Derived diagnostic: straight-line distance between start and end fixes.
	// Computed at read time, never persisted.
	DistanceMeters *float64 `json:"distanceMeters,omitempty" db:"-"`
}

// BreakRecord is a sub-interval within a shift where the worker is off-task.
// At most one break per shift has a null EndTime; once closed it is immutable.
type BreakRecord struct {
	ID              int             `json:"id" db:"id"`
	ShiftID         string          `json:"-" db:"shift_id"`
	Type            BreakType       `json:"type" db:"type"`
	StartTime       int64           `json:"startTime" db:"start_time"`
	EndTime         *int64          `json:"endTime" db:"end_time"`
	DurationMinutes *int            `json:"durationMinutes" db:"duration_minutes"`
	StartLocation   *LocationSample `json:"startLocation,omitempty" db:"start_location"`
	EndLocation     *LocationSample `json:"endLocation,omitempty" db:"end_location"`
	CreatedAt       int64           `json:"-" db:"created_at"`
}

// ShiftEndResult contains details returned when a shift ends
type ShiftEndResult struct {
	ShiftID         string   `json:"shiftId"`
	DurationMinutes int      `json:"durationMinutes"`
	DistanceMeters  *float64 `json:"distanceMeters,omitempty"`
}

// BreakStatus is the derived read-only view of a worker's break state
type BreakStatus struct {
	OnBreak      bool          `json:"onBreak"`
	CurrentBreak *BreakRecord  `json:"currentBreak"`
	TodayBreaks  []BreakRecord `json:"todayBreaks"`
}

// DurationMinutes converts an interval between two unix-second timestamps
// into whole minutes, rounded half away from zero. Never negative.
func DurationMinutes(startUnix, endUnix int64) int {
	if endUnix < startUnix {
		return 0
	}
	return int(math.Round(float64(endUnix-startUnix) / 60.0))
}

// ShiftDistanceMeters returns the great-circle distance between a shift's
// start and end fixes, or nil when either side lacks coordinates.
func (s *ShiftRecord) ShiftDistanceMeters() *float64 {
	if !s.StartLocation.HasCoordinates() || !s.EndLocation.HasCoordinates() {
		return nil
	}
	d := HaversineMeters(
		*s.StartLocation.Latitude, *s.StartLocation.Longitude,
		*s.EndLocation.Latitude, *s.EndLocation.Longitude,
	)
	return &d
}

// IsActive returns true while the shift has not been ended
func (s *ShiftRecord) IsActive() bool {
	return s.EndTime == nil
}

// Elapsed returns the wall-clock time since the shift started
func (s *ShiftRecord) Elapsed() time.Duration {
	end := time.Now().Unix()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end < s.StartTime {
		return 0
	}
	return time.Duration(end-s.StartTime) * time.Second
}

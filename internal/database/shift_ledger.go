package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fieldtrack-backend/internal/models"
)

// validateLocation rejects malformed samples before they reach a lifecycle
// row. A nil sample is always acceptable.
func validateLocation(loc *models.LocationSample) error {
	if loc == nil {
		return nil
	}
	if err := loc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocationSample, err)
	}
	return nil
}

// StartShift opens a new shift for the worker. The insert is guarded by the
// "no open shift exists" predicate in a single statement, so two concurrent
// calls for the same worker cannot both succeed.
func StartShift(db *sqlx.DB, workerID, workerName, workerEmail string, startLocation *models.LocationSample) (*models.ShiftRecord, error) {
	if err := validateLocation(startLocation); err != nil {
		return nil, err
	}

	shiftID := uuid.New().String()
	now := time.Now().Unix()

	query := `
		INSERT INTO shifts (
			id, worker_id, worker_name, worker_email, status,
			start_time, start_location, created_at, updated_at
		)
		SELECT $1, $2, $3, $4, 'active', $5, $6, $5, $5
		WHERE NOT EXISTS (
			SELECT 1 FROM shifts WHERE worker_id = $2 AND end_time IS NULL
		)`

	result, err := db.Exec(query, shiftID, workerID, workerName, workerEmail, now, startLocation)
	if err != nil {
		return nil, fmt.Errorf("failed to start shift: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrDuplicateActiveShift
	}

	log.Printf("🟢 Shift started: %s (worker: %s)", shiftID, workerID)

	return &models.ShiftRecord{
		ID:            shiftID,
		WorkerID:      workerID,
		WorkerName:    workerName,
		WorkerEmail:   workerEmail,
		StartTime:     now,
		Status:        models.ShiftStatusActive,
		StartLocation: startLocation,
		BreakHistory:  []models.BreakRecord{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// EndShift closes the worker's active shift. An open break is force-closed
// first so the break invariant holds on the completed record. The shift
// update itself is a single conditional statement guarded by
// "end_time IS NULL".
func EndShift(db *sqlx.DB, workerID string, endLocation *models.LocationSample, notes string) (*models.ShiftEndResult, error) {
	if err := validateLocation(endLocation); err != nil {
		return nil, err
	}

	now := time.Now().Unix()

	// Force-close any open break on the active shift
	closeBreakQuery := `
		UPDATE breaks b
		SET end_time = $2,
		    duration_minutes = CAST(ROUND(($2 - b.start_time) / 60.0) AS INT)
		FROM shifts s
		WHERE b.shift_id = s.id
		  AND s.worker_id = $1
		  AND s.end_time IS NULL
		  AND b.end_time IS NULL`

	if result, err := db.Exec(closeBreakQuery, workerID, now); err == nil {
		if n, _ := result.RowsAffected(); n > 0 {
			log.Printf("⚠️  Force-closed open break for worker %s before ending shift", workerID)
		}
	} else {
		return nil, fmt.Errorf("failed to close open break: %w", err)
	}

	var row struct {
		ID              string                 `db:"id"`
		StartTime       int64                  `db:"start_time"`
		DurationMinutes int                    `db:"duration_minutes"`
		StartLocation   *models.LocationSample `db:"start_location"`
	}

	query := `
		UPDATE shifts
		SET status = 'completed',
		    end_time = $2,
		    duration_minutes = CAST(ROUND(($2 - start_time) / 60.0) AS INT),
		    end_location = $3,
		    notes = $4,
		    updated_at = $2
		WHERE worker_id = $1 AND end_time IS NULL
		RETURNING id, start_time, duration_minutes, start_location`

	err := db.Get(&row, query, workerID, now, endLocation, notes)
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveShift
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end shift: %w", err)
	}

	result := &models.ShiftEndResult{
		ShiftID:         row.ID,
		DurationMinutes: row.DurationMinutes,
	}

	// Derived diagnostic only: how far the worker moved between clock-in
	// and clock-out fixes
	if row.StartLocation.HasCoordinates() && endLocation.HasCoordinates() {
		d := models.HaversineMeters(
			*row.StartLocation.Latitude, *row.StartLocation.Longitude,
			*endLocation.Latitude, *endLocation.Longitude,
		)
		result.DistanceMeters = &d
	}

	log.Printf("🏁 Shift ended: %s (worker: %s, %dm)", row.ID, workerID, row.DurationMinutes)
	return result, nil
}

// GetActiveShift returns the worker's open shift with its break state
// attached, or nil when the worker is off duty.
func GetActiveShift(db *sqlx.DB, workerID string) (*models.ShiftRecord, error) {
	var shift models.ShiftRecord
	query := `SELECT * FROM shifts WHERE worker_id = $1 AND end_time IS NULL`

	err := db.Get(&shift, query, workerID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active shift: %w", err)
	}

	if err := attachBreaks(db, &shift); err != nil {
		return nil, err
	}
	shift.DistanceMeters = shift.ShiftDistanceMeters()

	return &shift, nil
}

// GetShiftByID retrieves a single shift with breaks attached
func GetShiftByID(db *sqlx.DB, shiftID string) (*models.ShiftRecord, error) {
	var shift models.ShiftRecord
	err := db.Get(&shift, `SELECT * FROM shifts WHERE id = $1`, shiftID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}

	if err := attachBreaks(db, &shift); err != nil {
		return nil, err
	}
	shift.DistanceMeters = shift.ShiftDistanceMeters()

	return &shift, nil
}

// GetShiftHistory returns the worker's shifts, most recent first, each
// annotated with break history and the start/end distance diagnostic.
func GetShiftHistory(db *sqlx.DB, workerID string, limit int) ([]models.ShiftRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var shifts []models.ShiftRecord
	query := `SELECT * FROM shifts
	          WHERE worker_id = $1
	          ORDER BY start_time DESC
	          LIMIT $2`

	err := db.Select(&shifts, query, workerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get shift history: %w", err)
	}

	for i := range shifts {
		if err := attachBreaks(db, &shifts[i]); err != nil {
			return nil, err
		}
		shifts[i].DistanceMeters = shifts[i].ShiftDistanceMeters()
	}

	return shifts, nil
}

// attachBreaks loads the shift's breaks and splits them into the open
// current break and the ordered, immutable history.
func attachBreaks(db *sqlx.DB, shift *models.ShiftRecord) error {
	var breaks []models.BreakRecord
	query := `SELECT * FROM breaks
	          WHERE shift_id = $1
	          ORDER BY start_time ASC`

	if err := db.Select(&breaks, query, shift.ID); err != nil {
		return fmt.Errorf("failed to get breaks for shift %s: %w", shift.ID, err)
	}

	shift.CurrentBreak = nil
	shift.BreakHistory = make([]models.BreakRecord, 0, len(breaks))
	for i := range breaks {
		if breaks[i].EndTime == nil {
			b := breaks[i]
			shift.CurrentBreak = &b
		} else {
			shift.BreakHistory = append(shift.BreakHistory, breaks[i])
		}
	}

	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"fieldtrack-backend/internal/models"
)

// StartBreak opens a break on the worker's active shift. The insert selects
// from the open shift and is guarded by "no open break exists", so the
// check and the write are one atomic statement.
func StartBreak(db *sqlx.DB, workerID string, breakType models.BreakType, startLocation *models.LocationSample) (*models.BreakRecord, error) {
	if breakType != models.BreakTypeBreak && breakType != models.BreakTypeLunch {
		return nil, fmt.Errorf("invalid break type: %q", breakType)
	}
	if err := validateLocation(startLocation); err != nil {
		return nil, err
	}

	now := time.Now().Unix()

	var row struct {
		ID      int    `db:"id"`
		ShiftID string `db:"shift_id"`
	}

	query := `
		INSERT INTO breaks (shift_id, type, start_time, start_location, created_at)
		SELECT s.id, $2, $3, $4, $3
		FROM shifts s
		WHERE s.worker_id = $1
		  AND s.end_time IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM breaks b WHERE b.shift_id = s.id AND b.end_time IS NULL
		  )
		RETURNING id, shift_id`

	err := db.Get(&row, query, workerID, breakType, now, startLocation)
	if err == sql.ErrNoRows {
		// The guard failed; figure out which predicate rejected the insert
		var activeCount int
		if err := db.Get(&activeCount,
			`SELECT COUNT(*) FROM shifts WHERE worker_id = $1 AND end_time IS NULL`,
			workerID); err != nil {
			return nil, fmt.Errorf("failed to check active shift: %w", err)
		}
		if activeCount == 0 {
			return nil, ErrNoActiveShift
		}
		return nil, ErrAlreadyOnBreak
	}
	if err != nil {
		return nil, fmt.Errorf("failed to start break: %w", err)
	}

	log.Printf("☕ Break started (%s) for worker %s on shift %s", breakType, workerID, row.ShiftID)

	return &models.BreakRecord{
		ID:            row.ID,
		ShiftID:       row.ShiftID,
		Type:          breakType,
		StartTime:     now,
		StartLocation: startLocation,
		CreatedAt:     now,
	}, nil
}

// EndBreak closes the worker's open break, computing its duration in whole
// minutes. The closed record joins the shift's immutable break history.
func EndBreak(db *sqlx.DB, workerID string, endLocation *models.LocationSample) (*models.BreakRecord, error) {
	if err := validateLocation(endLocation); err != nil {
		return nil, err
	}

	now := time.Now().Unix()

	var closed models.BreakRecord
	query := `
		UPDATE breaks b
		SET end_time = $2,
		    duration_minutes = CAST(ROUND(($2 - b.start_time) / 60.0) AS INT),
		    end_location = $3
		FROM shifts s
		WHERE b.shift_id = s.id
		  AND s.worker_id = $1
		  AND s.end_time IS NULL
		  AND b.end_time IS NULL
		RETURNING b.id, b.shift_id, b.type, b.start_time, b.end_time,
		          b.duration_minutes, b.start_location, b.end_location, b.created_at`

	err := db.Get(&closed, query, workerID, now, endLocation)
	if err == sql.ErrNoRows {
		return nil, ErrNoActiveBreak
	}
	if err != nil {
		return nil, fmt.Errorf("failed to end break: %w", err)
	}

	log.Printf("▶️  Break ended for worker %s (%dm)", workerID, derefInt(closed.DurationMinutes))
	return &closed, nil
}

// GetBreakStatus returns the worker's derived break state: whether a break
// is open, the open record, and all breaks started since UTC midnight.
func GetBreakStatus(db *sqlx.DB, workerID string) (*models.BreakStatus, error) {
	status := &models.BreakStatus{
		TodayBreaks: []models.BreakRecord{},
	}

	var current models.BreakRecord
	currentQuery := `
		SELECT b.* FROM breaks b
		JOIN shifts s ON b.shift_id = s.id
		WHERE s.worker_id = $1
		  AND s.end_time IS NULL
		  AND b.end_time IS NULL`

	err := db.Get(&current, currentQuery, workerID)
	if err == nil {
		status.OnBreak = true
		status.CurrentBreak = &current
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get current break: %w", err)
	}

	midnight := time.Now().UTC().Truncate(24 * time.Hour).Unix()

	todayQuery := `
		SELECT b.* FROM breaks b
		JOIN shifts s ON b.shift_id = s.id
		WHERE s.worker_id = $1
		  AND b.start_time >= $2
		ORDER BY b.start_time ASC`

	if err := db.Select(&status.TodayBreaks, todayQuery, workerID, midnight); err != nil {
		return nil, fmt.Errorf("failed to get today's breaks: %w", err)
	}

	return status, nil
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

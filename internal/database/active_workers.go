package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fieldtrack-backend/internal/models"
)

// ActiveWorker is the manager-dashboard view of one on-duty worker
type ActiveWorker struct {
	WorkerID          string                 `json:"workerId"`
	WorkerName        string                 `json:"workerName"`
	WorkerEmail       string                 `json:"workerEmail"`
	ShiftID           string                 `json:"shiftId"`
	ShiftStartTime    int64                  `json:"shiftStartTime"`
	OnBreak           bool                   `json:"onBreak"`
	CurrentBreak      *models.BreakRecord    `json:"currentBreak"`
	LastKnownLocation *models.LocationSample `json:"lastKnownLocation"`
	LastSeen          *int64                 `json:"lastSeen"`
}

// GetActiveWorkers lists every worker currently on duty, with break state
// and the most recent located audit entry per worker.
func GetActiveWorkers(db *sqlx.DB) ([]ActiveWorker, error) {
	var shifts []models.ShiftRecord
	query := `SELECT * FROM shifts
	          WHERE end_time IS NULL
	          ORDER BY start_time ASC`

	if err := db.Select(&shifts, query); err != nil {
		return nil, fmt.Errorf("failed to list active shifts: %w", err)
	}

	workers := make([]ActiveWorker, 0, len(shifts))
	for i := range shifts {
		shift := &shifts[i]
		if err := attachBreaks(db, shift); err != nil {
			return nil, err
		}

		worker := ActiveWorker{
			WorkerID:       shift.WorkerID,
			WorkerName:     shift.WorkerName,
			WorkerEmail:    shift.WorkerEmail,
			ShiftID:        shift.ID,
			ShiftStartTime: shift.StartTime,
			OnBreak:        shift.CurrentBreak != nil,
			CurrentBreak:   shift.CurrentBreak,
		}

		loc, seen, err := lastKnownLocation(db, shift.WorkerID)
		if err != nil {
			return nil, err
		}
		worker.LastKnownLocation = loc
		worker.LastSeen = seen

		workers = append(workers, worker)
	}

	return workers, nil
}

// lastKnownLocation returns the location and timestamp of the worker's most
// recent located audit entry, or nils when none exists
func lastKnownLocation(db *sqlx.DB, workerID string) (*models.LocationSample, *int64, error) {
	var row struct {
		Location  *models.LocationSample `db:"location"`
		Timestamp int64                  `db:"timestamp"`
	}

	query := `SELECT location, timestamp FROM activity_log
	          WHERE user_id = $1 AND location IS NOT NULL
	          ORDER BY timestamp DESC
	          LIMIT 1`

	err := db.Get(&row, query, workerID)
	if err == sql.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get last known location: %w", err)
	}

	return row.Location, &row.Timestamp, nil
}

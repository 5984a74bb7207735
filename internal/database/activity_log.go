package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"fieldtrack-backend/internal/models"
)

const (
	defaultActivityLimit = 100
	maxActivityLimit     = 1000
)

// AppendActivity stores one audit entry with a generated id and server
// timestamp. Beyond the column shape there is no validation: the audit
// trail never rejects an entry on business-state grounds.
func AppendActivity(db *sqlx.DB, entry *models.ActivityLogEntry) (*models.ActivityLogEntry, error) {
	stored := *entry
	stored.ID = uuid.New().String()
	stored.Timestamp = time.Now().Unix()
	if stored.Category == "" {
		stored.Category = models.CategorySystem
	}
	if stored.Details == nil {
		stored.Details = models.Details{}
	}

	query := `
		INSERT INTO activity_log (
			id, user_id, user_name, user_role, action, category,
			details, ip_address, device_type, location, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := db.Exec(query,
		stored.ID, stored.UserID, stored.UserName, stored.UserRole,
		stored.Action, stored.Category, stored.Details,
		stored.IPAddress, stored.DeviceType, stored.Location, stored.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append activity: %w", err)
	}

	return &stored, nil
}

// LogActivity is the best-effort wrapper around AppendActivity. An audit
// failure must never abort the operational flow that triggered it, so the
// entry is dropped with a warning instead of returning an error.
func LogActivity(db *sqlx.DB, entry *models.ActivityLogEntry) {
	if _, err := AppendActivity(db, entry); err != nil {
		log.Printf("⚠️  Dropped activity entry (%s/%s): %v", entry.Category, entry.Action, err)
	}
}

// QueryActivities returns entries matching the filters, newest first
func QueryActivities(db *sqlx.DB, filters models.ActivityFilters, limit int) ([]models.ActivityLogEntry, error) {
	query, args := buildActivityQuery(filters, limit)

	entries := []models.ActivityLogEntry{}
	if err := db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	return entries, nil
}

// buildActivityQuery composes the optional filters into a parameterized
// WHERE clause. Location predicates reach into the JSONB sample; accuracy
// bounds filter on the numeric error radius in meters.
func buildActivityQuery(filters models.ActivityFilters, limit int) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Category != "" {
		clauses = append(clauses, "category = "+arg(filters.Category))
	}
	if filters.Action != "" {
		clauses = append(clauses, "action = "+arg(filters.Action))
	}
	if filters.UserID != "" {
		clauses = append(clauses, "user_id = "+arg(filters.UserID))
	}
	if filters.UserRole != "" {
		clauses = append(clauses, "user_role = "+arg(filters.UserRole))
	}
	if filters.From != nil {
		clauses = append(clauses, "timestamp >= "+arg(*filters.From))
	}
	if filters.To != nil {
		clauses = append(clauses, "timestamp <= "+arg(*filters.To))
	}
	if filters.HasLocation != nil {
		if *filters.HasLocation {
			clauses = append(clauses, "location IS NOT NULL")
		} else {
			clauses = append(clauses, "location IS NULL")
		}
	}
	if filters.LocationSource != "" {
		clauses = append(clauses, "location->>'source' = "+arg(filters.LocationSource))
	}
	if filters.City != "" {
		clauses = append(clauses, "location->>'city' ILIKE "+arg("%"+filters.City+"%"))
	}
	if filters.MinAccuracy != nil {
		clauses = append(clauses, "(location->>'accuracy')::float >= "+arg(*filters.MinAccuracy))
	}
	if filters.MaxAccuracy != nil {
		clauses = append(clauses, "(location->>'accuracy')::float <= "+arg(*filters.MaxAccuracy))
	}

	query := "SELECT * FROM activity_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}
	query += " ORDER BY timestamp DESC LIMIT " + arg(limit)

	return query, args
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"fieldtrack-backend/internal/database"
	"fieldtrack-backend/internal/middleware"
	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// LogActivity appends one audit entry for the authenticated user. Identity
// fields come from the token, never from the request body.
// POST /api/activity/log
func LogActivity(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			Action   string                  `json:"action"`
			Category models.ActivityCategory `json:"category"`
			Details  models.Details          `json:"details"`
			Location *models.LocationSample  `json:"location,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Action == "" {
			utils.RespondError(w, http.StatusBadRequest, "action is required")
			return
		}
		if req.Location != nil {
			if err := req.Location.Validate(); err != nil {
				utils.RespondError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		entry := auditEntry(userClaims, r, req.Category, req.Action, req.Location, req.Details)

		stored, err := database.AppendActivity(db, entry)
		if err != nil {
			log.Printf("❌ Failed to append activity: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondData(w, stored)
	}
}

// GetActivities returns audit entries matching the query filters,
// newest first
// GET /api/manager/activity
func GetActivities(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filters := models.ActivityFilters{
			Category:       q.Get("category"),
			Action:         q.Get("action"),
			UserID:         q.Get("userId"),
			UserRole:       q.Get("userRole"),
			LocationSource: q.Get("locationSource"),
			City:           q.Get("city"),
		}

		if v := q.Get("from"); v != "" {
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				filters.From = &ts
			}
		}
		if v := q.Get("to"); v != "" {
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				filters.To = &ts
			}
		}
		if v := q.Get("hasLocation"); v != "" {
			hasLocation := v == "true"
			filters.HasLocation = &hasLocation
		}
		if v := q.Get("minAccuracy"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				filters.MinAccuracy = &f
			}
		}
		if v := q.Get("maxAccuracy"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				filters.MaxAccuracy = &f
			}
		}

		limit := 0
		if v := q.Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}

		entries, err := database.QueryActivities(db, filters, limit)
		if err != nil {
			log.Printf("❌ Failed to query activities: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		log.Printf("✅ Activity query returned %d entries", len(entries))
		utils.RespondData(w, entries)
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"fieldtrack-backend/internal/database"
	"fieldtrack-backend/internal/middleware"
	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/internal/websocket"
	"fieldtrack-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// respondLedgerError maps the ledger's business-rule errors onto HTTP codes
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrDuplicateActiveShift):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrAlreadyOnBreak):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrNoActiveShift):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNoActiveBreak):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrInvalidLocationSample):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("❌ Ledger error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "Database error")
	}
}

// broadcastStatusChange notifies connected managers of a duty transition
func broadcastStatusChange(hub *websocket.Hub, workerID, status string, shiftID string) {
	hub.BroadcastToRole("manager", map[string]interface{}{
		"type": "worker_status_change",
		"data": map[string]interface{}{
			"worker_id": workerID,
			"status":    status,
			"shift_id":  shiftID,
		},
	})
}

// auditEntry builds the audit-trail record for a lifecycle transition.
// The entry shares the caller's location sample but is structurally
// independent of the shift row.
func auditEntry(claims middleware.UserClaims, r *http.Request, category models.ActivityCategory, action string, loc *models.LocationSample, details models.Details) *models.ActivityLogEntry {
	ip := r.RemoteAddr
	entry := &models.ActivityLogEntry{
		UserID:    &claims.UserID,
		UserName:  &claims.Name,
		UserRole:  &claims.Role,
		Action:    action,
		Category:  category,
		Details:   details,
		IPAddress: &ip,
		Location:  loc,
	}
	if device := r.Header.Get("X-Device-Type"); device != "" {
		entry.DeviceType = &device
	}
	return entry
}

// StartShift clocks the authenticated worker in
// POST /api/worker/shift/start
func StartShift(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/worker/shift/start")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			StartLocation *models.LocationSample `json:"startLocation,omitempty"`
		}
		if r.Body != nil {
			// Body is optional; a bare POST starts an unlocated shift
			json.NewDecoder(r.Body).Decode(&req)
		}

		shift, err := database.StartShift(db, userClaims.UserID, userClaims.Name, userClaims.Email, req.StartLocation)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		// The audit entry is a separate, best-effort write; the clock-in
		// already succeeded
		database.LogActivity(db, auditEntry(userClaims, r, models.CategoryShift, "start_shift",
			req.StartLocation, models.Details{"shiftId": shift.ID}))

		broadcastStatusChange(hub, userClaims.UserID, "on_duty", shift.ID)

		log.Printf("📤 RESPONSE: 200 OK (shift %s)", shift.ID)
		utils.RespondData(w, shift)
	}
}

// EndShift clocks the authenticated worker out
// POST /api/worker/shift/end
func EndShift(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/worker/shift/end")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			EndLocation *models.LocationSample `json:"endLocation,omitempty"`
			Notes       string                 `json:"notes"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}

		result, err := database.EndShift(db, userClaims.UserID, req.EndLocation, req.Notes)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		details := models.Details{
			"shiftId":         result.ShiftID,
			"durationMinutes": result.DurationMinutes,
		}
		if result.DistanceMeters != nil {
			details["distanceMeters"] = *result.DistanceMeters
		}
		database.LogActivity(db, auditEntry(userClaims, r, models.CategoryShift, "end_shift",
			req.EndLocation, details))

		broadcastStatusChange(hub, userClaims.UserID, "off_duty", result.ShiftID)

		log.Printf("📤 RESPONSE: 200 OK (shift %s, %dm)", result.ShiftID, result.DurationMinutes)
		utils.RespondData(w, result)
	}
}

// GetCurrentShift returns the worker's active shift, or null when off duty
// GET /api/worker/shift/current
func GetCurrentShift(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		shift, err := database.GetActiveShift(db, userClaims.UserID)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		if shift == nil {
			utils.RespondData(w, nil)
			return
		}
		utils.RespondData(w, shift)
	}
}

// GetShiftHistory returns the worker's shifts, most recent first
// GET /api/worker/shift-history?limit=50
func GetShiftHistory(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		limit := 0
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil {
				limit = parsed
			}
		}

		shifts, err := database.GetShiftHistory(db, userClaims.UserID, limit)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		log.Printf("✅ Found %d shifts in history for %s", len(shifts), userClaims.Email)
		utils.RespondData(w, shifts)
	}
}

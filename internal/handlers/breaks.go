package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"fieldtrack-backend/internal/database"
	"fieldtrack-backend/internal/middleware"
	"fieldtrack-backend/internal/models"
	"fieldtrack-backend/internal/websocket"
	"fieldtrack-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// StartBreak opens a break on the worker's active shift
// POST /api/worker/break/start
func StartBreak(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/worker/break/start")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			Type          models.BreakType       `json:"type"`
			StartLocation *models.LocationSample `json:"startLocation,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Type == "" {
			req.Type = models.BreakTypeBreak
		}

		breakRecord, err := database.StartBreak(db, userClaims.UserID, req.Type, req.StartLocation)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		database.LogActivity(db, auditEntry(userClaims, r, models.CategoryBreak, "start_break",
			req.StartLocation, models.Details{"breakType": string(req.Type)}))

		broadcastStatusChange(hub, userClaims.UserID, "on_break", breakRecord.ShiftID)

		log.Printf("📤 RESPONSE: 200 OK (%s break on shift %s)", req.Type, breakRecord.ShiftID)
		utils.RespondData(w, breakRecord)
	}
}

// EndBreak closes the worker's open break
// POST /api/worker/break/end
func EndBreak(db *sqlx.DB, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("📥 REQUEST: POST /api/worker/break/end")

		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req struct {
			EndLocation *models.LocationSample `json:"endLocation,omitempty"`
		}
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&req)
		}

		closed, err := database.EndBreak(db, userClaims.UserID, req.EndLocation)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		details := models.Details{"breakType": string(closed.Type)}
		if closed.DurationMinutes != nil {
			details["durationMinutes"] = *closed.DurationMinutes
		}
		database.LogActivity(db, auditEntry(userClaims, r, models.CategoryBreak, "end_break",
			req.EndLocation, details))

		broadcastStatusChange(hub, userClaims.UserID, "on_duty", closed.ShiftID)

		utils.RespondData(w, closed)
	}
}

// GetBreakStatus returns the worker's derived break state
// GET /api/worker/break/status
func GetBreakStatus(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userClaims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		status, err := database.GetBreakStatus(db, userClaims.UserID)
		if err != nil {
			respondLedgerError(w, err)
			return
		}

		utils.RespondData(w, status)
	}
}

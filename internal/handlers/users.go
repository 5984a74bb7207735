package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fieldtrack-backend/internal/database"
	"fieldtrack-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// CreateUser registers a new account. Manager-only.
// POST /api/manager/users
func CreateUser(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.Name == "" || req.Email == "" || req.Password == "" {
			utils.RespondError(w, http.StatusBadRequest, "name, email, and password are required")
			return
		}
		if req.Role == "" {
			req.Role = "worker"
		}

		user, err := database.CreateUser(db, req.Name, req.Email, req.Password, req.Role)
		if err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				utils.RespondError(w, http.StatusConflict, err.Error())
				return
			}
			log.Printf("❌ Failed to create user: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		response := user.ToUserResponse()
		utils.RespondData(w, response)
	}
}

// GetWorkers lists all worker accounts. Manager-only.
// GET /api/manager/workers
func GetWorkers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workers, err := database.GetUsersByRole(db, "worker")
		if err != nil {
			log.Printf("❌ Failed to list workers: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondData(w, workers)
	}
}

// GetActiveWorkers lists workers currently on duty with break state and
// last known location. Manager-only.
// GET /api/manager/active-workers
func GetActiveWorkers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		workers, err := database.GetActiveWorkers(db)
		if err != nil {
			log.Printf("❌ Failed to list active workers: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		log.Printf("✅ %d workers currently on duty", len(workers))
		utils.RespondData(w, workers)
	}
}

package handlers

import (
	"log"
	"net/http"
	"strconv"

	"fieldtrack-backend/internal/database"
	"fieldtrack-backend/pkg/utils"

	"github.com/jmoiron/sqlx"
)

// GetActivityStats returns activity volume and the category breakdown
// GET /api/manager/analytics/activity-stats?range=24h
func GetActivityStats(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeRange := r.URL.Query().Get("range")

		stats, err := database.ActivityStats(db, timeRange)
		if err != nil {
			log.Printf("❌ Failed to compute activity stats: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondData(w, stats)
	}
}

// GetTopActiveUsers returns the per-user activity ranking
// GET /api/manager/analytics/top-users?range=24h&limit=10
func GetTopActiveUsers(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeRange := r.URL.Query().Get("range")

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				limit = parsed
			}
		}

		users, err := database.TopActiveUsers(db, limit, timeRange)
		if err != nil {
			log.Printf("❌ Failed to rank top users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondData(w, users)
	}
}

// GetLocationStats returns location coverage, sources, cities, and accuracy
// GET /api/manager/analytics/location-stats?range=24h
func GetLocationStats(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeRange := r.URL.Query().Get("range")

		stats, err := database.LocationStats(db, timeRange)
		if err != nil {
			log.Printf("❌ Failed to compute location stats: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondData(w, stats)
	}
}

// GetLocationTrends returns coverage per time bucket
// GET /api/manager/analytics/location-trends?range=7d&interval=day
func GetLocationTrends(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeRange := r.URL.Query().Get("range")
		interval := r.URL.Query().Get("interval")

		trends, err := database.LocationTrends(db, timeRange, interval)
		if err != nil {
			log.Printf("❌ Failed to compute location trends: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		utils.RespondData(w, trends)
	}
}

// GetActivitiesInArea returns located entries within a radius of a point
// GET /api/manager/analytics/activities-in-area?lat=..&lon=..&radiusKm=..&range=24h
func GetActivitiesInArea(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			utils.RespondError(w, http.StatusBadRequest, "lat and lon are required")
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			utils.RespondError(w, http.StatusBadRequest, "lat/lon out of range")
			return
		}

		radiusKm := 5.0
		if v := q.Get("radiusKm"); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil || parsed <= 0 {
				utils.RespondError(w, http.StatusBadRequest, "radiusKm must be a positive number")
				return
			}
			radiusKm = parsed
		}

		entries, err := database.ActivitiesInArea(db, lat, lon, radiusKm, q.Get("range"))
		if err != nil {
			log.Printf("❌ Failed to query activities in area: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Database error")
			return
		}

		log.Printf("✅ Found %d activities within %.1fkm of (%.4f, %.4f)", len(entries), radiusKm, lat, lon)
		utils.RespondData(w, entries)
	}
}

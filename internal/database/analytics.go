package database

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"fieldtrack-backend/internal/models"
)

// Supported analytics time ranges. Unrecognized values fall back to 24h.
const (
	TimeRange1h  = "1h"
	TimeRange24h = "24h"
	TimeRange7d  = "7d"
	TimeRange30d = "30d"
)

// CategoryStat is one row of the per-category breakdown
type CategoryStat struct {
	Category     string `json:"category"`
	Count        int    `json:"count"`
	LastActivity int64  `json:"lastActivity"`
}

// ActivityStatsResult summarizes activity volume for a time range
type ActivityStatsResult struct {
	TotalActivities   int            `json:"totalActivities"`
	UniqueUsers       int            `json:"uniqueUsers"`
	CategoryBreakdown []CategoryStat `json:"categoryBreakdown"`
}

// UserActivitySummary is one row of the top-active-users ranking
type UserActivitySummary struct {
	UserID            string                 `json:"userId"`
	UserName          string                 `json:"userName,omitempty"`
	ActivityCount     int                    `json:"activityCount"`
	LastActivity      int64                  `json:"lastActivity"`
	CategoriesSeen    []string               `json:"categoriesSeen"`
	ActionsSeen       []string               `json:"actionsSeen"`
	LocatedCount      int                    `json:"locatedCount"`
	LastKnownLocation *models.LocationSample `json:"lastKnownLocation"`
}

// CityCount is one entry of the top-cities ranking
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// LocationStatsResult summarizes location coverage for a time range
type LocationStatsResult struct {
	TotalActivities         int            `json:"totalActivities"`
	ActivitiesWithLocation  int            `json:"activitiesWithLocation"`
	LocationCoveragePercent float64        `json:"locationCoveragePercent"`
	SourceBreakdown         map[string]int `json:"sourceBreakdown"`
	TopCities               []CityCount    `json:"topCities"`
	AccuracyLevelBuckets    map[string]int `json:"accuracyLevelBuckets"`
}

// TrendBucket is one time bucket of the location coverage trend
type TrendBucket struct {
	Date                   string  `json:"date"`
	TotalActivities        int     `json:"totalActivities"`
	ActivitiesWithLocation int     `json:"activitiesWithLocation"`
	CoveragePercent        float64 `json:"coveragePercent"`
}

// resolveTimeRange maps a named range onto a duration, defaulting to 24h
func resolveTimeRange(timeRange string) (time.Duration, string) {
	switch timeRange {
	case TimeRange1h:
		return time.Hour, TimeRange1h
	case TimeRange7d:
		return 7 * 24 * time.Hour, TimeRange7d
	case TimeRange30d:
		return 30 * 24 * time.Hour, TimeRange30d
	default:
		return 24 * time.Hour, TimeRange24h
	}
}

// fetchActivitiesSince loads entries at or after the cutoff in ascending
// timestamp order, so grouping helpers see insertion order.
func fetchActivitiesSince(db *sqlx.DB, cutoff int64) ([]models.ActivityLogEntry, error) {
	entries := []models.ActivityLogEntry{}
	query := `SELECT * FROM activity_log
	          WHERE timestamp >= $1
	          ORDER BY timestamp ASC`

	if err := db.Select(&entries, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	return entries, nil
}

// ActivityStats returns total volume, unique users, and the per-category
// breakdown for the given time range
func ActivityStats(db *sqlx.DB, timeRange string) (*ActivityStatsResult, error) {
	dur, _ := resolveTimeRange(timeRange)
	entries, err := fetchActivitiesSince(db, time.Now().Add(-dur).Unix())
	if err != nil {
		return nil, err
	}
	return computeActivityStats(entries), nil
}

// TopActiveUsers returns users ranked by activity count within the range
func TopActiveUsers(db *sqlx.DB, limit int, timeRange string) ([]UserActivitySummary, error) {
	dur, _ := resolveTimeRange(timeRange)
	entries, err := fetchActivitiesSince(db, time.Now().Add(-dur).Unix())
	if err != nil {
		return nil, err
	}
	return rankTopUsers(entries, limit), nil
}

// LocationStats returns location coverage, sources, cities, and accuracy
// buckets for the given time range
func LocationStats(db *sqlx.DB, timeRange string) (*LocationStatsResult, error) {
	dur, _ := resolveTimeRange(timeRange)
	entries, err := fetchActivitiesSince(db, time.Now().Add(-dur).Unix())
	if err != nil {
		return nil, err
	}
	return computeLocationStats(entries), nil
}

// LocationTrends returns coverage per time bucket: hourly for the short
// ranges, daily for 7d/30d. An explicit interval ("hour"/"day") overrides.
func LocationTrends(db *sqlx.DB, timeRange, interval string) ([]TrendBucket, error) {
	dur, resolved := resolveTimeRange(timeRange)
	entries, err := fetchActivitiesSince(db, time.Now().Add(-dur).Unix())
	if err != nil {
		return nil, err
	}

	if interval != "hour" && interval != "day" {
		if resolved == TimeRange1h || resolved == TimeRange24h {
			interval = "hour"
		} else {
			interval = "day"
		}
	}

	return computeLocationTrends(entries, interval), nil
}

// ActivitiesInArea returns entries whose location lies within radiusKm of
// the center point, by great-circle containment, newest first
func ActivitiesInArea(db *sqlx.DB, centerLat, centerLon, radiusKm float64, timeRange string) ([]models.ActivityLogEntry, error) {
	dur, _ := resolveTimeRange(timeRange)
	entries, err := fetchActivitiesSince(db, time.Now().Add(-dur).Unix())
	if err != nil {
		return nil, err
	}
	return filterWithinRadius(entries, centerLat, centerLon, radiusKm), nil
}

// ── pure aggregation helpers ──────────────────────────────────────────────
// These operate on entry slices so behavior is defined for empty input and
// entries with missing location fields (counted as "no location", never an
// error).

func computeActivityStats(entries []models.ActivityLogEntry) *ActivityStatsResult {
	users := map[string]struct{}{}
	counts := map[string]int{}
	lastSeen := map[string]int64{}
	var order []string

	for i := range entries {
		e := &entries[i]
		if e.UserID != nil {
			users[*e.UserID] = struct{}{}
		}
		cat := string(e.Category)
		if _, ok := counts[cat]; !ok {
			order = append(order, cat)
		}
		counts[cat]++
		if e.Timestamp > lastSeen[cat] {
			lastSeen[cat] = e.Timestamp
		}
	}

	breakdown := make([]CategoryStat, 0, len(order))
	for _, cat := range order {
		breakdown = append(breakdown, CategoryStat{
			Category:     cat,
			Count:        counts[cat],
			LastActivity: lastSeen[cat],
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Count > breakdown[j].Count
	})

	return &ActivityStatsResult{
		TotalActivities:   len(entries),
		UniqueUsers:       len(users),
		CategoryBreakdown: breakdown,
	}
}

func rankTopUsers(entries []models.ActivityLogEntry, limit int) []UserActivitySummary {
	if limit <= 0 {
		limit = 10
	}

	byUser := map[string]*UserActivitySummary{}
	catsSeen := map[string]map[string]struct{}{}
	actsSeen := map[string]map[string]struct{}{}
	var order []string

	for i := range entries {
		e := &entries[i]
		if e.UserID == nil {
			continue
		}
		id := *e.UserID

		summary, ok := byUser[id]
		if !ok {
			summary = &UserActivitySummary{
				UserID:         id,
				CategoriesSeen: []string{},
				ActionsSeen:    []string{},
			}
			byUser[id] = summary
			catsSeen[id] = map[string]struct{}{}
			actsSeen[id] = map[string]struct{}{}
			order = append(order, id)
		}

		summary.ActivityCount++
		if e.UserName != nil && summary.UserName == "" {
			summary.UserName = *e.UserName
		}
		if e.Timestamp > summary.LastActivity {
			summary.LastActivity = e.Timestamp
		}
		if cat := string(e.Category); cat != "" {
			if _, seen := catsSeen[id][cat]; !seen {
				catsSeen[id][cat] = struct{}{}
				summary.CategoriesSeen = append(summary.CategoriesSeen, cat)
			}
		}
		if _, seen := actsSeen[id][e.Action]; !seen {
			actsSeen[id][e.Action] = struct{}{}
			summary.ActionsSeen = append(summary.ActionsSeen, e.Action)
		}
		if e.HasLocation() {
			summary.LocatedCount++
			// Entries arrive in ascending timestamp order, so the last
			// located one wins
			summary.LastKnownLocation = e.Location
		}
	}

	ranked := make([]UserActivitySummary, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *byUser[id])
	}
	// Stable sort keeps first-seen order for equal counts
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ActivityCount > ranked[j].ActivityCount
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func computeLocationStats(entries []models.ActivityLogEntry) *LocationStatsResult {
	result := &LocationStatsResult{
		TotalActivities:      len(entries),
		SourceBreakdown:      map[string]int{},
		TopCities:            []CityCount{},
		AccuracyLevelBuckets: map[string]int{},
	}

	cityCounts := map[string]int{}
	cityDisplay := map[string]string{}
	var cityOrder []string

	for i := range entries {
		e := &entries[i]
		if !e.HasLocation() {
			continue
		}
		result.ActivitiesWithLocation++
		loc := e.Location

		if loc.Source != "" {
			result.SourceBreakdown[string(loc.Source)]++
		}
		if loc.Accuracy != nil {
			result.AccuracyLevelBuckets[accuracyLevel(*loc.Accuracy)]++
		}
		if loc.City != nil {
			city := strings.TrimSpace(*loc.City)
			if city != "" {
				key := strings.ToLower(city)
				if _, ok := cityCounts[key]; !ok {
					cityOrder = append(cityOrder, key)
					cityDisplay[key] = city
				}
				cityCounts[key]++
			}
		}
	}

	result.LocationCoveragePercent = coveragePercent(result.ActivitiesWithLocation, result.TotalActivities)

	for _, key := range cityOrder {
		result.TopCities = append(result.TopCities, CityCount{
			City:  cityDisplay[key],
			Count: cityCounts[key],
		})
	}
	sort.SliceStable(result.TopCities, func(i, j int) bool {
		return result.TopCities[i].Count > result.TopCities[j].Count
	})
	if len(result.TopCities) > 10 {
		result.TopCities = result.TopCities[:10]
	}

	return result
}

func computeLocationTrends(entries []models.ActivityLogEntry, interval string) []TrendBucket {
	layout := "2006-01-02"
	if interval == "hour" {
		layout = "2006-01-02 15:00"
	}

	totals := map[string]int{}
	located := map[string]int{}

	for i := range entries {
		e := &entries[i]
		key := time.Unix(e.Timestamp, 0).UTC().Format(layout)
		totals[key]++
		if e.HasLocation() {
			located[key]++
		}
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	// Both layouts sort lexicographically in chronological order
	sort.Strings(keys)

	buckets := make([]TrendBucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, TrendBucket{
			Date:                   key,
			TotalActivities:        totals[key],
			ActivitiesWithLocation: located[key],
			CoveragePercent:        coveragePercent(located[key], totals[key]),
		})
	}
	return buckets
}

func filterWithinRadius(entries []models.ActivityLogEntry, centerLat, centerLon, radiusKm float64) []models.ActivityLogEntry {
	matched := []models.ActivityLogEntry{}
	for i := range entries {
		e := &entries[i]
		if !e.Location.HasCoordinates() {
			continue
		}
		d := models.HaversineKm(*e.Location.Latitude, *e.Location.Longitude, centerLat, centerLon)
		if d <= radiusKm {
			matched = append(matched, entries[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})
	return matched
}

// coveragePercent is the located share as a percentage, one decimal place,
// defined as 0 for an empty set
func coveragePercent(located, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundTo1dp(float64(located) / float64(total) * 100)
}

// accuracyLevel maps a GPS error radius in meters onto a quality label.
// Smaller radius means a more precise fix.
func accuracyLevel(meters float64) string {
	switch {
	case meters < 10:
		return "Very High"
	case meters < 100:
		return "High"
	case meters < 1000:
		return "Medium"
	case meters < 10000:
		return "Low"
	default:
		return "Very Low"
	}
}

func roundTo1dp(x float64) float64 {
	return math.Round(x*10) / 10
}

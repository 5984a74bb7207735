package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack-backend/internal/models"
)

func strPtr(s string) *string { return &s }
func fPtr(v float64) *float64 { return &v }

func locatedEntry(userID string, ts int64, lat, lon float64) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		UserID:    strPtr(userID),
		Action:    "start_shift",
		Category:  models.CategoryShift,
		Timestamp: ts,
		Location: &models.LocationSample{
			Timestamp: ts,
			Source:    models.LocationSourceGPS,
			Latitude:  fPtr(lat),
			Longitude: fPtr(lon),
		},
	}
}

func bareEntry(userID string, ts int64, category models.ActivityCategory, action string) models.ActivityLogEntry {
	return models.ActivityLogEntry{
		UserID:    strPtr(userID),
		Action:    action,
		Category:  category,
		Timestamp: ts,
	}
}

func TestComputeActivityStats(t *testing.T) {
	entries := []models.ActivityLogEntry{
		bareEntry("u1", 100, models.CategoryShift, "start_shift"),
		bareEntry("u1", 200, models.CategoryBreak, "start_break"),
		bareEntry("u2", 300, models.CategoryShift, "start_shift"),
		bareEntry("u2", 400, models.CategoryShift, "end_shift"),
	}

	stats := computeActivityStats(entries)
	assert.Equal(t, 4, stats.TotalActivities)
	assert.Equal(t, 2, stats.UniqueUsers)

	require.Len(t, stats.CategoryBreakdown, 2)
	assert.Equal(t, "shift", stats.CategoryBreakdown[0].Category)
	assert.Equal(t, 3, stats.CategoryBreakdown[0].Count)
	assert.Equal(t, int64(400), stats.CategoryBreakdown[0].LastActivity)
	assert.Equal(t, "break", stats.CategoryBreakdown[1].Category)
	assert.Equal(t, 1, stats.CategoryBreakdown[1].Count)
}

func TestComputeActivityStatsEmpty(t *testing.T) {
	stats := computeActivityStats(nil)
	assert.Equal(t, 0, stats.TotalActivities)
	assert.Equal(t, 0, stats.UniqueUsers)
	assert.Empty(t, stats.CategoryBreakdown)
}

func TestRankTopUsers(t *testing.T) {
	entries := []models.ActivityLogEntry{
		bareEntry("u1", 100, models.CategoryShift, "start_shift"),
		bareEntry("u2", 150, models.CategoryShift, "start_shift"),
		bareEntry("u2", 200, models.CategoryBreak, "start_break"),
		bareEntry("u2", 250, models.CategoryBreak, "end_break"),
		locatedEntry("u1", 300, 32.7767, -96.7970),
	}

	ranked := rankTopUsers(entries, 10)
	require.Len(t, ranked, 2)

	assert.Equal(t, "u2", ranked[0].UserID)
	assert.Equal(t, 3, ranked[0].ActivityCount)
	assert.ElementsMatch(t, []string{"shift", "break"}, ranked[0].CategoriesSeen)
	assert.Equal(t, 0, ranked[0].LocatedCount)
	assert.Nil(t, ranked[0].LastKnownLocation)

	assert.Equal(t, "u1", ranked[1].UserID)
	assert.Equal(t, 2, ranked[1].ActivityCount)
	assert.Equal(t, int64(300), ranked[1].LastActivity)
	assert.Equal(t, 1, ranked[1].LocatedCount)
	require.NotNil(t, ranked[1].LastKnownLocation)
	assert.Equal(t, 32.7767, *ranked[1].LastKnownLocation.Latitude)
}

func TestRankTopUsersTieKeepsFirstSeen(t *testing.T) {
	entries := []models.ActivityLogEntry{
		bareEntry("u1", 100, models.CategoryShift, "start_shift"),
		bareEntry("u2", 200, models.CategoryShift, "start_shift"),
	}

	ranked := rankTopUsers(entries, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "u1", ranked[0].UserID)
	assert.Equal(t, "u2", ranked[1].UserID)
}

func TestRankTopUsersLimit(t *testing.T) {
	entries := []models.ActivityLogEntry{
		bareEntry("u1", 100, models.CategoryShift, "start_shift"),
		bareEntry("u2", 200, models.CategoryShift, "start_shift"),
		bareEntry("u3", 300, models.CategoryShift, "start_shift"),
	}

	ranked := rankTopUsers(entries, 2)
	assert.Len(t, ranked, 2)

	// Entries without a user id are skipped, not counted
	anonymous := []models.ActivityLogEntry{{Action: "boot", Category: models.CategorySystem, Timestamp: 50}}
	assert.Empty(t, rankTopUsers(anonymous, 10))
}

func TestComputeLocationStats(t *testing.T) {
	dallas := "Dallas"
	dallasLower := "dallas"
	plano := "Plano"

	entries := []models.ActivityLogEntry{
		bareEntry("u1", 100, models.CategoryShift, "start_shift"),
		{
			UserID: strPtr("u1"), Action: "a", Category: models.CategoryShift, Timestamp: 200,
			Location: &models.LocationSample{
				Timestamp: 200, Source: models.LocationSourceGPS,
				Accuracy: fPtr(5), City: &dallas,
			},
		},
		{
			UserID: strPtr("u2"), Action: "b", Category: models.CategoryShift, Timestamp: 300,
			Location: &models.LocationSample{
				Timestamp: 300, Source: models.LocationSourceGPS,
				Accuracy: fPtr(50), City: &dallasLower,
			},
		},
		{
			UserID: strPtr("u2"), Action: "c", Category: models.CategoryShift, Timestamp: 400,
			Location: &models.LocationSample{
				Timestamp: 400, Source: models.LocationSourceIP,
				Accuracy: fPtr(5000), City: &plano,
			},
		},
	}

	stats := computeLocationStats(entries)
	assert.Equal(t, 4, stats.TotalActivities)
	assert.Equal(t, 3, stats.ActivitiesWithLocation)
	assert.Equal(t, 75.0, stats.LocationCoveragePercent)

	assert.Equal(t, 2, stats.SourceBreakdown["gps"])
	assert.Equal(t, 1, stats.SourceBreakdown["ip"])

	// Cities group case-insensitively, keeping the first-seen spelling
	require.Len(t, stats.TopCities, 2)
	assert.Equal(t, "Dallas", stats.TopCities[0].City)
	assert.Equal(t, 2, stats.TopCities[0].Count)
	assert.Equal(t, "Plano", stats.TopCities[1].City)

	assert.Equal(t, 1, stats.AccuracyLevelBuckets["Very High"])
	assert.Equal(t, 1, stats.AccuracyLevelBuckets["High"])
	assert.Equal(t, 1, stats.AccuracyLevelBuckets["Low"])
}

func TestComputeLocationStatsEmpty(t *testing.T) {
	stats := computeLocationStats(nil)
	assert.Equal(t, 0, stats.TotalActivities)
	assert.Equal(t, 0, stats.ActivitiesWithLocation)
	assert.Equal(t, 0.0, stats.LocationCoveragePercent)
	assert.Empty(t, stats.TopCities)
}

func TestComputeLocationTrendsDaily(t *testing.T) {
	// 2023-11-14 and 2023-11-15 UTC
	day1 := int64(1700000000) // 2023-11-14 22:13:20 UTC
	day2 := int64(1700086400)

	entries := []models.ActivityLogEntry{
		bareEntry("u1", day1, models.CategoryShift, "a"),
		locatedEntry("u1", day1+60, 32.7, -96.8),
		bareEntry("u1", day2, models.CategoryShift, "b"),
	}

	buckets := computeLocationTrends(entries, "day")
	require.Len(t, buckets, 2)

	assert.Equal(t, "2023-11-14", buckets[0].Date)
	assert.Equal(t, 2, buckets[0].TotalActivities)
	assert.Equal(t, 1, buckets[0].ActivitiesWithLocation)
	assert.Equal(t, 50.0, buckets[0].CoveragePercent)

	assert.Equal(t, "2023-11-15", buckets[1].Date)
	assert.Equal(t, 1, buckets[1].TotalActivities)
	assert.Equal(t, 0.0, buckets[1].CoveragePercent)
}

func TestComputeLocationTrendsHourly(t *testing.T) {
	base := int64(1700000000)
	entries := []models.ActivityLogEntry{
		locatedEntry("u1", base, 32.7, -96.8),
		bareEntry("u1", base+3600, models.CategoryShift, "a"),
	}

	buckets := computeLocationTrends(entries, "hour")
	require.Len(t, buckets, 2)
	assert.Equal(t, "2023-11-14 22:00", buckets[0].Date)
	assert.Equal(t, "2023-11-14 23:00", buckets[1].Date)
	assert.True(t, buckets[0].Date < buckets[1].Date)
}

func TestFilterWithinRadius(t *testing.T) {
	center := struct{ lat, lon float64 }{32.7767, -96.7970}

	// 0.009 degrees of latitude is roughly 1km
	near := locatedEntry("u1", 100, center.lat+0.0045, center.lon) // ~0.5km
	far := locatedEntry("u2", 200, center.lat+0.018, center.lon)   // ~2km
	unlocated := bareEntry("u3", 300, models.CategoryShift, "a")

	matched := filterWithinRadius(
		[]models.ActivityLogEntry{near, far, unlocated},
		center.lat, center.lon, 1.0,
	)

	require.Len(t, matched, 1)
	assert.Equal(t, "u1", *matched[0].UserID)
}

func TestFilterWithinRadiusNewestFirst(t *testing.T) {
	center := struct{ lat, lon float64 }{32.7767, -96.7970}
	older := locatedEntry("u1", 100, center.lat, center.lon)
	newer := locatedEntry("u2", 500, center.lat+0.001, center.lon)

	matched := filterWithinRadius([]models.ActivityLogEntry{older, newer}, center.lat, center.lon, 5.0)
	require.Len(t, matched, 2)
	assert.Equal(t, int64(500), matched[0].Timestamp)
	assert.Equal(t, int64(100), matched[1].Timestamp)
}

func TestCoveragePercent(t *testing.T) {
	assert.Equal(t, 0.0, coveragePercent(0, 0))
	assert.Equal(t, 0.0, coveragePercent(5, 0))
	assert.Equal(t, 100.0, coveragePercent(10, 10))
	assert.Equal(t, 50.0, coveragePercent(1, 2))
	assert.Equal(t, 33.3, coveragePercent(1, 3))
	assert.Equal(t, 66.7, coveragePercent(2, 3))
}

func TestAccuracyLevel(t *testing.T) {
	assert.Equal(t, "Very High", accuracyLevel(0))
	assert.Equal(t, "Very High", accuracyLevel(9.9))
	assert.Equal(t, "High", accuracyLevel(10))
	assert.Equal(t, "High", accuracyLevel(99))
	assert.Equal(t, "Medium", accuracyLevel(100))
	assert.Equal(t, "Low", accuracyLevel(1000))
	assert.Equal(t, "Very Low", accuracyLevel(10000))
	assert.Equal(t, "Very Low", accuracyLevel(250000))
}

func TestResolveTimeRange(t *testing.T) {
	d, name := resolveTimeRange("1h")
	assert.Equal(t, "1h", name)
	assert.Equal(t, float64(1), d.Hours())

	d, name = resolveTimeRange("7d")
	assert.Equal(t, "7d", name)
	assert.Equal(t, float64(7*24), d.Hours())

	d, name = resolveTimeRange("30d")
	assert.Equal(t, "30d", name)
	assert.Equal(t, float64(30*24), d.Hours())

	// Unknown ranges fall back to 24h
	d, name = resolveTimeRange("")
	assert.Equal(t, "24h", name)
	assert.Equal(t, float64(24), d.Hours())

	_, name = resolveTimeRange("90d")
	assert.Equal(t, "24h", name)
}

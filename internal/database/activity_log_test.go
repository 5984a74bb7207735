package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack-backend/internal/models"
)

func TestBuildActivityQueryNoFilters(t *testing.T) {
	query, args := buildActivityQuery(models.ActivityFilters{}, 0)

	assert.Equal(t, "SELECT * FROM activity_log ORDER BY timestamp DESC LIMIT $1", query)
	require.Len(t, args, 1)
	assert.Equal(t, defaultActivityLimit, args[0])
}

func TestBuildActivityQueryComposesFilters(t *testing.T) {
	from := int64(1000)
	to := int64(2000)

	query, args := buildActivityQuery(models.ActivityFilters{
		Category: "shift",
		Action:   "start_shift",
		UserID:   "u1",
		From:     &from,
		To:       &to,
	}, 25)

	assert.Contains(t, query, "category = $1")
	assert.Contains(t, query, "action = $2")
	assert.Contains(t, query, "user_id = $3")
	assert.Contains(t, query, "timestamp >= $4")
	assert.Contains(t, query, "timestamp <= $5")
	assert.Contains(t, query, " WHERE ")
	assert.Contains(t, query, " AND ")
	assert.Contains(t, query, "ORDER BY timestamp DESC LIMIT $6")

	require.Len(t, args, 6)
	assert.Equal(t, "shift", args[0])
	assert.Equal(t, int64(1000), args[3])
	assert.Equal(t, 25, args[5])
}

func TestBuildActivityQueryLocationPredicates(t *testing.T) {
	hasLocation := true
	minAcc := 5.0
	maxAcc := 100.0

	query, args := buildActivityQuery(models.ActivityFilters{
		HasLocation:    &hasLocation,
		LocationSource: "gps",
		City:           "dallas",
		MinAccuracy:    &minAcc,
		MaxAccuracy:    &maxAcc,
	}, 10)

	assert.Contains(t, query, "location IS NOT NULL")
	assert.Contains(t, query, "location->>'source' = $1")
	assert.Contains(t, query, "location->>'city' ILIKE $2")
	assert.Contains(t, query, "(location->>'accuracy')::float >= $3")
	assert.Contains(t, query, "(location->>'accuracy')::float <= $4")

	require.Len(t, args, 5)
	assert.Equal(t, "%dallas%", args[1])
}

func TestBuildActivityQueryHasLocationFalse(t *testing.T) {
	hasLocation := false
	query, _ := buildActivityQuery(models.ActivityFilters{HasLocation: &hasLocation}, 10)
	assert.Contains(t, query, "location IS NULL")
	assert.NotContains(t, query, "IS NOT NULL")
}

func TestBuildActivityQueryLimitClamp(t *testing.T) {
	_, args := buildActivityQuery(models.ActivityFilters{}, -5)
	assert.Equal(t, defaultActivityLimit, args[len(args)-1])

	_, args = buildActivityQuery(models.ActivityFilters{}, maxActivityLimit+1)
	assert.Equal(t, defaultActivityLimit, args[len(args)-1])

	_, args = buildActivityQuery(models.ActivityFilters{}, maxActivityLimit)
	assert.Equal(t, maxActivityLimit, args[len(args)-1])
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 0, DurationMinutes(1000, 1000))
	assert.Equal(t, 1, DurationMinutes(1000, 1060))
	assert.Equal(t, 8, DurationMinutes(1000, 1000+8*60))

	// Half a minute rounds away from zero
	assert.Equal(t, 2, DurationMinutes(1000, 1000+90))

	// 29 seconds rounds down
	assert.Equal(t, 0, DurationMinutes(1000, 1029))

	// Clock skew never yields a negative duration
	assert.Equal(t, 0, DurationMinutes(2000, 1000))
}

func TestShiftDistanceMeters(t *testing.T) {
	shift := ShiftRecord{
		StartLocation: &LocationSample{
			Timestamp: 1700000000,
			Source:    LocationSourceGPS,
			Latitude:  f64(32.7767),
			Longitude: f64(-96.7970),
		},
		EndLocation: &LocationSample{
			Timestamp: 1700030000,
			Source:    LocationSourceGPS,
			Latitude:  f64(32.7857),
			Longitude: f64(-96.7970),
		},
	}

	d := shift.ShiftDistanceMeters()
	assert.NotNil(t, d)
	assert.InDelta(t, 1000, *d, 15)

	// Missing either fix means no diagnostic
	noEnd := ShiftRecord{StartLocation: shift.StartLocation}
	assert.Nil(t, noEnd.ShiftDistanceMeters())

	// An IP-derived sample without coordinates does not count as a fix
	ipOnly := ShiftRecord{
		StartLocation: &LocationSample{Timestamp: 1700000000, Source: LocationSourceIP},
		EndLocation:   shift.EndLocation,
	}
	assert.Nil(t, ipOnly.ShiftDistanceMeters())
}

func TestShiftIsActive(t *testing.T) {
	active := ShiftRecord{StartTime: 1000}
	assert.True(t, active.IsActive())

	end := int64(2000)
	completed := ShiftRecord{StartTime: 1000, EndTime: &end}
	assert.False(t, completed.IsActive())
}

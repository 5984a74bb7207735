package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestLocationSampleValidate(t *testing.T) {
	valid := LocationSample{Timestamp: 1700000000, Source: LocationSourceGPS}
	assert.NoError(t, valid.Validate())

	ipSample := LocationSample{Timestamp: 1700000000, Source: LocationSourceIP}
	assert.NoError(t, ipSample.Validate())

	manual := LocationSample{Timestamp: 1700000000, Source: LocationSourceManual}
	assert.NoError(t, manual.Validate())

	missingTimestamp := LocationSample{Source: LocationSourceGPS}
	assert.Error(t, missingTimestamp.Validate())

	unknownSource := LocationSample{Timestamp: 1700000000, Source: "satellite"}
	assert.Error(t, unknownSource.Validate())

	empty := LocationSample{}
	assert.Error(t, empty.Validate())
}

func TestHasCoordinates(t *testing.T) {
	var nilSample *LocationSample
	assert.False(t, nilSample.HasCoordinates())

	noCoords := &LocationSample{Timestamp: 1700000000, Source: LocationSourceIP}
	assert.False(t, noCoords.HasCoordinates())

	latOnly := &LocationSample{Timestamp: 1700000000, Source: LocationSourceGPS, Latitude: f64(32.7)}
	assert.False(t, latOnly.HasCoordinates())

	full := &LocationSample{
		Timestamp: 1700000000,
		Source:    LocationSourceGPS,
		Latitude:  f64(32.7),
		Longitude: f64(-96.8),
	}
	assert.True(t, full.HasCoordinates())
}

func TestHaversineMeters(t *testing.T) {
	// Same point
	assert.Equal(t, 0.0, HaversineMeters(32.7767, -96.7970, 32.7767, -96.7970))

	// One degree of longitude at the equator is about 111.19km
	d := HaversineMeters(0, 0, 0, 1)
	assert.InDelta(t, 111195, d, 100)

	// Symmetric in argument order
	a := HaversineMeters(32.7767, -96.7970, 32.7831, -96.8067)
	b := HaversineMeters(32.7831, -96.8067, 32.7767, -96.7970)
	assert.InDelta(t, a, b, 1e-9)

	// Roughly 1km: 0.009 degrees of latitude
	short := HaversineMeters(32.7767, -96.7970, 32.7857, -96.7970)
	assert.InDelta(t, 1000, short, 15)
}

func TestHaversineKm(t *testing.T) {
	meters := HaversineMeters(0, 0, 0, 1)
	km := HaversineKm(0, 0, 0, 1)
	assert.InDelta(t, meters/1000.0, km, 1e-9)
}

func TestLocationSampleScanRoundTrip(t *testing.T) {
	sample := LocationSample{
		Timestamp: 1700000000,
		Source:    LocationSourceGPS,
		Latitude:  f64(32.7767),
		Longitude: f64(-96.7970),
		Accuracy:  f64(8.5),
	}

	value, err := sample.Value()
	require.NoError(t, err)

	var decoded LocationSample
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, sample, decoded)

	// NULL column leaves the sample zero-valued
	var fromNull LocationSample
	require.NoError(t, fromNull.Scan(nil))
	assert.Equal(t, LocationSample{}, fromNull)
}

func TestLocationSampleJSONFieldNames(t *testing.T) {
	sample := LocationSample{
		Timestamp: 1700000000,
		Source:    LocationSourceGPS,
		Latitude:  f64(1.5),
		Longitude: f64(2.5),
	}

	data, err := json.Marshal(sample)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "timestamp")
	assert.Contains(t, m, "source")
	assert.Contains(t, m, "latitude")
	assert.Contains(t, m, "longitude")
	assert.NotContains(t, m, "accuracy")
	assert.NotContains(t, m, "error")
}

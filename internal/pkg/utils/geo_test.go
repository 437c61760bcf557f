package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHaversineDistance(t *testing.T) {
	// Monas to Bundaran HI, Jakarta: roughly 2.4 km.
	distance := CalculateHaversineDistance(-6.1754, 106.8272, -6.1950, 106.8230)
	assert.InDelta(t, 2200, distance, 300)

	// Same point is zero.
	assert.Zero(t, CalculateHaversineDistance(-6.2146, 106.8451, -6.2146, 106.8451))
}

func TestValidateGeofence(t *testing.T) {
	const lat, lon = -6.2146, 106.8451

	t.Run("inside radius", func(t *testing.T) {
		err := ValidateGeofence(lat, lon, lat, lon, 100, true)
		assert.NoError(t, err)
	})

	t.Run("outside radius carries distance", func(t *testing.T) {
		// ~0.01 degrees latitude is roughly 1.1 km.
		err := ValidateGeofence(lat+0.01, lon, lat, lon, 100, true)
		require.Error(t, err)

		var geoErr *GeofenceError
		require.ErrorAs(t, err, &geoErr)
		assert.Equal(t, float64(100), geoErr.RadiusMeters)
		assert.Greater(t, geoErr.DistanceMeters, 1000.0)
	})

	t.Run("disabled accepts anything", func(t *testing.T) {
		err := ValidateGeofence(lat+5, lon+5, lat, lon, 100, false)
		assert.NoError(t, err)
	})
}

package utils

import (
	"fmt"
	"math"
)

// CalculateHaversineDistance menghitung jarak antara dua titik koordinat dalam Meter.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371000 // Jari-jari bumi dalam Meter

	// Konversi ke Radian
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	// Rumus Haversine
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// GeofenceError reports a clock-in attempt outside the allowed radius,
// carrying the computed distance for the client.
type GeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("outside allowed radius: %.0fm from workplace, allowed %.0fm",
		e.DistanceMeters, e.RadiusMeters)
}

// ValidateGeofence accepts or rejects a reporter coordinate against the
// workplace geofence. A disabled geofence always accepts.
func ValidateGeofence(lat, lon, centerLat, centerLon, radiusMeters float64, enabled bool) error {
	if !enabled {
		return nil
	}

	distance := CalculateHaversineDistance(lat, lon, centerLat, centerLon)
	if distance > radiusMeters {
		return &GeofenceError{DistanceMeters: distance, RadiusMeters: radiusMeters}
	}

	return nil
}

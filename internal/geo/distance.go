package geo

import (
	"math"

	"spotmerge.hitchmap.org/internal/models"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// ValidateCoordinate rejects latitudes outside [-90,90] and longitudes
// outside [-180,180].
func ValidateCoordinate(c models.Coordinate) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) ||
		c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return &models.InvalidCoordinateError{Lat: c.Lat, Lon: c.Lon}
	}
	return nil
}

// Distance returns the great-circle distance between a and b in meters.
// It is symmetric and zero iff a == b.
func Distance(a, b models.Coordinate) (float64, error) {
	if err := ValidateCoordinate(a); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(b); err != nil {
		return 0, err
	}
	return haversineDistance(a.Lat, a.Lon, b.Lat, b.Lon), nil
}

// haversineDistance calculates the great-circle distance between two points in meters
func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

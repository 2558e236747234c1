package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotmerge.hitchmap.org/internal/models"
)

func TestDistanceKnownValues(t *testing.T) {
	timesSquare := models.Coordinate{Lat: 40.7589, Lon: -73.9851}
	oneBlockNorth := models.Coordinate{Lat: 40.7590, Lon: -73.9851} // ~11m away
	tenBlocksNorth := models.Coordinate{Lat: 40.7689, Lon: -73.9851}

	d, err := Distance(timesSquare, oneBlockNorth)
	require.NoError(t, err)
	assert.InDelta(t, 11.1, d, 0.5)

	d, err = Distance(timesSquare, tenBlocksNorth)
	require.NoError(t, err)
	assert.InDelta(t, 1112.0, d, 5.0)
}

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	p := models.Coordinate{Lat: 48.8566, Lon: 2.3522}

	d, err := Distance(p, p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := models.Coordinate{Lat: 45.7640, Lon: 4.8357}
	b := models.Coordinate{Lat: 45.7700, Lon: 4.8400}

	dab, err := Distance(a, b)
	require.NoError(t, err)
	dba, err := Distance(b, a)
	require.NoError(t, err)

	assert.Equal(t, dab, dba)
}

func TestDistanceCrossesAntimeridian(t *testing.T) {
	a := models.Coordinate{Lat: 0, Lon: 179.9}
	b := models.Coordinate{Lat: 0, Lon: -179.9}

	d, err := Distance(a, b)
	require.NoError(t, err)

	// 0.2 degrees of longitude at the equator, not most of the planet.
	assert.InDelta(t, 22240.0, d, 100.0)
}

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		coord   models.Coordinate
		wantErr bool
	}{
		{"valid", models.Coordinate{Lat: 45.0, Lon: 4.8}, false},
		{"lat upper bound", models.Coordinate{Lat: 90, Lon: 0}, false},
		{"lat lower bound", models.Coordinate{Lat: -90, Lon: 0}, false},
		{"lon upper bound", models.Coordinate{Lat: 0, Lon: 180}, false},
		{"lon lower bound", models.Coordinate{Lat: 0, Lon: -180}, false},
		{"lat too large", models.Coordinate{Lat: 90.01, Lon: 0}, true},
		{"lat too small", models.Coordinate{Lat: -90.01, Lon: 0}, true},
		{"lon too large", models.Coordinate{Lat: 0, Lon: 180.01}, true},
		{"lon too small", models.Coordinate{Lat: 0, Lon: -180.01}, true},
		{"NaN lat", models.Coordinate{Lat: math.NaN(), Lon: 0}, true},
		{"NaN lon", models.Coordinate{Lat: 0, Lon: math.NaN()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.coord)
			if tt.wantErr {
				var invalidErr *models.InvalidCoordinateError
				require.Error(t, err)
				assert.True(t, errors.As(err, &invalidErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDistanceRejectsInvalidCoordinates(t *testing.T) {
	valid := models.Coordinate{Lat: 45.0, Lon: 4.8}
	invalid := models.Coordinate{Lat: 123.0, Lon: 4.8}

	_, err := Distance(invalid, valid)
	assert.Error(t, err)

	_, err = Distance(valid, invalid)
	assert.Error(t, err)
}

package detection

import (
	"math"

	"github.com/tidwall/rtree"

	"spotmerge.hitchmap.org/internal/models"
)

// metersPerDegreeLat is the approximate length of one degree of latitude.
const metersPerDegreeLat = 111320.0

// buildSpotSpatialIndex creates an R-tree over every spot in the pool that
// has coordinates. Spots without a position never participate in detection.
func buildSpotSpatialIndex(pool []models.Spot) *rtree.RTree {
	tree := &rtree.RTree{}

	// For points, min and max are the same [lat, lon]
	for i := range pool {
		spot := pool[i]
		if !spot.HasCoordinates() {
			continue
		}
		tree.Insert(
			[2]float64{spot.Coordinate.Lat, spot.Coordinate.Lon},
			[2]float64{spot.Coordinate.Lat, spot.Coordinate.Lon},
			spot,
		)
	}

	return tree
}

// querySpotsNear retrieves all indexed spots within a bounding box that
// covers radiusMeters around the center. The box over-approximates the
// circle; exact distance filtering happens afterwards.
func querySpotsNear(tree *rtree.RTree, center models.Coordinate, radiusMeters float64) []models.Spot {
	if tree == nil {
		return []models.Spot{}
	}

	latDelta := radiusMeters / metersPerDegreeLat
	lonScale := math.Cos(center.Lat * math.Pi / 180)
	if lonScale < 0.01 {
		lonScale = 0.01
	}
	lonDelta := radiusMeters / (metersPerDegreeLat * lonScale)

	var results []models.Spot
	tree.Search(
		[2]float64{center.Lat - latDelta, center.Lon - lonDelta},
		[2]float64{center.Lat + latDelta, center.Lon + lonDelta},
		func(min, max [2]float64, data interface{}) bool {
			if spot, ok := data.(models.Spot); ok {
				results = append(results, spot)
			}
			return true
		},
	)

	return results
}

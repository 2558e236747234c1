package detection

import (
	"sort"

	"github.com/tidwall/rtree"

	"spotmerge.hitchmap.org/internal/geo"
	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/scoring"
	"spotmerge.hitchmap.org/internal/similarity"
)

const (
	// DefaultRadiusMeters is the search radius when the caller passes none.
	DefaultRadiusMeters = 50.0
	// closeDistanceMeters classifies a candidate as a duplicate regardless
	// of name similarity.
	closeDistanceMeters = 20.0
	// minNameSimilarity classifies a candidate as a duplicate within radius.
	minNameSimilarity = 0.5
)

// Detector finds likely duplicates of a spot within a candidate pool.
// It is read-only and has no side effects.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns candidates from pool that are likely duplicates of spot,
// sorted by descending confidence, ties broken by ascending distance.
// A radius of 0 or less means DefaultRadiusMeters.
func (d *Detector) Detect(spot models.Spot, pool []models.Spot, radiusMeters float64) ([]models.DuplicateCandidate, error) {
	if !spot.HasCoordinates() {
		return []models.DuplicateCandidate{}, nil
	}
	if err := geo.ValidateCoordinate(*spot.Coordinate); err != nil {
		return nil, err
	}
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	tree := buildSpotSpatialIndex(pool)
	return d.detectWithIndex(spot, tree, radiusMeters)
}

// detectWithIndex runs detection against a prebuilt spatial index. The
// scanner uses it to share one index across a whole sweep.
func (d *Detector) detectWithIndex(spot models.Spot, tree *rtree.RTree, radiusMeters float64) ([]models.DuplicateCandidate, error) {
	candidates := []models.DuplicateCandidate{}

	for _, other := range querySpotsNear(tree, *spot.Coordinate, radiusMeters) {
		if other.ID == spot.ID {
			continue
		}

		dist, err := geo.Distance(*spot.Coordinate, *other.Coordinate)
		if err != nil {
			return nil, err
		}
		if dist > radiusMeters {
			continue
		}

		nameSim := labelSimilarity(spot, other)
		if nameSim < minNameSimilarity && dist >= closeDistanceMeters {
			continue
		}

		confidence := scoring.Confidence(dist, nameSim, metadataBonuses(spot, other))
		candidates = append(candidates, models.DuplicateCandidate{
			Spot:           other,
			DistanceMeters: dist,
			NameSimilarity: nameSim,
			Confidence:     confidence,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})

	return candidates, nil
}

// labelSimilarity averages name similarity across the paired label fields.
// Pairs where both sides are empty are left out of the average.
func labelSimilarity(a, b models.Spot) float64 {
	var total float64
	pairs := 0

	if a.OriginLabel != "" || b.OriginLabel != "" {
		total += similarity.Score(a.OriginLabel, b.OriginLabel)
		pairs++
	}
	if a.DestinationLabel != "" || b.DestinationLabel != "" {
		total += similarity.Score(a.DestinationLabel, b.DestinationLabel)
		pairs++
	}

	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

func metadataBonuses(a, b models.Spot) scoring.MetadataBonuses {
	return scoring.MetadataBonuses{
		SameRegion:            a.Region != "" && a.Region == b.Region,
		SameSource:            a.Source != "" && a.Source == b.Source,
		DescriptionSimilarity: similarity.Score(a.Description, b.Description),
	}
}

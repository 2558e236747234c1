package detection

import (
	"runtime"
	"sync"

	"github.com/twpayne/go-polyline"

	"spotmerge.hitchmap.org/internal/models"
)

// DefaultMinConfidence is the sweep threshold when the caller passes none.
const DefaultMinConfidence = 70

// Scanner sweeps a whole spot collection for duplicate pairs. The sweep is
// read-only; it feeds the proposal workflow, it never executes merges.
type Scanner struct {
	detector *Detector
}

func NewScanner(detector *Detector) *Scanner {
	return &Scanner{detector: detector}
}

// ScanAll detects duplicate pairs across spots. Candidates are scored in
// parallel, then pairs are claimed sequentially in input order so the output
// is deterministic: once a spot is part of an emitted pair it cannot appear
// in a second one during the same sweep.
func (s *Scanner) ScanAll(spots []models.Spot, radiusMeters float64, minConfidence int) ([]models.DuplicatePair, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	tree := buildSpotSpatialIndex(spots)

	// Score every spot's candidates in parallel, chunked across workers.
	perSpot := make([][]models.DuplicateCandidate, len(spots))
	errs := make([]error, len(spots))

	workers := runtime.NumCPU()
	chunkSize := (len(spots) + workers - 1) / workers
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if start >= len(spots) {
			break
		}
		if end > len(spots) {
			end = len(spots)
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if !spots[i].HasCoordinates() {
					continue
				}
				perSpot[i], errs[i] = s.detector.detectWithIndex(spots[i], tree, radiusMeters)
			}
		}(start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Claim pairs in input order.
	processed := make(map[string]bool, len(spots))
	pairs := []models.DuplicatePair{}

	for i := range spots {
		primary := spots[i]
		if processed[primary.ID] {
			continue
		}
		for _, cand := range perSpot[i] {
			if cand.Confidence < minConfidence || processed[cand.Spot.ID] {
				continue
			}
			pairs = append(pairs, models.DuplicatePair{
				Primary:        primary,
				Duplicate:      cand.Spot,
				DistanceMeters: cand.DistanceMeters,
				NameSimilarity: cand.NameSimilarity,
				Confidence:     cand.Confidence,
				Polyline:       pairPolyline(primary, cand.Spot),
			})
			processed[primary.ID] = true
			processed[cand.Spot.ID] = true
			break
		}
	}

	return pairs, nil
}

// pairPolyline encodes the straight line between the two spots so map UIs
// can draw the pair without re-deriving geometry.
func pairPolyline(a, b models.Spot) string {
	if !a.HasCoordinates() || !b.HasCoordinates() {
		return ""
	}
	coords := [][]float64{
		{a.Coordinate.Lat, a.Coordinate.Lon},
		{b.Coordinate.Lat, b.Coordinate.Lon},
	}
	return string(polyline.EncodeCoords(coords))
}

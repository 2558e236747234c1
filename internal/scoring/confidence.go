package scoring

import "math"

// MetadataBonuses carries the auxiliary signals that feed into the
// confidence score alongside distance and name similarity.
type MetadataBonuses struct {
	SameRegion            bool
	SameSource            bool
	DescriptionSimilarity float64
}

// Distance contribution step function, in points.
// <10m = 40, <20m = 35, <30m = 25, <50m = 15, else 0
func distancePoints(distanceMeters float64) int {
	switch {
	case distanceMeters < 10:
		return 40
	case distanceMeters < 20:
		return 35
	case distanceMeters < 30:
		return 25
	case distanceMeters < 50:
		return 15
	default:
		return 0
	}
}

// Confidence combines distance, name similarity, and metadata bonuses into a
// score in [0,100]. The function is pure; auto-detection thresholds depend on
// it being reproducible for identical inputs.
func Confidence(distanceMeters, nameSimilarity float64, bonuses MetadataBonuses) int {
	score := distancePoints(distanceMeters)
	score += int(math.Round(nameSimilarity * 40))

	if bonuses.SameRegion {
		score += 10
	}
	if bonuses.SameSource {
		score += 5
	}
	if bonuses.DescriptionSimilarity > 0.5 {
		score += 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

package executor

import (
	"spotmerge.hitchmap.org/internal/models"
)

// Consolidate folds absorbed into survivor and returns the consolidated
// record. The rules are deterministic; merging with a strictly inferior
// counterpart returns data equivalent to the survivor unchanged.
func Consolidate(survivor, absorbed models.Spot) models.Spot {
	result := survivor.Clone()

	result.Coordinate = pickCoordinate(survivor, absorbed)
	result.Ratings = mergeRatings(survivor, absorbed)
	result.ReviewCount = survivor.ReviewCount + absorbed.ReviewCount
	result.CheckinCount = survivor.CheckinCount + absorbed.CheckinCount
	result.Description = pickDescription(survivor.Description, absorbed.Description)
	result.PhotoURL = pickPhoto(survivor, absorbed)
	if absorbed.LastUsedAt.After(result.LastUsedAt) {
		result.LastUsedAt = absorbed.LastUsedAt
	}
	result.Verified = survivor.Verified || absorbed.Verified

	return result
}

// pickCoordinate prefers the verified spot's position. When both or neither
// are verified the survivor wins, falling back to whichever spot has a
// position at all.
func pickCoordinate(survivor, absorbed models.Spot) *models.Coordinate {
	preferred, other := survivor, absorbed
	if absorbed.Verified && !survivor.Verified {
		preferred, other = absorbed, survivor
	}
	if preferred.HasCoordinates() {
		c := *preferred.Coordinate
		return &c
	}
	if other.HasCoordinates() {
		c := *other.Coordinate
		return &c
	}
	return nil
}

// mergeRatings averages each criterion weighted by review count. Criteria
// present on only one spot keep that spot's value. When neither spot has
// reviews the element-wise maximum wins.
func mergeRatings(survivor, absorbed models.Spot) map[string]float64 {
	if len(survivor.Ratings) == 0 && len(absorbed.Ratings) == 0 {
		return nil
	}

	merged := make(map[string]float64)
	bothUnreviewed := survivor.ReviewCount == 0 && absorbed.ReviewCount == 0

	for criterion := range survivor.Ratings {
		merged[criterion] = mergeCriterion(criterion, survivor, absorbed, bothUnreviewed)
	}
	for criterion := range absorbed.Ratings {
		if _, done := merged[criterion]; !done {
			merged[criterion] = mergeCriterion(criterion, survivor, absorbed, bothUnreviewed)
		}
	}
	return merged
}

func mergeCriterion(criterion string, survivor, absorbed models.Spot, bothUnreviewed bool) float64 {
	v1, has1 := survivor.Ratings[criterion]
	v2, has2 := absorbed.Ratings[criterion]

	switch {
	case has1 && !has2:
		return v1
	case has2 && !has1:
		return v2
	case bothUnreviewed:
		if v2 > v1 {
			return v2
		}
		return v1
	default:
		w1 := float64(survivor.ReviewCount)
		w2 := float64(absorbed.ReviewCount)
		return (v1*w1 + v2*w2) / (w1 + w2)
	}
}

func pickDescription(a, b string) string {
	if len(b) > len(a) {
		return b
	}
	return a
}

func pickPhoto(survivor, absorbed models.Spot) string {
	if survivor.HasRealPhoto() {
		return survivor.PhotoURL
	}
	if absorbed.HasRealPhoto() {
		return absorbed.PhotoURL
	}
	return survivor.PhotoURL
}

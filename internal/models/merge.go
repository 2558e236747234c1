package models

import "time"

// RedirectEntry maps an absorbed spot id to its survivor. Entries are
// written only by merge execution and are permanent.
type RedirectEntry struct {
	FromID    string    `json:"fromId"`
	ToID      string    `json:"toId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MergeHistoryRecord is the append-only audit entry written exactly once per
// executed merge. It captures both originals and the consolidated result.
type MergeHistoryRecord struct {
	ID         string    `json:"id"`
	ProposalID string    `json:"proposalId,omitempty"`
	SurvivorID string    `json:"survivorId"`
	AbsorbedID string    `json:"absorbedId"`
	Survivor   Spot      `json:"survivor"`
	Absorbed   Spot      `json:"absorbed"`
	Result     Spot      `json:"result"`
	MergedAt   time.Time `json:"mergedAt"`
}

// DuplicateCandidate is one ranked detection result for a single spot.
type DuplicateCandidate struct {
	Spot           Spot    `json:"spot"`
	DistanceMeters float64 `json:"distanceMeters"`
	NameSimilarity float64 `json:"nameSimilarity"`
	Confidence     int     `json:"confidence"`
}

// DuplicatePair is one candidate pair emitted by a batch sweep.
type DuplicatePair struct {
	Primary        Spot    `json:"primary"`
	Duplicate      Spot    `json:"duplicate"`
	DistanceMeters float64 `json:"distanceMeters"`
	NameSimilarity float64 `json:"nameSimilarity"`
	Confidence     int     `json:"confidence"`
	// Polyline is the encoded line between the two spots, for map rendering.
	Polyline string `json:"polyline,omitempty"`
}

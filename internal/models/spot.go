package models

import "time"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Spot is a user-contributed geographic point of interest. Spots are owned
// by the spot repository; this core reads them during detection and rewrites
// the survivor during merge execution.
type Spot struct {
	ID               string             `json:"id"`
	Coordinate       *Coordinate        `json:"coordinate,omitempty"`
	OriginLabel      string             `json:"originLabel"`
	DestinationLabel string             `json:"destinationLabel"`
	Ratings          map[string]float64 `json:"ratings,omitempty"`
	ReviewCount      int                `json:"reviewCount"`
	Description      string             `json:"description"`
	PhotoURL         string             `json:"photoUrl"`
	CheckinCount     int                `json:"checkinCount"`
	CreatedAt        time.Time          `json:"createdAt"`
	LastUsedAt       time.Time          `json:"lastUsedAt"`
	Verified         bool               `json:"verified"`
	Region           string             `json:"region"`
	Source           string             `json:"source"`
}

// HasCoordinates reports whether the spot can participate in detection.
// A spot without a position is excluded from all distance-based logic.
func (s *Spot) HasCoordinates() bool {
	return s.Coordinate != nil
}

// PlaceholderPhotoURL marks spots whose photo was never replaced by a real
// upload.
const PlaceholderPhotoURL = "placeholder.png"

// HasRealPhoto reports whether the spot carries a contributor-supplied photo.
func (s *Spot) HasRealPhoto() bool {
	return s.PhotoURL != "" && s.PhotoURL != PlaceholderPhotoURL
}

// Clone returns a deep copy. Consolidation works on copies so a failed merge
// never leaves a half-mutated spot behind.
func (s *Spot) Clone() Spot {
	out := *s
	if s.Coordinate != nil {
		c := *s.Coordinate
		out.Coordinate = &c
	}
	if s.Ratings != nil {
		out.Ratings = make(map[string]float64, len(s.Ratings))
		for k, v := range s.Ratings {
			out.Ratings[k] = v
		}
	}
	return out
}

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the merge core. Callers discriminate with errors.Is;
// none of these are retried internally.
var (
	ErrSpotNotFound          = errors.New("spot not found")
	ErrSelfMergeRejected     = errors.New("spots resolve to the same canonical spot")
	ErrProposalNotFound      = errors.New("proposal not found")
	ErrProposalNotPending    = errors.New("proposal is not pending")
	ErrProposalPairMismatch  = errors.New("proposal does not cover this spot pair")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrRedirectCycleDetected = errors.New("redirect cycle detected")
	ErrRedirectChainTooLong  = errors.New("redirect chain too long")
	ErrMissingIdentity       = errors.New("identity is required")
	ErrInvalidVoteChoice     = errors.New("invalid vote choice")
)

// InvalidCoordinateError reports a latitude/longitude outside the valid
// WGS84 ranges. It is always a caller contract violation.
type InvalidCoordinateError struct {
	Lat float64
	Lon float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%v lon=%v (lat must be in [-90,90], lon in [-180,180])", e.Lat, e.Lon)
}

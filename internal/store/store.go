package store

import (
	"context"

	"spotmerge.hitchmap.org/internal/models"
)

// Store is the durable repository of merge proposals, redirects, and merge
// history. Implementations must serialize mutations per proposal id and make
// CreateProposalIfAbsent an atomic check-and-insert keyed by the normalized
// pair, so concurrent duplicate submissions collapse to one proposal.
type Store interface {
	// CreateProposalIfAbsent inserts p unless a pending proposal already
	// covers p.PairKey. It returns the stored proposal and true when p was
	// inserted, or the pre-existing pending proposal and false.
	CreateProposalIfAbsent(ctx context.Context, p models.MergeProposal) (models.MergeProposal, bool, error)

	// GetProposal returns the proposal or models.ErrProposalNotFound.
	GetProposal(ctx context.Context, id string) (models.MergeProposal, error)

	// UpdateProposal applies mutate to the stored proposal under its lock
	// and persists the result. An error from mutate aborts the update and
	// is returned unchanged.
	UpdateProposal(ctx context.Context, id string, mutate func(*models.MergeProposal) error) (models.MergeProposal, error)

	// ListProposals returns proposals with the given status, or all of them
	// when status is empty.
	ListProposals(ctx context.Context, status models.ProposalStatus) ([]models.MergeProposal, error)

	// Stats counts proposals by status.
	Stats(ctx context.Context) (models.ProposalStats, error)

	// GetRedirect returns the direct redirect target for fromID, if any.
	GetRedirect(ctx context.Context, fromID string) (string, bool, error)

	// PutRedirect records a permanent absorbed-to-survivor mapping.
	PutRedirect(ctx context.Context, entry models.RedirectEntry) error

	// AppendHistory appends an immutable merge history record.
	AppendHistory(ctx context.Context, rec models.MergeHistoryRecord) error

	// ListHistory returns all merge history records in append order.
	ListHistory(ctx context.Context) ([]models.MergeHistoryRecord, error)
}

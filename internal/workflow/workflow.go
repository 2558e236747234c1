package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"spotmerge.hitchmap.org/internal/clock"
	"spotmerge.hitchmap.org/internal/geo"
	"spotmerge.hitchmap.org/internal/identity"
	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/notify"
	"spotmerge.hitchmap.org/internal/scoring"
	"spotmerge.hitchmap.org/internal/similarity"
	"spotmerge.hitchmap.org/internal/spots"
	"spotmerge.hitchmap.org/internal/store"
)

// Workflow governs the merge proposal lifecycle:
// pending -> {approved, rejected, cancelled}, approved -> executed.
// Execution itself lives in the executor package.
type Workflow struct {
	store    store.Store
	spots    spots.Repository
	auth     identity.Authorizer
	notifier notify.Notifier
	resolver *Resolver
	clock    clock.Clock
	logger   *slog.Logger
}

func New(s store.Store, repo spots.Repository, auth identity.Authorizer, notifier notify.Notifier, c clock.Clock, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:    s,
		spots:    repo,
		auth:     auth,
		notifier: notifier,
		resolver: NewResolver(s),
		clock:    c,
		logger:   logger,
	}
}

// Resolver exposes redirect resolution to callers holding possibly-stale ids.
func (w *Workflow) Resolver() *Resolver {
	return w.resolver
}

// Propose creates a pending merge proposal for the unordered pair
// (spotID1, spotID2). Ids are resolved through redirects first. If a pending
// proposal already covers the pair, that proposal is returned instead of a
// new one — duplicate submission is not an error.
func (w *Workflow) Propose(ctx context.Context, spotID1, spotID2 string, proposer identity.Identity, reason string) (models.MergeProposal, error) {
	if proposer.IsZero() {
		return models.MergeProposal{}, models.ErrMissingIdentity
	}

	canonical1, err := w.resolver.Resolve(ctx, spotID1)
	if err != nil {
		return models.MergeProposal{}, err
	}
	canonical2, err := w.resolver.Resolve(ctx, spotID2)
	if err != nil {
		return models.MergeProposal{}, err
	}
	if canonical1 == canonical2 {
		return models.MergeProposal{}, models.ErrSelfMergeRejected
	}

	spot1, ok, err := w.spots.GetByID(ctx, canonical1)
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("loading spot %s: %w", canonical1, err)
	}
	if !ok {
		return models.MergeProposal{}, fmt.Errorf("spot %s: %w", canonical1, models.ErrSpotNotFound)
	}
	spot2, ok, err := w.spots.GetByID(ctx, canonical2)
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("loading spot %s: %w", canonical2, err)
	}
	if !ok {
		return models.MergeProposal{}, fmt.Errorf("spot %s: %w", canonical2, models.ErrSpotNotFound)
	}

	distance, nameSim, confidence, err := proposalMetrics(spot1, spot2)
	if err != nil {
		return models.MergeProposal{}, err
	}

	proposal := models.MergeProposal{
		ID:             uuid.NewString(),
		SpotID1:        canonical1,
		SpotID2:        canonical2,
		PairKey:        models.NormalizedPairKey(canonical1, canonical2),
		Status:         models.StatusPending,
		Proposer:       proposer,
		Reason:         reason,
		DistanceMeters: distance,
		NameSimilarity: nameSim,
		Confidence:     confidence,
		Votes:          models.NewVoteSets(),
		CreatedAt:      w.clock.Now(),
	}

	stored, inserted, err := w.store.CreateProposalIfAbsent(ctx, proposal)
	if err != nil {
		return models.MergeProposal{}, fmt.Errorf("creating proposal: %w", err)
	}
	if !inserted {
		w.logger.Info("duplicate proposal submission", "pairKey", proposal.PairKey, "existing", stored.ID)
		return stored, nil
	}

	w.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventProposalCreated,
		ProposalID: stored.ID,
		SpotIDs:    []string{canonical1, canonical2},
		Actor:      proposer.String(),
	})
	return stored, nil
}

// Vote records the voter's choice on a pending proposal. Re-voting moves the
// voter between the two sets; the last vote wins.
func (w *Workflow) Vote(ctx context.Context, proposalID string, voter identity.Identity, choice models.VoteChoice) (models.MergeProposal, error) {
	if voter.IsZero() {
		return models.MergeProposal{}, models.ErrMissingIdentity
	}
	if !choice.Valid() {
		return models.MergeProposal{}, models.ErrInvalidVoteChoice
	}

	updated, err := w.store.UpdateProposal(ctx, proposalID, func(p *models.MergeProposal) error {
		if p.Status != models.StatusPending {
			return models.ErrProposalNotPending
		}
		p.Votes.Cast(voter, choice)
		return nil
	})
	if err != nil {
		return models.MergeProposal{}, err
	}

	w.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventVoteRecorded,
		ProposalID: proposalID,
		Actor:      voter.String(),
	})
	return updated, nil
}

// Approve transitions a pending proposal to approved. Moderator only.
func (w *Workflow) Approve(ctx context.Context, proposalID string, actor identity.Identity) (models.MergeProposal, error) {
	if actor.IsZero() {
		return models.MergeProposal{}, models.ErrMissingIdentity
	}
	if !w.auth.HasModeratorCapability(actor) {
		return models.MergeProposal{}, models.ErrPermissionDenied
	}

	updated, err := w.store.UpdateProposal(ctx, proposalID, func(p *models.MergeProposal) error {
		if p.Status != models.StatusPending {
			return models.ErrProposalNotPending
		}
		p.Status = models.StatusApproved
		p.DecidedBy = actor
		p.DecidedAt = w.clock.Now()
		return nil
	})
	if err != nil {
		return models.MergeProposal{}, err
	}

	w.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventApproved,
		ProposalID: proposalID,
		Actor:      actor.String(),
	})
	return updated, nil
}

// Reject transitions a pending proposal to rejected. Moderator only.
func (w *Workflow) Reject(ctx context.Context, proposalID string, actor identity.Identity, reason string) (models.MergeProposal, error) {
	if actor.IsZero() {
		return models.MergeProposal{}, models.ErrMissingIdentity
	}
	if !w.auth.HasModeratorCapability(actor) {
		return models.MergeProposal{}, models.ErrPermissionDenied
	}

	updated, err := w.store.UpdateProposal(ctx, proposalID, func(p *models.MergeProposal) error {
		if p.Status != models.StatusPending {
			return models.ErrProposalNotPending
		}
		p.Status = models.StatusRejected
		p.DecidedBy = actor
		p.DecidedAt = w.clock.Now()
		p.DecisionReason = reason
		return nil
	})
	if err != nil {
		return models.MergeProposal{}, err
	}

	w.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventRejected,
		ProposalID: proposalID,
		Actor:      actor.String(),
	})
	return updated, nil
}

// Cancel transitions a pending proposal to cancelled. Allowed only for the
// original proposer or a moderator.
func (w *Workflow) Cancel(ctx context.Context, proposalID string, actor identity.Identity) (models.MergeProposal, error) {
	if actor.IsZero() {
		return models.MergeProposal{}, models.ErrMissingIdentity
	}

	updated, err := w.store.UpdateProposal(ctx, proposalID, func(p *models.MergeProposal) error {
		if p.Proposer != actor && !w.auth.HasModeratorCapability(actor) {
			return models.ErrPermissionDenied
		}
		if p.Status != models.StatusPending {
			return models.ErrProposalNotPending
		}
		p.Status = models.StatusCancelled
		p.DecidedBy = actor
		p.DecidedAt = w.clock.Now()
		return nil
	})
	if err != nil {
		return models.MergeProposal{}, err
	}

	w.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventCancelled,
		ProposalID: proposalID,
		Actor:      actor.String(),
	})
	return updated, nil
}

// Get returns a proposal by id.
func (w *Workflow) Get(ctx context.Context, proposalID string) (models.MergeProposal, error) {
	return w.store.GetProposal(ctx, proposalID)
}

// List returns proposals filtered by status; empty status means all.
func (w *Workflow) List(ctx context.Context, status models.ProposalStatus) ([]models.MergeProposal, error) {
	return w.store.ListProposals(ctx, status)
}

// Stats counts proposals by status.
func (w *Workflow) Stats(ctx context.Context) (models.ProposalStats, error) {
	return w.store.Stats(ctx)
}

// proposalMetrics computes the distance and name-similarity snapshot stored
// on the proposal. Distance stays zero when either spot lacks coordinates;
// such merges can still be proposed manually.
func proposalMetrics(a, b models.Spot) (distance, nameSim float64, confidence int, err error) {
	// No coordinates means no proximity evidence: the scorer sees an
	// out-of-range distance and awards zero distance points.
	scoreDistance := math.MaxFloat64
	if a.HasCoordinates() && b.HasCoordinates() {
		distance, err = geo.Distance(*a.Coordinate, *b.Coordinate)
		if err != nil {
			return 0, 0, 0, err
		}
		scoreDistance = distance
	}

	nameSim = averageLabelSimilarity(a, b)
	confidence = scoring.Confidence(scoreDistance, nameSim, scoring.MetadataBonuses{
		SameRegion:            a.Region != "" && a.Region == b.Region,
		SameSource:            a.Source != "" && a.Source == b.Source,
		DescriptionSimilarity: similarity.Score(a.Description, b.Description),
	})
	return distance, nameSim, confidence, nil
}

func averageLabelSimilarity(a, b models.Spot) float64 {
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

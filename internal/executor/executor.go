package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"spotmerge.hitchmap.org/internal/clock"
	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/notify"
	"spotmerge.hitchmap.org/internal/spots"
	"spotmerge.hitchmap.org/internal/store"
	"spotmerge.hitchmap.org/internal/workflow"
)

// Executor consolidates two spot records into one, migrates dependent
// references, and commits the redirect. There is no cancellation once
// execution starts; the spot rewrite, redirect write, history append, and
// proposal transition go through the committer as one atomic unit.
type Executor struct {
	store     store.Store
	committer store.MergeCommitter
	spots     spots.Repository
	migrator  spots.ReferenceMigrator
	resolver  *workflow.Resolver
	notifier  notify.Notifier
	clock     clock.Clock
	logger    *slog.Logger
}

func New(s store.Store, committer store.MergeCommitter, repo spots.Repository, migrator spots.ReferenceMigrator, resolver *workflow.Resolver, notifier notify.Notifier, c clock.Clock, logger *slog.Logger) *Executor {
	return &Executor{
		store:     s,
		committer: committer,
		spots:     repo,
		migrator:  migrator,
		resolver:  resolver,
		notifier:  notifier,
		clock:     c,
		logger:    logger,
	}
}

// Execute merges spotID2 into spotID1 after resolving both ids through the
// redirect chain. proposalID may be empty for a direct moderator merge; when
// set, the proposal must be in the approved state and transitions to
// executed as part of the commit.
func (e *Executor) Execute(ctx context.Context, spotID1, spotID2, proposalID string) (models.Spot, error) {
	survivorID, err := e.resolver.Resolve(ctx, spotID1)
	if err != nil {
		return models.Spot{}, err
	}
	absorbedID, err := e.resolver.Resolve(ctx, spotID2)
	if err != nil {
		return models.Spot{}, err
	}
	if survivorID == absorbedID {
		return models.Spot{}, models.ErrSelfMergeRejected
	}

	survivor, ok, err := e.spots.GetByID(ctx, survivorID)
	if err != nil {
		return models.Spot{}, fmt.Errorf("loading spot %s: %w", survivorID, err)
	}
	if !ok {
		return models.Spot{}, fmt.Errorf("spot %s: %w", survivorID, models.ErrSpotNotFound)
	}
	absorbed, ok, err := e.spots.GetByID(ctx, absorbedID)
	if err != nil {
		return models.Spot{}, fmt.Errorf("loading spot %s: %w", absorbedID, err)
	}
	if !ok {
		return models.Spot{}, fmt.Errorf("spot %s: %w", absorbedID, models.ErrSpotNotFound)
	}

	// The redirect absorbed -> survivor must not close a loop. Both ids are
	// canonical here, but the invariant is cheap to re-check and a violation
	// would poison every future resolution.
	target, err := e.resolver.Resolve(ctx, survivorID)
	if err != nil {
		return models.Spot{}, err
	}
	if target == absorbedID {
		return models.Spot{}, fmt.Errorf("redirect %s -> %s: %w", absorbedID, survivorID, models.ErrRedirectCycleDetected)
	}

	if proposalID != "" {
		proposal, err := e.store.GetProposal(ctx, proposalID)
		if err != nil {
			return models.Spot{}, err
		}
		if proposal.Status != models.StatusApproved {
			return models.Spot{}, models.ErrProposalNotPending
		}
		// The proposal's pair may have been recorded before further merges;
		// compare through the redirect chain so a stale but matching
		// proposal still executes, and an unrelated one never does.
		pair1, err := e.resolver.Resolve(ctx, proposal.SpotID1)
		if err != nil {
			return models.Spot{}, err
		}
		pair2, err := e.resolver.Resolve(ctx, proposal.SpotID2)
		if err != nil {
			return models.Spot{}, err
		}
		if models.NormalizedPairKey(pair1, pair2) != models.NormalizedPairKey(survivorID, absorbedID) {
			return models.Spot{}, fmt.Errorf("proposal %s covers pair %s: %w", proposalID, proposal.PairKey, models.ErrProposalPairMismatch)
		}
	}

	consolidated := Consolidate(survivor, absorbed)

	if err := e.committer.CommitMerge(ctx, store.MergeCommit{
		SurvivorID: survivorID,
		Survivor:   consolidated,
		AbsorbedID: absorbedID,
		Redirect: models.RedirectEntry{
			FromID:    absorbedID,
			ToID:      survivorID,
			CreatedAt: e.clock.Now(),
		},
		History: models.MergeHistoryRecord{
			ID:         uuid.NewString(),
			ProposalID: proposalID,
			SurvivorID: survivorID,
			AbsorbedID: absorbedID,
			Survivor:   survivor,
			Absorbed:   absorbed,
			Result:     consolidated,
			MergedAt:   e.clock.Now(),
		},
		ProposalID: proposalID,
	}); err != nil {
		return models.Spot{}, fmt.Errorf("committing merge: %w", err)
	}

	if err := e.migrator.MigrateReferences(ctx, absorbedID, survivorID); err != nil {
		return models.Spot{}, fmt.Errorf("migrating references: %w", err)
	}

	e.logger.Info("merge executed",
		"survivorId", survivorID,
		"absorbedId", absorbedID,
		"proposalId", proposalID,
	)
	e.notifier.Notify(ctx, notify.Event{
		Type:       notify.EventMergeExecuted,
		ProposalID: proposalID,
		SpotIDs:    []string{survivorID, absorbedID},
	})

	return consolidated, nil
}

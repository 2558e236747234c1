package store

import (
	"context"

	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/spots"
)

// MergeCommit is the unit of work for executing one merge: the survivor
// rewrite, the absorbed removal, the redirect, the history record, and
// (when ProposalID is set) the approved proposal's transition to executed.
// Everything in it lands together or not at all.
type MergeCommit struct {
	SurvivorID string
	Survivor   models.Spot
	AbsorbedID string
	Redirect   models.RedirectEntry
	History    models.MergeHistoryRecord

	// ProposalID, when non-empty, names a proposal that must be in the
	// approved state; the commit moves it to executed.
	ProposalID string
}

// MergeCommitter applies a MergeCommit atomically. A failed commit leaves
// spots, redirects, history, and the proposal exactly as they were.
type MergeCommitter interface {
	CommitMerge(ctx context.Context, commit MergeCommit) error
}

// MemoryCommitter binds the in-process store and spot repository into one
// all-or-nothing commit. Precondition checks run before any write; the spot
// rewrite is the only step that can fail after them, and it is itself
// atomic, so a failure anywhere aborts with nothing applied.
type MemoryCommitter struct {
	store *MemoryStore
	repo  *spots.MemoryRepository
}

func NewMemoryCommitter(s *MemoryStore, repo *spots.MemoryRepository) *MemoryCommitter {
	return &MemoryCommitter{store: s, repo: repo}
}

func (c *MemoryCommitter) CommitMerge(ctx context.Context, commit MergeCommit) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var proposal models.MergeProposal
	if commit.ProposalID != "" {
		stored, ok := s.proposals[commit.ProposalID]
		if !ok {
			return models.ErrProposalNotFound
		}
		if stored.Status != models.StatusApproved {
			return models.ErrProposalNotPending
		}
		proposal = stored.Clone()
	}

	if err := c.repo.ReplaceAndRemove(ctx, commit.SurvivorID, commit.Survivor, commit.AbsorbedID); err != nil {
		return err
	}

	s.redirects[commit.Redirect.FromID] = commit.Redirect
	s.history = append(s.history, commit.History)
	if commit.ProposalID != "" {
		proposal.Status = models.StatusExecuted
		s.proposals[commit.ProposalID] = proposal
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotmerge.hitchmap.org/internal/models"
)

func newPendingProposal(id, spot1, spot2 string) models.MergeProposal {
	return models.MergeProposal{
		ID:       id,
		SpotID1:  spot1,
		SpotID2:  spot2,
		PairKey:  models.NormalizedPairKey(spot1, spot2),
		Status:   models.StatusPending,
		Proposer: "alice",
		Votes:    models.NewVoteSets(),
	}
}

func TestCreateProposalIfAbsent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	stored, inserted, err := s.CreateProposalIfAbsent(ctx, newPendingProposal("p1", "a", "b"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "p1", stored.ID)

	// Same pair in either order returns the existing pending proposal.
	stored, inserted, err = s.CreateProposalIfAbsent(ctx, newPendingProposal("p2", "b", "a"))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "p1", stored.ID)
}

func TestCreateProposalIfAbsentAfterDecision(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _, err := s.CreateProposalIfAbsent(ctx, newPendingProposal("p1", "a", "b"))
	require.NoError(t, err)

	_, err = s.UpdateProposal(ctx, "p1", func(p *models.MergeProposal) error {
		p.Status = models.StatusRejected
		return nil
	})
	require.NoError(t, err)

	// Once no pending proposal covers the pair, a new one can be filed.
	stored, inserted, err := s.CreateProposalIfAbsent(ctx, newPendingProposal("p2", "a", "b"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, "p2", stored.ID)
}

func TestCreateProposalIfAbsentConcurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	const attempts = 50
	insertedCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := newPendingProposal(fmt.Sprintf("p%d", i), "a", "b")
			_, inserted, err := s.CreateProposalIfAbsent(ctx, p)
			assert.NoError(t, err)
			if inserted {
				mu.Lock()
				insertedCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, insertedCount)
}

func TestGetProposalNotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetProposal(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrProposalNotFound)
}

func TestUpdateProposalMutateErrorAborts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _, err := s.CreateProposalIfAbsent(ctx, newPendingProposal("p1", "a", "b"))
	require.NoError(t, err)

	_, err = s.UpdateProposal(ctx, "p1", func(p *models.MergeProposal) error {
		p.Status = models.StatusApproved
		return models.ErrProposalNotPending
	})
	assert.ErrorIs(t, err, models.ErrProposalNotPending)

	stored, err := s.GetProposal(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateProposalUnknownID(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.UpdateProposal(context.Background(), "missing", func(p *models.MergeProposal) error {
		return nil
	})
	assert.ErrorIs(t, err, models.ErrProposalNotFound)
}

func TestListProposalsFiltersByStatus(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _, err := s.CreateProposalIfAbsent(ctx, newPendingProposal("p1", "a", "b"))
	require.NoError(t, err)
	_, _, err = s.CreateProposalIfAbsent(ctx, newPendingProposal("p2", "c", "d"))
	require.NoError(t, err)

	_, err = s.UpdateProposal(ctx, "p2", func(p *models.MergeProposal) error {
		p.Status = models.StatusApproved
		return nil
	})
	require.NoError(t, err)

	all, err := s.ListProposals(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := s.ListProposals(ctx, models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].ID)
}

func TestStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, _, err := s.CreateProposalIfAbsent(ctx, newPendingProposal("p1", "a", "b"))
	require.NoError(t, err)
	_, _, err = s.CreateProposalIfAbsent(ctx, newPendingProposal("p2", "c", "d"))
	require.NoError(t, err)

	_, err = s.UpdateProposal(ctx, "p1", func(p *models.MergeProposal) error {
		p.Status = models.StatusExecuted
		return nil
	})
	require.NoError(t, err)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Executed)
	assert.Equal(t, 0, stats.Rejected)
}

func TestRedirects(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, found, err := s.GetRedirect(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	err = s.PutRedirect(ctx, models.RedirectEntry{FromID: "a", ToID: "b"})
	require.NoError(t, err)

	target, found, err := s.GetRedirect(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "b", target)
}

func TestHistoryAppendOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.AppendHistory(ctx, models.MergeHistoryRecord{ID: "h1"}))
	require.NoError(t, s.AppendHistory(ctx, models.MergeHistoryRecord{ID: "h2"}))

	records, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "h1", records[0].ID)
	assert.Equal(t, "h2", records[1].ID)
}

func TestStoredProposalsAreIsolatedFromCallers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := newPendingProposal("p1", "a", "b")
	stored, _, err := s.CreateProposalIfAbsent(ctx, p)
	require.NoError(t, err)

	// Mutating the returned copy must not leak into the store.
	stored.Votes.Cast("mallory", models.VoteApprove)

	fresh, err := s.GetProposal(ctx, "p1")
	require.NoError(t, err)
	approve, _ := fresh.Votes.Counts()
	assert.Equal(t, 0, approve)
}

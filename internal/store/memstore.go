package store

import (
	"context"
	"sync"

	"spotmerge.hitchmap.org/internal/models"
)

// MemoryStore is the single-process Store implementation. One mutex guards
// all maps, which trivially satisfies the per-key serialization contract.
type MemoryStore struct {
	mu          sync.Mutex
	proposals   map[string]models.MergeProposal
	pendingPair map[string]string // normalized pair key -> pending proposal id
	redirects   map[string]models.RedirectEntry
	history     []models.MergeHistoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proposals:   make(map[string]models.MergeProposal),
		pendingPair: make(map[string]string),
		redirects:   make(map[string]models.RedirectEntry),
	}
}

func (s *MemoryStore) CreateProposalIfAbsent(ctx context.Context, p models.MergeProposal) (models.MergeProposal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingID, ok := s.pendingPair[p.PairKey]; ok {
		existing := s.proposals[existingID]
		return existing.Clone(), false, nil
	}

	s.proposals[p.ID] = p.Clone()
	s.pendingPair[p.PairKey] = p.ID
	return p.Clone(), true, nil
}

func (s *MemoryStore) GetProposal(ctx context.Context, id string) (models.MergeProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.proposals[id]
	if !ok {
		return models.MergeProposal{}, models.ErrProposalNotFound
	}
	return p.Clone(), nil
}

func (s *MemoryStore) UpdateProposal(ctx context.Context, id string, mutate func(*models.MergeProposal) error) (models.MergeProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.proposals[id]
	if !ok {
		return models.MergeProposal{}, models.ErrProposalNotFound
	}

	p := stored.Clone()
	if err := mutate(&p); err != nil {
		return models.MergeProposal{}, err
	}

	s.proposals[id] = p.Clone()
	if p.Status != models.StatusPending {
		if s.pendingPair[p.PairKey] == id {
			delete(s.pendingPair, p.PairKey)
		}
	}
	return p, nil
}

func (s *MemoryStore) ListProposals(ctx context.Context, status models.ProposalStatus) ([]models.MergeProposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.MergeProposal{}
	for _, p := range s.proposals {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *MemoryStore) Stats(ctx context.Context) (models.ProposalStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats models.ProposalStats
	for _, p := range s.proposals {
		switch p.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusExecuted:
			stats.Executed++
		case models.StatusRejected:
			stats.Rejected++
		case models.StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (s *MemoryStore) GetRedirect(ctx context.Context, fromID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.redirects[fromID]
	if !ok {
		return "", false, nil
	}
	return entry.ToID, true, nil
}

func (s *MemoryStore) PutRedirect(ctx context.Context, entry models.RedirectEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.redirects[entry.FromID] = entry
	return nil
}

func (s *MemoryStore) AppendHistory(ctx context.Context, rec models.MergeHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, rec)
	return nil
}

func (s *MemoryStore) ListHistory(ctx context.Context) ([]models.MergeHistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MergeHistoryRecord, len(s.history))
	copy(out, s.history)
	return out, nil
}

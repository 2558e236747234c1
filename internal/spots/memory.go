package spots

import (
	"context"
	"sort"
	"sync"

	"spotmerge.hitchmap.org/internal/models"
)

// MemoryRepository is the in-process spot repository.
type MemoryRepository struct {
	mu    sync.RWMutex
	spots map[string]models.Spot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{spots: make(map[string]models.Spot)}
}

// Put inserts or overwrites a spot. It is the seeding entry point, not part
// of the Repository interface the merge core consumes.
func (r *MemoryRepository) Put(spot models.Spot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spots[spot.ID] = spot.Clone()
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (models.Spot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spot, ok := r.spots[id]
	if !ok {
		return models.Spot{}, false, nil
	}
	return spot.Clone(), true, nil
}

// List returns all spots ordered by id so sweeps see a stable input order.
func (r *MemoryRepository) List(ctx context.Context) ([]models.Spot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Spot, 0, len(r.spots))
	for _, spot := range r.spots {
		out = append(out, spot.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Replace(ctx context.Context, id string, spot models.Spot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spots[id]; !ok {
		return models.ErrSpotNotFound
	}
	r.spots[id] = spot.Clone()
	return nil
}

func (r *MemoryRepository) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spots[id]; !ok {
		return models.ErrSpotNotFound
	}
	delete(r.spots, id)
	return nil
}

func (r *MemoryRepository) ReplaceAndRemove(ctx context.Context, survivorID string, survivor models.Spot, absorbedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spots[survivorID]; !ok {
		return models.ErrSpotNotFound
	}
	if _, ok := r.spots[absorbedID]; !ok {
		return models.ErrSpotNotFound
	}
	r.spots[survivorID] = survivor.Clone()
	delete(r.spots, absorbedID)
	return nil
}

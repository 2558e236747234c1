package spots

import (
	"context"
	"sync"
)

// MemoryFavorites tracks per-owner favorite spot ids and migrates them when
// a spot is absorbed. An owner who favorited both members of a merged pair
// ends up with a single entry for the survivor.
type MemoryFavorites struct {
	mu        sync.Mutex
	favorites map[string][]string // owner -> spot ids, insertion order kept
}

func NewMemoryFavorites() *MemoryFavorites {
	return &MemoryFavorites{favorites: make(map[string][]string)}
}

// Add records spotID as a favorite of owner, ignoring duplicates.
func (f *MemoryFavorites) Add(owner, spotID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.favorites[owner] {
		if id == spotID {
			return
		}
	}
	f.favorites[owner] = append(f.favorites[owner], spotID)
}

// ListFor returns the owner's favorites in insertion order.
func (f *MemoryFavorites) ListFor(owner string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.favorites[owner]))
	copy(out, f.favorites[owner])
	return out
}

// MigrateReferences rewrites every reference to absorbedID into survivorID,
// de-duplicating per owner (first occurrence wins).
func (f *MemoryFavorites) MigrateReferences(ctx context.Context, absorbedID, survivorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for owner, ids := range f.favorites {
		seen := make(map[string]struct{}, len(ids))
		out := ids[:0]
		for _, id := range ids {
			if id == absorbedID {
				id = survivorID
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		f.favorites[owner] = out
	}
	return nil
}

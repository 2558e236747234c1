package workflow

import (
	"context"
	"fmt"

	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/store"
)

// MaxRedirectHops bounds redirect chain traversal. A chain longer than this
// means a prior invariant violation; resolution fails closed instead of
// walking further.
const MaxRedirectHops = 10

// Resolver follows id redirects to the canonical spot id.
type Resolver struct {
	store store.Store
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve follows the redirect chain from spotID and returns the first id
// with no outgoing redirect. It fails with ErrRedirectCycleDetected when an
// id repeats and ErrRedirectChainTooLong past MaxRedirectHops.
func (r *Resolver) Resolve(ctx context.Context, spotID string) (string, error) {
	visited := make(map[string]bool, 4)
	current := spotID

	for hop := 0; hop <= MaxRedirectHops; hop++ {
		if visited[current] {
			return "", fmt.Errorf("resolving %s: %w", spotID, models.ErrRedirectCycleDetected)
		}
		visited[current] = true

		next, ok, err := r.store.GetRedirect(ctx, current)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", spotID, err)
		}
		if !ok {
			return current, nil
		}
		current = next
	}

	return "", fmt.Errorf("resolving %s: %w", spotID, models.ErrRedirectChainTooLong)
}

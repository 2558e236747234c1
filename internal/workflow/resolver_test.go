package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotmerge.hitchmap.org/internal/models"
	"spotmerge.hitchmap.org/internal/store"
)

func TestResolveNoRedirect(t *testing.T) {
	r := NewResolver(store.NewMemoryStore())

	id, err := r.Resolve(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a", id)
}

func TestResolveFollowsChain(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	// a -> b -> c
	require.NoError(t, s.PutRedirect(ctx, models.RedirectEntry{FromID: "a", ToID: "b"}))
	require.NoError(t, s.PutRedirect(ctx, models.RedirectEntry{FromID: "b", ToID: "c"}))

	r := NewResolver(s)

	id, err := r.Resolve(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "c", id)

	id, err = r.Resolve(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "c", id)
}

func TestResolveDetectsCycle(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutRedirect(ctx, models.RedirectEntry{FromID: "a", ToID: "b"}))
	require.NoError(t, s.PutRedirect(ctx, models.RedirectEntry{FromID: "b", ToID: "a"}))

	r := NewResolver(s)

	_, err := r.Resolve(ctx, "a")
	assert.ErrorIs(t, err, models.ErrRedirectCycleDetected)
}

func TestResolveSelfCycle(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.PutRedirect(ctx, models.RedirectEntry{FromID: "a", ToID: "a"}))

	r := NewResolver(s)

	_, err := r.Resolve(ctx, "a")
	assert.ErrorIs(t, err, models.ErrRedirectCycleDetected)
}

func TestResolveChainTooLong(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	// A chain one hop past the limit, with no cycle.
	for i := 0; i <= MaxRedirectHops; i++ {
		entry := models.RedirectEntry{
			FromID: fmt.Sprintf("s%d", i),
			ToID:   fmt.Sprintf("s%d", i+1),
		}
		require.NoError(t, s.PutRedirect(ctx, entry))
	}

	r := NewResolver(s)

	_, err := r.Resolve(ctx, "s0")
	assert.ErrorIs(t, err, models.ErrRedirectChainTooLong)

	// Entering the same chain near its end still resolves.
	id, err := r.Resolve(ctx, fmt.Sprintf("s%d", MaxRedirectHops))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("s%d", MaxRedirectHops+1), id)
}

package spots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoritesAddIgnoresDuplicates(t *testing.T) {
	f := NewMemoryFavorites()

	f.Add("alice", "a")
	f.Add("alice", "b")
	f.Add("alice", "a")

	assert.Equal(t, []string{"a", "b"}, f.ListFor("alice"))
}

func TestMigrateReferencesRewritesAbsorbedID(t *testing.T) {
	f := NewMemoryFavorites()

	f.Add("alice", "b")
	f.Add("bob", "x")

	require.NoError(t, f.MigrateReferences(context.Background(), "b", "a"))

	assert.Equal(t, []string{"a"}, f.ListFor("alice"))
	assert.Equal(t, []string{"x"}, f.ListFor("bob"))
}

func TestMigrateReferencesDeduplicates(t *testing.T) {
	f := NewMemoryFavorites()

	// Alice favorited both members of the pair.
	f.Add("alice", "a")
	f.Add("alice", "c")
	f.Add("alice", "b")

	require.NoError(t, f.MigrateReferences(context.Background(), "b", "a"))

	// The rewritten "b" collapses into the existing "a".
	assert.Equal(t, []string{"a", "c"}, f.ListFor("alice"))
}

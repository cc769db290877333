package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedFixtureStore(t *testing.T) (*Store, *Snapshot) {
	t.Helper()
	snap := buildFixtureSnapshot(t)
	store, err := NewStore(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SaveSnapshot(context.Background(), snap))
	return store, snap
}

func TestStore_Subgraph(t *testing.T) {
	store, snap := savedFixtureStore(t)
	ctx := context.Background()
	entity := fixturePath + ".Entity"

	t.Run("zero hops is just the root", func(t *testing.T) {
		sub, err := store.Subgraph(ctx, snap.RunID, entity, SubgraphOptions{MaxHops: 0})
		require.NoError(t, err)
		assert.Equal(t, []string{entity}, sub.Names)
		assert.Empty(t, sub.Edges)
	})

	t.Run("one hop reaches members and base", func(t *testing.T) {
		sub, err := store.Subgraph(ctx, snap.RunID, entity, SubgraphOptions{MaxHops: 1})
		require.NoError(t, err)
		assert.Contains(t, sub.Names, fixturePath+".Entity.Title")
		assert.Contains(t, sub.Names, fixturePath+".Base")
		assert.Equal(t, 1, sub.Depths[fixturePath+".Base"])
		assert.NotContains(t, sub.Names, fixturePath+".Blob",
			"unrelated types stay outside the neighborhood")
	})

	t.Run("edges are walked backwards too", func(t *testing.T) {
		sub, err := store.Subgraph(ctx, snap.RunID, fixturePath+".Entity.Title",
			SubgraphOptions{MaxHops: 1})
		require.NoError(t, err)
		assert.Contains(t, sub.Names, entity, "a member reaches its owner")
	})

	t.Run("kind filter narrows the walk", func(t *testing.T) {
		sub, err := store.Subgraph(ctx, snap.RunID, entity, SubgraphOptions{
			MaxHops: 1,
			Kinds:   map[string]bool{EdgeBase: true},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{fixturePath + ".Base", entity}, sub.Names)
	})

	t.Run("cycles terminate", func(t *testing.T) {
		sub, err := store.Subgraph(ctx, snap.RunID, fixturePath+".Blob",
			SubgraphOptions{MaxHops: 10})
		require.NoError(t, err)
		assert.Contains(t, sub.Names, fixturePath+".Manifest")
	})
}

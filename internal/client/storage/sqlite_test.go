package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *OperationCache {
	t.Helper()
	db, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOperationCache(db)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionRepository(db)

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)

	sess := &Session{UserID: "u1", Username: "alice", AccessToken: "at", RefreshToken: "rt"}
	require.NoError(t, repo.Save(ctx, sess))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess, got)

	// Saving again replaces the single row.
	sess.AccessToken = "at2"
	require.NoError(t, repo.Save(ctx, sess))
	got, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "at2", got.AccessToken)

	require.NoError(t, repo.Delete(ctx))
	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, common.ErrNotFound)
	require.NoError(t, repo.Delete(ctx), "deleting a missing session is fine")
}

func TestOperationCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache := testDB(t)

	ops := []wire.Operation{
		{ID: "a", CanvasID: "c1", Tool: wire.ToolBrush, Color: "#000000", LineWidth: 2,
			Points: []wire.Point{{X: 1, Y: 2}}, CreatedAt: time.Unix(1, 0).UTC()},
		{ID: "b", CanvasID: "c1", Tool: wire.ToolEraser, LineWidth: 8,
			Points: []wire.Point{{X: 3, Y: 4}, {X: 5, Y: 6}}, CreatedAt: time.Unix(2, 0).UTC()},
	}
	require.NoError(t, cache.SaveOperations(ctx, "c1", ops))

	got, err := cache.LoadOperations(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, ops, got)
}

func TestOperationCacheReplacesPrefix(t *testing.T) {
	ctx := context.Background()
	cache := testDB(t)

	require.NoError(t, cache.SaveOperations(ctx, "c1", []wire.Operation{
		{ID: "a", Points: []wire.Point{{X: 1, Y: 1}}},
		{ID: "b", Points: []wire.Point{{X: 2, Y: 2}}},
	}))
	require.NoError(t, cache.SaveOperations(ctx, "c1", []wire.Operation{
		{ID: "a", Points: []wire.Point{{X: 1, Y: 1}}},
	}))

	got, err := cache.LoadOperations(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestOperationCacheIsolatedByCanvas(t *testing.T) {
	ctx := context.Background()
	cache := testDB(t)

	require.NoError(t, cache.SaveOperations(ctx, "c1", []wire.Operation{{ID: "a", Points: []wire.Point{{X: 1, Y: 1}}}}))
	require.NoError(t, cache.SaveOperations(ctx, "c2", []wire.Operation{{ID: "b", Points: []wire.Point{{X: 2, Y: 2}}}}))

	got, err := cache.LoadOperations(ctx, "c2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	empty, err := cache.LoadOperations(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

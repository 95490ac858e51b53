package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Preethi0409/canvas/internal/client/storage"
	"github.com/Preethi0409/canvas/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewManager(storage.NewSessionRepository(db)), path
}

func TestCurrentUserWhenLoggedOut(t *testing.T) {
	m, _ := newManager(t)
	_, ok := m.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, m.AccessToken())
}

func TestStartAndCurrentUser(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Start(ctx, &storage.Session{
		UserID: "u1", Username: "alice", AccessToken: "at", RefreshToken: "rt",
	}))

	user, ok := m.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "at", m.AccessToken())
	assert.Equal(t, "rt", m.RefreshToken())
}

func TestRestoreAcrossRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := storage.InitDatabase(ctx, path)
	require.NoError(t, err)
	first := NewManager(storage.NewSessionRepository(db))
	require.NoError(t, first.Start(ctx, &storage.Session{UserID: "u1", Username: "alice", AccessToken: "at", RefreshToken: "rt"}))
	require.NoError(t, db.Close())

	db2, err := storage.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db2.Close()
	second := NewManager(storage.NewSessionRepository(db2))
	require.NoError(t, second.Restore(ctx))

	user, ok := second.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestRestoreWithoutSavedSession(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Restore(context.Background()))
	_, ok := m.CurrentUser()
	assert.False(t, ok)
}

func TestUpdateTokens(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	assert.ErrorIs(t, m.UpdateTokens(ctx, "a", "r"), common.ErrUnauthorized)

	require.NoError(t, m.Start(ctx, &storage.Session{UserID: "u1", Username: "alice", AccessToken: "at", RefreshToken: "rt"}))
	require.NoError(t, m.UpdateTokens(ctx, "at2", "rt2"))
	assert.Equal(t, "at2", m.AccessToken())
	assert.Equal(t, "rt2", m.RefreshToken())
}

func TestEnd(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	require.NoError(t, m.Start(ctx, &storage.Session{UserID: "u1", Username: "alice", AccessToken: "at", RefreshToken: "rt"}))
	require.NoError(t, m.End(ctx))
	_, ok := m.CurrentUser()
	assert.False(t, ok)
}

// Package session resolves and persists the current user identity and token
// pair. The engine consumes it through engine.SessionProvider; the API client
// consumes it as a token store.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Preethi0409/canvas/internal/client/engine"
	"github.com/Preethi0409/canvas/internal/client/storage"
	"github.com/Preethi0409/canvas/internal/common"
)

type Manager struct {
	repo *storage.SessionRepository

	mu      sync.RWMutex
	current *storage.Session
}

func NewManager(repo *storage.SessionRepository) *Manager {
	return &Manager{repo: repo}
}

// Restore hydrates the in-memory session from the local store, if one was
// saved by a previous run.
func (m *Manager) Restore(ctx context.Context) error {
	sess, err := m.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return nil
}

// Start records a fresh login and persists it.
func (m *Manager) Start(ctx context.Context, sess *storage.Session) error {
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return m.repo.Save(ctx, sess)
}

// End forgets the session in memory and on disk.
func (m *Manager) End(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return m.repo.Delete(ctx)
}

// CurrentUser implements engine.SessionProvider.
func (m *Manager) CurrentUser() (engine.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return engine.Identity{}, false
	}
	return engine.Identity{
		ID:         m.current.UserID,
		Username:   m.current.Username,
		ProfilePic: m.current.ProfilePic,
	}, true
}

// AccessToken returns the current access token, empty when logged out.
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// RefreshToken returns the current refresh token, empty when logged out.
func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.RefreshToken
}

// UpdateTokens swaps in a rotated token pair and persists it.
func (m *Manager) UpdateTokens(ctx context.Context, accessToken, refreshToken string) error {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return common.ErrUnauthorized
	}
	m.current.AccessToken = accessToken
	m.current.RefreshToken = refreshToken
	sess := *m.current
	m.mu.Unlock()
	return m.repo.Save(ctx, &sess)
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/dbx"
)

// Session is the locally persisted identity and token pair. A restart keeps
// the user logged in until the refresh token expires.
type Session struct {
	UserID       string
	Username     string
	ProfilePic   string
	AccessToken  string
	RefreshToken string
}

// SessionRepository stores at most one session row.
type SessionRepository struct {
	db dbx.DBTX
}

func NewSessionRepository(db dbx.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the session row.
func (r *SessionRepository) Save(ctx context.Context, s *Session) error {
	query := `INSERT INTO session (id, user_id, username, profile_pic, access_token, refresh_token)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id,
			username = excluded.username,
			profile_pic = excluded.profile_pic,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token`
	if _, err := r.db.ExecContext(ctx, query,
		s.UserID, s.Username, s.ProfilePic, s.AccessToken, s.RefreshToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the saved session or common.ErrNotFound.
func (r *SessionRepository) Load(ctx context.Context) (*Session, error) {
	query := `SELECT user_id, username, profile_pic, access_token, refresh_token FROM session WHERE id = 1`
	row := r.db.QueryRowContext(ctx, query)

	s := &Session{}
	if err := row.Scan(&s.UserID, &s.Username, &s.ProfilePic, &s.AccessToken, &s.RefreshToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return s, nil
}

// Delete removes the saved session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

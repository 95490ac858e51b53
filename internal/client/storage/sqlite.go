// Package storage is the client's local sqlite store: the saved session and
// a per-canvas operation cache rendered immediately on rejoin while the
// fresh snapshot is in flight.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDatabase opens (creating if needed) the local database and ensures the
// schema exists.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		profile_pic TEXT NOT NULL DEFAULT '',
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS operations (
		canvas_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (canvas_id, position)
	);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return db, nil
}

// Package canvases provides the PostgreSQL-backed canvas repository.
package canvases

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/dbx"
	"github.com/Preethi0409/canvas/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, canvas *models.Canvas) (*models.Canvas, error) {
	query := `
		INSERT INTO canvases (id, name, is_private, password_hash, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		canvas.ID, canvas.Name, canvas.IsPrivate, canvas.PasswordHash, canvas.CreatedBy).Scan(&canvas.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return canvas, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Canvas, error) {
	query := `
		SELECT id, name, is_private, password_hash, created_by, created_at FROM canvases
		WHERE id = $1
	`
	c := &models.Canvas{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.IsPrivate, &c.PasswordHash, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// ListPublic returns the most recently created public canvases, newest first.
func (r *PostgresRepository) ListPublic(ctx context.Context, limit int) ([]*models.Canvas, error) {
	query := `
		SELECT id, name, is_private, created_by, created_at FROM canvases
		WHERE NOT is_private
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select canvases: %w", err)
	}
	defer rows.Close()

	var result []*models.Canvas
	for rows.Next() {
		var c models.Canvas
		if err := rows.Scan(&c.ID, &c.Name, &c.IsPrivate, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

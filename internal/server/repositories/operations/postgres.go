// Package operations persists the append-only operation log for each canvas.
// Rows are never updated; ordering for replay is created_at ascending.
package operations

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Preethi0409/canvas/internal/dbx"
	"github.com/Preethi0409/canvas/internal/wire"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a confirmed operation and fills in the store-assigned
// creation timestamp. The caller supplies the id.
func (r *PostgresRepository) Append(ctx context.Context, op *wire.Operation) (*wire.Operation, error) {
	points, err := json.Marshal(op.Points)
	if err != nil {
		return nil, fmt.Errorf("encode points: %w", err)
	}

	query := `
		INSERT INTO canvas_operations (id, canvas_id, user_id, tool, color, line_width, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		op.ID, op.CanvasID, op.UserID, string(op.Tool), op.Color, op.LineWidth, points).Scan(&op.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return op, nil
}

// LoadAll returns every operation of a canvas ordered by created_at ascending,
// the replay order used to hydrate a joining participant.
func (r *PostgresRepository) LoadAll(ctx context.Context, canvasID string) ([]wire.Operation, error) {
	query := `
		SELECT id, canvas_id, user_id, tool, color, line_width, points, created_at
		FROM canvas_operations
		WHERE canvas_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, canvasID)
	if err != nil {
		return nil, fmt.Errorf("failed to select operations: %w", err)
	}
	defer rows.Close()

	var result []wire.Operation
	for rows.Next() {
		var op wire.Operation
		var tool string
		var points []byte
		if err := rows.Scan(&op.ID, &op.CanvasID, &op.UserID, &tool, &op.Color,
			&op.LineWidth, &points, &op.CreatedAt); err != nil {
			return nil, err
		}
		op.Tool = wire.Tool(tool)
		if err := json.Unmarshal(points, &op.Points); err != nil {
			return nil, fmt.Errorf("decode points: %w", err)
		}
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, canvasID string) error {
	query := `DELETE FROM canvas_operations WHERE canvas_id = $1`
	if _, err := r.db.ExecContext(ctx, query, canvasID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Preethi0409/canvas/internal/dbx"
	"github.com/Preethi0409/canvas/internal/wire"
)

// OperationCache persists the visible operation prefix of each canvas.
// It satisfies engine.Cache.
type OperationCache struct {
	db *sql.DB
}

func NewOperationCache(db *sql.DB) *OperationCache {
	return &OperationCache{db: db}
}

// SaveOperations replaces the cached prefix for a canvas atomically.
func (c *OperationCache) SaveOperations(ctx context.Context, canvasID string, ops []wire.Operation) error {
	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM operations WHERE canvas_id = ?`, canvasID); err != nil {
			return fmt.Errorf("failed to clear cached operations: %w", err)
		}
		for i, op := range ops {
			payload, err := json.Marshal(op)
			if err != nil {
				return fmt.Errorf("failed to encode operation: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO operations (canvas_id, position, payload) VALUES (?, ?, ?)`,
				canvasID, i, string(payload)); err != nil {
				return fmt.Errorf("failed to cache operation: %w", err)
			}
		}
		return nil
	})
}

// LoadOperations returns the cached prefix in its stored order.
func (c *OperationCache) LoadOperations(ctx context.Context, canvasID string) ([]wire.Operation, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT payload FROM operations WHERE canvas_id = ? ORDER BY position`, canvasID)
	if err != nil {
		return nil, fmt.Errorf("failed to select cached operations: %w", err)
	}
	defer rows.Close()

	var ops []wire.Operation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var op wire.Operation
		if err := json.Unmarshal([]byte(payload), &op); err != nil {
			return nil, fmt.Errorf("failed to decode cached operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

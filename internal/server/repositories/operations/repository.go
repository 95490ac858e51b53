package operations

import (
	"context"

	"github.com/Preethi0409/canvas/internal/wire"
)

type Repository interface {
	Append(ctx context.Context, op *wire.Operation) (*wire.Operation, error)
	LoadAll(ctx context.Context, canvasID string) ([]wire.Operation, error)
	DeleteAll(ctx context.Context, canvasID string) error
}

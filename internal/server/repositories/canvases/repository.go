package canvases

import (
	"context"

	"github.com/Preethi0409/canvas/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, canvas *models.Canvas) (*models.Canvas, error)
	GetByID(ctx context.Context, id string) (*models.Canvas, error)
	ListPublic(ctx context.Context, limit int) ([]*models.Canvas, error)
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/server/config"
	"github.com/Preethi0409/canvas/internal/server/models"
	"github.com/Preethi0409/canvas/internal/server/repositories/repomanager"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CanvasService owns canvas lifecycle and the durable operation log:
// create/join/list plus append, snapshot load, and clear.
type CanvasService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	listLimit   int
}

func NewCanvasService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *CanvasService {
	return &CanvasService{db: db, repomanager: m, listLimit: cfg.PublicCanvasListLimit}
}

// Create validates and stores a new canvas. Private canvases require a
// password, stored as a bcrypt hash.
func (s *CanvasService) Create(ctx context.Context, name string, isPrivate bool, password, ownerID string) (*models.Canvas, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: canvas name is required", common.ErrValidation)
	}
	if isPrivate && strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: a private canvas needs a password", common.ErrValidation)
	}

	canvas := &models.Canvas{
		ID:        uuid.NewString(),
		Name:      name,
		IsPrivate: isPrivate,
		CreatedBy: ownerID,
	}
	if isPrivate {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, common.ErrInternal
		}
		canvas.PasswordHash = hash
	}

	repo := s.repomanager.Canvases(s.db)
	c, err := repo.Create(ctx, canvas)
	if err != nil {
		return nil, fmt.Errorf("error creating canvas: %w", err)
	}
	return c, nil
}

// Join resolves a canvas and enforces its password. Unknown ids map to
// ErrNotFound, a wrong or missing password on a private canvas to
// ErrUnauthorized; both block entry.
func (s *CanvasService) Join(ctx context.Context, id, password string) (*models.Canvas, error) {
	repo := s.repomanager.Canvases(s.db)
	canvas, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if canvas.IsPrivate {
		if bcrypt.CompareHashAndPassword(canvas.PasswordHash, []byte(password)) != nil {
			return nil, common.ErrUnauthorized
		}
	}
	return canvas, nil
}

// ListPublic returns the newest public canvases for the join screen.
func (s *CanvasService) ListPublic(ctx context.Context) ([]*models.Canvas, error) {
	list, err := s.repomanager.Canvases(s.db).ListPublic(ctx, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing canvases: %w", err)
	}
	return list, nil
}

// AppendOperation confirms a draft: validates it, assigns identity, and
// persists it. The returned operation carries the store-assigned id and
// created_at that every replica will agree on.
func (s *CanvasService) AppendOperation(ctx context.Context, canvasID, userID string, draft wire.OperationDraft) (*wire.Operation, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	op := &wire.Operation{
		ID:        uuid.NewString(),
		CanvasID:  canvasID,
		UserID:    userID,
		Tool:      draft.Tool,
		Color:     draft.Color,
		LineWidth: draft.LineWidth,
		Points:    draft.Points,
	}

	confirmed, err := s.repomanager.Operations(s.db).Append(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return confirmed, nil
}

// LoadOperations returns the canvas snapshot ordered by created_at ascending.
func (s *CanvasService) LoadOperations(ctx context.Context, canvasID string) ([]wire.Operation, error) {
	ops, err := s.repomanager.Operations(s.db).LoadAll(ctx, canvasID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return ops, nil
}

// ClearOperations deletes every persisted operation of a canvas.
func (s *CanvasService) ClearOperations(ctx context.Context, canvasID string) error {
	if err := s.repomanager.Operations(s.db).DeleteAll(ctx, canvasID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrPersistence, err)
	}
	return nil
}

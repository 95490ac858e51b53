package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/Preethi0409/canvas/internal/dbx"
	"github.com/Preethi0409/canvas/internal/server/config"
	"github.com/Preethi0409/canvas/internal/server/models"
	canvasesrepo "github.com/Preethi0409/canvas/internal/server/repositories/canvases"
	operationsrepo "github.com/Preethi0409/canvas/internal/server/repositories/operations"
	refreshtokensrepo "github.com/Preethi0409/canvas/internal/server/repositories/refreshtokens"
	usersrepo "github.com/Preethi0409/canvas/internal/server/repositories/users"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- fakes ---

type fakeCanvasRepo struct {
	created *models.Canvas
	getOut  *models.Canvas
	getErr  error
	listOut []*models.Canvas
}

func (f *fakeCanvasRepo) Create(ctx context.Context, c *models.Canvas) (*models.Canvas, error) {
	f.created = c
	c.CreatedAt = time.Now()
	return c, nil
}

func (f *fakeCanvasRepo) GetByID(ctx context.Context, id string) (*models.Canvas, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeCanvasRepo) ListPublic(ctx context.Context, limit int) ([]*models.Canvas, error) {
	return f.listOut, nil
}

type fakeOperationsRepo struct {
	appended  []*wire.Operation
	appendErr error
	loadOut   []wire.Operation
	deleted   []string
}

func (f *fakeOperationsRepo) Append(ctx context.Context, op *wire.Operation) (*wire.Operation, error) {
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	op.CreatedAt = time.Now()
	f.appended = append(f.appended, op)
	return op, nil
}

func (f *fakeOperationsRepo) LoadAll(ctx context.Context, canvasID string) ([]wire.Operation, error) {
	return f.loadOut, nil
}

func (f *fakeOperationsRepo) DeleteAll(ctx context.Context, canvasID string) error {
	f.deleted = append(f.deleted, canvasID)
	return nil
}

type fakeRepoManager struct {
	canvases   *fakeCanvasRepo
	operations *fakeOperationsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository      { return nil }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return nil
}
func (m *fakeRepoManager) Canvases(db dbx.DBTX) canvasesrepo.Repository { return m.canvases }
func (m *fakeRepoManager) Operations(db dbx.DBTX) operationsrepo.Repository {
	return m.operations
}

func newCanvasService(rm *fakeRepoManager) *CanvasService {
	cfg := &config.Config{PublicCanvasListLimit: 10}
	return NewCanvasService(nil, rm, cfg)
}

// --- tests ---

func TestCreate_ValidationErrors(t *testing.T) {
	s := newCanvasService(&fakeRepoManager{canvases: &fakeCanvasRepo{}})

	tests := []struct {
		name      string
		canvas    string
		isPrivate bool
		password  string
	}{
		{"empty name", "  ", false, ""},
		{"private without password", "room", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Create(context.Background(), tt.canvas, tt.isPrivate, tt.password, "u1")
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestCreate_PrivateStoresHashNotPlaintext(t *testing.T) {
	repo := &fakeCanvasRepo{}
	s := newCanvasService(&fakeRepoManager{canvases: repo})

	c, err := s.Create(context.Background(), "secret room", true, "hunter2", "u1")
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.NotEmpty(t, c.ID)
	assert.NotContains(t, string(repo.created.PasswordHash), "hunter2")
	assert.NoError(t, bcrypt.CompareHashAndPassword(repo.created.PasswordHash, []byte("hunter2")))
}

func TestJoin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	private := &models.Canvas{ID: "c1", Name: "room", IsPrivate: true, PasswordHash: hash}
	public := &models.Canvas{ID: "c2", Name: "open", IsPrivate: false}

	tests := []struct {
		name     string
		repo     *fakeCanvasRepo
		password string
		wantErr  error
	}{
		{"unknown canvas", &fakeCanvasRepo{getErr: common.ErrNotFound}, "", common.ErrNotFound},
		{"wrong password", &fakeCanvasRepo{getOut: private}, "nope", common.ErrUnauthorized},
		{"missing password", &fakeCanvasRepo{getOut: private}, "", common.ErrUnauthorized},
		{"correct password", &fakeCanvasRepo{getOut: private}, "pw", nil},
		{"public ignores password", &fakeCanvasRepo{getOut: public}, "whatever", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newCanvasService(&fakeRepoManager{canvases: tt.repo})
			_, err := s.Join(context.Background(), "c1", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAppendOperation_AssignsIdentity(t *testing.T) {
	ops := &fakeOperationsRepo{}
	s := newCanvasService(&fakeRepoManager{operations: ops})

	draft := wire.OperationDraft{
		Tool:      wire.ToolBrush,
		Color:     "#00ff00",
		LineWidth: 2,
		Points:    []wire.Point{{X: 1, Y: 1}},
	}
	op, err := s.AppendOperation(context.Background(), "c1", "u1", draft)
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, "c1", op.CanvasID)
	assert.Equal(t, "u1", op.UserID)
	assert.False(t, op.CreatedAt.IsZero())
	require.Len(t, ops.appended, 1)
}

func TestAppendOperation_RejectsInvalidDraft(t *testing.T) {
	s := newCanvasService(&fakeRepoManager{operations: &fakeOperationsRepo{}})

	_, err := s.AppendOperation(context.Background(), "c1", "u1", wire.OperationDraft{})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestClearOperations(t *testing.T) {
	ops := &fakeOperationsRepo{}
	s := newCanvasService(&fakeRepoManager{operations: ops})

	require.NoError(t, s.ClearOperations(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, ops.deleted)
}

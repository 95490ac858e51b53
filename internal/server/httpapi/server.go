// Package httpapi exposes the canvas service over HTTP: account and token
// endpoints, canvas lifecycle, the durable operation log, and the websocket
// entry point for realtime sync.
package httpapi

import (
	"context"
	"net/http"

	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/server/hub"
	"github.com/Preethi0409/canvas/internal/server/models"
	"github.com/Preethi0409/canvas/internal/server/services"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// UserProvider is the slice of UserService the HTTP layer needs.
type UserProvider interface {
	Register(ctx context.Context, username, password, profilePic string) (*models.User, *services.TokenPair, error)
	Login(ctx context.Context, username, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	VerifyAccessToken(token string) (string, error)
}

// CanvasProvider is the slice of CanvasService the HTTP layer needs.
type CanvasProvider interface {
	Create(ctx context.Context, name string, isPrivate bool, password, ownerID string) (*models.Canvas, error)
	Join(ctx context.Context, id, password string) (*models.Canvas, error)
	ListPublic(ctx context.Context) ([]*models.Canvas, error)
	AppendOperation(ctx context.Context, canvasID, userID string, draft wire.OperationDraft) (*wire.Operation, error)
	LoadOperations(ctx context.Context, canvasID string) ([]wire.Operation, error)
	ClearOperations(ctx context.Context, canvasID string) error
}

type Server struct {
	logger   logging.Logger
	users    UserProvider
	canvases CanvasProvider
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewServer(logger logging.Logger, users UserProvider, canvases CanvasProvider, h *hub.Hub) *Server {
	return &Server{
		logger:   logger,
		users:    users,
		canvases: canvases,
		hub:      h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router assembles all routes. Everything under /api except registration,
// login and token refresh requires a valid access token.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/token/refresh", s.handleRefreshToken).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/canvases", s.handleListCanvases).Methods(http.MethodGet)
	api.HandleFunc("/canvases", s.handleCreateCanvas).Methods(http.MethodPost)
	api.HandleFunc("/canvases/{id}/join", s.handleJoinCanvas).Methods(http.MethodPost)
	api.HandleFunc("/canvases/{id}/operations", s.handleLoadOperations).Methods(http.MethodGet)
	api.HandleFunc("/canvases/{id}/operations", s.handleAppendOperation).Methods(http.MethodPost)
	api.HandleFunc("/canvases/{id}/operations", s.handleClearOperations).Methods(http.MethodDelete)

	r.HandleFunc("/ws/canvases/{id}", s.handleWebsocket).Methods(http.MethodGet)

	return r
}

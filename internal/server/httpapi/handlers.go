package httpapi

import (
	"net/http"
	"time"

	"github.com/Preethi0409/canvas/internal/server/models"
	"github.com/Preethi0409/canvas/internal/wire"
	"github.com/gorilla/mux"
)

type registerRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type userResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profilePic,omitempty"`
}

type authResponse struct {
	User         userResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type createCanvasRequest struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
	Password  string `json:"password,omitempty"`
}

type joinCanvasRequest struct {
	Password string `json:"password,omitempty"`
}

type canvasResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsPrivate bool      `json:"isPrivate"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

func toCanvasResponse(c *models.Canvas) canvasResponse {
	return canvasResponse{
		ID:        c.ID,
		Name:      c.Name,
		IsPrivate: c.IsPrivate,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	user, pair, err := s.users.Register(ctx, req.Username, req.Password, req.ProfilePic)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, authResponse{
		User:         userResponse{ID: user.ID, Username: user.Username, ProfilePic: user.ProfilePic},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	user, pair, err := s.users.Login(ctx, req.Username, req.Password)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, authResponse{
		User:         userResponse{ID: user.ID, Username: user.Username, ProfilePic: user.ProfilePic},
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req refreshRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	pair, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) handleListCanvases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := s.canvases.ListPublic(ctx)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	out := make([]canvasResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toCanvasResponse(c))
	}
	s.writeJSON(ctx, w, http.StatusOK, out)
}

func (s *Server) handleCreateCanvas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createCanvasRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	canvas, err := s.canvases.Create(ctx, req.Name, req.IsPrivate, req.Password, userIDFromContext(ctx))
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, toCanvasResponse(canvas))
}

func (s *Server) handleJoinCanvas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req joinCanvasRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			s.writeError(ctx, w, err)
			return
		}
	}

	canvas, err := s.canvases.Join(ctx, mux.Vars(r)["id"], req.Password)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, toCanvasResponse(canvas))
}

func (s *Server) handleLoadOperations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ops, err := s.canvases.LoadOperations(ctx, mux.Vars(r)["id"])
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusOK, ops)
}

func (s *Server) handleAppendOperation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var draft wire.OperationDraft
	if err := decodeBody(r, &draft); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	op, err := s.canvases.AppendOperation(ctx, mux.Vars(r)["id"], userIDFromContext(ctx), draft)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}
	s.writeJSON(ctx, w, http.StatusCreated, op)
}

func (s *Server) handleClearOperations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.canvases.ClearOperations(ctx, mux.Vars(r)["id"]); err != nil {
		s.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package httpapi

import (
	"net/http"

	"github.com/Preethi0409/canvas/internal/common"
	"github.com/gorilla/mux"
)

// handleWebsocket authenticates the caller, re-checks canvas access (private
// canvases take the password as a query parameter), upgrades the connection,
// and hands it to the hub until it drops.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	canvasID := mux.Vars(r)["id"]

	token := bearerToken(r)
	if token == "" {
		s.writeError(ctx, w, common.ErrUnauthorized)
		return
	}
	userID, err := s.users.VerifyAccessToken(token)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	if _, err := s.canvases.Join(ctx, canvasID, r.URL.Query().Get("password")); err != nil {
		s.writeError(ctx, w, err)
		return
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.writeError(ctx, w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		s.logger.Warn(ctx, "websocket upgrade failed", "canvas", canvasID, "error", err.Error())
		return
	}

	if err := s.hub.Join(ctx, canvasID, conn, user.ID, user.Username, user.ProfilePic); err != nil {
		s.logger.Error(ctx, "hub join failed", "canvas", canvasID, "error", err.Error())
		_ = conn.Close()
	}
}

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Preethi0409/canvas/internal/common"
)

type contextKey int

const userIDKey contextKey = iota

// bearerToken pulls the access token from the Authorization header, falling
// back to a query parameter for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get(common.AccessTokenHeaderName)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], common.AccessTokenScheme) {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(r.Context(), w, common.ErrUnauthorized)
			return
		}
		userID, err := s.users.VerifyAccessToken(token)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/fitlifeapp/fitlife/internal/common"
	"github.com/fitlifeapp/fitlife/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// requireAuth verifies the bearer token and stashes the user ID in the
// request context. Missing, malformed, and expired tokens all answer 401.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeader)
		if !strings.HasPrefix(header, common.BearerPrefix) {
			writeError(w, http.StatusUnauthorized, "Missing authorization token")
			return
		}

		token := strings.TrimPrefix(header, common.BearerPrefix)
		userID, err := auth.GetUserIDFromToken(token, []byte(s.config.SecretKey))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// requestUserID returns the authenticated user ID placed by requireAuth.
func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

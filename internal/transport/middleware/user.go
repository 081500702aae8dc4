package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/interlinear-backend/pkg/ctxutil"
)

// UserHeader is set by the upstream gateway after it authenticated the caller.
const UserHeader = "X-User-Id"

// ActingUser puts the user named by the X-User-Id header into the request
// context. A missing header leaves the request anonymous; handlers that need
// a user reject it. A malformed id is rejected with 401.
func ActingUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserHeader))
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil || id == uuid.Nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(r.Context(), id)))
	})
}

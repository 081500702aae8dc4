package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/interlinear-backend/pkg/ctxutil"
)

func TestActingUser(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   bool
	}{
		{name: "valid id", header: userID.String(), wantStatus: http.StatusOK, wantUser: true},
		{name: "padded id", header: "  " + userID.String() + " ", wantStatus: http.StatusOK, wantUser: true},
		{name: "anonymous", header: "", wantStatus: http.StatusOK},
		{name: "malformed", header: "not-a-uuid", wantStatus: http.StatusUnauthorized},
		{name: "nil uuid", header: uuid.Nil.String(), wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				called bool
				gotID  uuid.UUID
				gotOK  bool
			)
			handler := ActingUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotID, gotOK = ctxutil.UserIDFromCtx(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(UserHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.False(t, called, "handler must not run for a rejected request")
				return
			}
			assert.True(t, called)
			assert.Equal(t, tt.wantUser, gotOK)
			if tt.wantUser {
				assert.Equal(t, userID, gotID)
			}
		})
	}
}

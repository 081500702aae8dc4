// Package ctxutil carries request-scoped values (acting user, request id)
// through context.Context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	userKey    struct{}
	requestKey struct{}
)

// WithUserID returns ctx acting on behalf of user id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

// UserIDFromCtx reports the acting user. A missing or nil id is anonymous.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	if id, ok := ctx.Value(userKey{}).(uuid.UUID); ok && id != uuid.Nil {
		return id, true
	}
	return uuid.Nil, false
}

// UserIDPtrFromCtx is UserIDFromCtx for nullable audit columns: nil when
// anonymous.
func UserIDPtrFromCtx(ctx context.Context) *uuid.UUID {
	if id, ok := UserIDFromCtx(ctx); ok {
		return &id
	}
	return nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

// RequestIDFromCtx returns the request id, or "" outside a request.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestKey{}).(string)
	return id
}

package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity is the verified caller attached by RequireAuth and OptionalAuth.
type Identity struct {
	UserID       uuid.UUID
	Email        string
	Name         string
	IsSubscriber bool
	TokenID      string
	ExpiresAt    time.Time
}

// IdentityFromContext returns the caller, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxIdentity).(*Identity); ok {
		return v
	}
	return nil
}

// UserIDFromContext returns the caller id, or nil for anonymous requests.
func UserIDFromContext(ctx context.Context) *uuid.UUID {
	id := IdentityFromContext(ctx)
	if id == nil {
		return nil
	}
	userID := id.UserID
	return &userID
}

// WithIdentity injects the caller into the context.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity)
}

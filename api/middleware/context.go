package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey uint8

const (
	userIDKey contextKey = iota + 1
	accessIDKey
	visitorSessionKey
)

func valueOf[T comparable](ctx context.Context, key contextKey) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(key).(T)
	if !ok || v == zero {
		return zero, false
	}
	return v, true
}

func withValue(ctx context.Context, key contextKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

// UserIDFromContext returns the signed-in shopper, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return valueOf[uuid.UUID](ctx, userIDKey)
}

// AccessIDFromContext returns the jti of the bearer token or "".
func AccessIDFromContext(ctx context.Context) string {
	id, _ := valueOf[string](ctx, accessIDKey)
	return id
}

// VisitorSessionFromContext returns the X-OmniCart-Session value or "".
func VisitorSessionFromContext(ctx context.Context) string {
	session, _ := valueOf[string](ctx, visitorSessionKey)
	return session
}

func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return withValue(ctx, userIDKey, userID)
}

func WithAccessID(ctx context.Context, jti string) context.Context {
	return withValue(ctx, accessIDKey, jti)
}

func WithVisitorSession(ctx context.Context, session string) context.Context {
	return withValue(ctx, visitorSessionKey, session)
}

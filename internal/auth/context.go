package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/redmonkez12/taskdesk/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, UserContextKey, u)
}

// UserFromContext returns the user placed by RequireAuth.
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok && u != nil
}

// MustUserID returns the authenticated user's id. It panics when called
// outside a route guarded by RequireAuth.
func MustUserID(ctx context.Context) uuid.UUID {
	u, ok := UserFromContext(ctx)
	if !ok {
		panic("auth: no authenticated user in context")
	}
	return u.ID
}

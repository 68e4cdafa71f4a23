package identity

import (
	"context"

	"github.com/ovaphlow/pitchfork/identity-sdk-go/pkg/validation"
)

type userContextKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, u validation.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the user attached by AuthMiddleware, if any.
func UserFromContext(ctx context.Context) (validation.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(validation.User)
	return u, ok
}

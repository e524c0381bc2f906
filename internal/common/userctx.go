package common

import (
	"context"
)

// Identity holds the authenticated user attached to a request by the
// auth middleware. Only the fields downstream handlers need are carried.
type Identity struct {
	UserID string
	Email  string
}

type contextKey int

const identityKey contextKey = iota

// WithIdentity stores an Identity in the request context.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Identity from context, or nil if the
// request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

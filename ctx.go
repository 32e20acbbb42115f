package auth

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-blog-auth/middleware/jwtware"
)

var identityCtxKey = &contextKey{"identity"}
var claimsCtxKey = &contextKey{"claims"}

// DefaultContextKey is the router locals key used when none is configured
const DefaultContextKey = jwtware.DefaultContextKey

type contextKey struct {
	name string
}

// WithIdentity binds the identity to the given context
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext returns the identity bound to the request, if any
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(identityCtxKey).(*Identity)
	return identity, ok && identity != nil
}

// CurrentIdentity returns the bound identity or nil for anonymous requests
func CurrentIdentity(ctx context.Context) *Identity {
	identity, _ := IdentityFromContext(ctx)
	return identity
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterIdentity extracts the identity stored in router locals
func GetRouterIdentity(ctx router.Context, key string) (*Identity, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	identity, ok := raw.(*Identity)
	return identity, ok && identity != nil
}

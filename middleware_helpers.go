package auth

import (
	"context"

	"github.com/goliatone/go-blog-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// TokenValidatorAdapter exposes a TokenService to the jwtware middleware
func TokenValidatorAdapter(ts TokenService) jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(tokenString string) (jwtware.AuthClaims, error) {
		claims, err := ts.Validate(tokenString)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}

// IdentityResolverAdapter loads the identity named by the token subject.
// A subject that no longer exists yields ErrIdentityGone.
func IdentityResolverAdapter(provider IdentityProvider) jwtware.IdentityResolver {
	return func(ctx context.Context, claims jwtware.AuthClaims) (any, error) {
		identity, err := provider.FindIdentityByUsername(ctx, claims.Subject())
		if err != nil {
			if HasTextCode(err, TextCodeUserNotFound) {
				return nil, ErrIdentityGone
			}
			return nil, err
		}
		if identity == nil {
			return nil, ErrIdentityGone
		}
		return identity, nil
	}
}

// ContextEnricherAdapter stores the claims and the resolved identity in
// the request context for downstream services.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims, identity any) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		c = WithClaimsContext(c, authClaims)
	}

	if id, ok := identity.(*Identity); ok && id != nil {
		c = WithIdentity(c, id)
	}

	return c
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

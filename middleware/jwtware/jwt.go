package jwtware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var (
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
	ErrJWTRoleRequired       = errors.New("required role not found")
)

const (
	DefaultContextKey = "user"
	DefaultAuthScheme = "Bearer"
)

// TokenValidator checks a raw token and returns its claims.
// It is satisfied by the auth package token service through an adapter.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	return f(tokenString)
}

// AuthClaims is the subset of verified claims the middleware reads
type AuthClaims interface {
	Subject() string
	UserID() int64
	Roles() []string
	HasRole(role string) bool
}

// ValidationListener runs after a token verifies and before the identity is resolved.
type ValidationListener func(ctx router.Context, claims AuthClaims) error

// IdentityResolver turns verified claims into the value bound to the request.
// Returning an error short circuits the request through the ErrorHandler.
type IdentityResolver func(ctx context.Context, claims AuthClaims) (any, error)

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   func(router.Context, error) error
	ContextKey     string

	// Header holds the credential, Authorization by default
	Header string
	// AuthScheme prefixes the token in Header, matched case insensitively
	AuthScheme string

	// TokenValidator is required
	TokenValidator TokenValidator

	// AllowAnonymous lets requests without a usable token continue with
	// no identity bound. Tokens that are present but invalid are still rejected.
	AllowAnonymous bool

	RequiredRole string

	// IdentityResolver is optional. When nil the claims are bound as the identity.
	IdentityResolver IdentityResolver

	// ContextEnricher copies the resolved identity into the standard context.
	// It runs after IdentityResolver.
	ContextEnricher func(c context.Context, claims AuthClaims, identity any) context.Context

	ValidationListeners []ValidationListener
}

// New returns middleware that authenticates bearer tokens. A request is
// processed in stages: extract, validate, listen, authorize, resolve, bind.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, ok := BearerToken(ctx.Header(cfg.Header), cfg.AuthScheme)
			if !ok {
				if cfg.AllowAnonymous {
					return cfg.SuccessHandler(ctx)
				}
				return cfg.ErrorHandler(ctx, ErrJWTMissingOrMalformed)
			}

			identity, err := cfg.authenticate(ctx, raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, identity)
			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg Config) authenticate(ctx router.Context, raw string) (any, error) {
	claims, err := cfg.TokenValidator.Validate(raw)
	if err != nil {
		return nil, err
	}

	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, claims); err != nil {
			return nil, err
		}
	}

	if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
		return nil, fmt.Errorf("%w: %s", ErrJWTRoleRequired, cfg.RequiredRole)
	}

	var identity any = claims
	if cfg.IdentityResolver != nil {
		if identity, err = cfg.IdentityResolver(ctx.Context(), claims); err != nil {
			return nil, err
		}
	}

	if cfg.ContextEnricher != nil {
		ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims, identity))
	}

	return identity, nil
}

// BearerToken splits a "<scheme> <token>" header value. The scheme is
// matched case insensitively and the token must be non empty.
func BearerToken(header, scheme string) (string, bool) {
	value := strings.TrimSpace(header)
	prefix, token, found := strings.Cut(value, " ")
	if !found || scheme == "" || !strings.EqualFold(prefix, scheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("jwtware: TokenValidator is required")
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.Header == "" {
		cfg.Header = router.HeaderAuthorization
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = DefaultAuthScheme
	}

	return cfg
}

// defaultErrorHandler is the fallback used when Config.ErrorHandler is nil.
// Validator errors carrying a text code keep their status and code, bare
// errors are reported as AUTH_ERROR.
func defaultErrorHandler(c router.Context, err error) error {
	status := router.StatusUnauthorized
	code, message := "AUTH_ERROR", "Invalid or expired token"

	var rich *goerrors.Error
	switch {
	case errors.Is(err, ErrJWTMissingOrMalformed):
		code, message = "AUTHENTICATION_REQUIRED", "Authentication required"
	case errors.Is(err, ErrJWTRoleRequired):
		status = router.StatusForbidden
		code, message = "ACCESS_DENIED", "Access denied"
	case goerrors.As(err, &rich) && rich.TextCode != "":
		code, message = rich.TextCode, rich.Message
		if rich.Code != 0 {
			status = rich.Code
		}
	}

	return c.JSON(status, map[string]string{
		"code":    code,
		"message": message,
	})
}

package auth

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-blog-auth/middleware/jwtware"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// ErrorResponse is the JSON body written for every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// RouteAuthenticator builds the request identity middlewares
type RouteAuthenticator struct {
	auth         *Auther
	cfg          Config
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther *Auther, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, goerrors.New("http authenticator requires an authenticator", goerrors.CategoryInternal)
	}
	if cfg == nil {
		return nil, goerrors.New("http authenticator requires a config", goerrors.CategoryInternal)
	}

	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}
	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	a.Logger = normalizeLogger(logger)
	return a
}

func (a *RouteAuthenticator) contextKey() string {
	if key := a.cfg.GetContextKey(); key != "" {
		return key
	}
	return DefaultContextKey
}

// IdentityMiddleware verifies bearer tokens and binds the identity to the
// request. Requests without a bearer token continue anonymously.
func (a *RouteAuthenticator) IdentityMiddleware(listeners ...ValidationListener) router.MiddlewareFunc {
	cfg := jwtware.Config{
		ErrorHandler:     a.ErrorHandler,
		ContextKey:       a.contextKey(),
		Header:           router.HeaderAuthorization,
		AuthScheme:       a.cfg.GetAuthScheme(),
		TokenValidator:   TokenValidatorAdapter(a.auth.TokenService()),
		AllowAnonymous:   true,
		IdentityResolver: IdentityResolverAdapter(a.auth.IdentityProvider()),
		ContextEnricher:  ContextEnricherAdapter,
	}
	RegisterValidationListeners(&cfg, listeners...)
	return jwtware.New(cfg)
}

// RequireIdentity rejects anonymous requests with AUTHENTICATION_REQUIRED
func (a *RouteAuthenticator) RequireIdentity() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if _, ok := IdentityFromContext(ctx.Context()); !ok {
				return a.ErrorHandler(ctx, ErrAuthenticationRequired)
			}
			return ctx.Next()
		}
	}
}

// RequireRole rejects requests whose identity lacks role
func (a *RouteAuthenticator) RequireRole(role string) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if err := AssertRole(CurrentIdentity(ctx.Context()), role); err != nil {
				return a.ErrorHandler(ctx, err)
			}
			return ctx.Next()
		}
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	return WriteError(c, err, a.Logger)
}

// WriteError renders err as an ErrorResponse. Errors without a client
// facing classification are logged and written as INTERNAL_ERROR.
func WriteError(c router.Context, err error, logger Logger) error {
	logger = normalizeLogger(logger)
	status, body := ErrorResponseFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "details", errorDetails(err))
	} else {
		logger.Debug("request rejected", "code", body.Code, "status", status)
	}

	return c.JSON(status, body)
}

// ErrorResponseFor maps err to an HTTP status and response body
func ErrorResponseFor(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, jwtware.ErrJWTRoleRequired):
		err = ErrForbidden
	case errors.Is(err, jwtware.ErrJWTMissingOrMalformed):
		err = ErrAuthenticationRequired
	}

	var richErr *goerrors.Error
	if err == nil || !goerrors.As(err, &richErr) || richErr.Category == goerrors.CategoryInternal {
		return http.StatusInternalServerError, ErrorResponse{
			Code:    TextCodeInternal,
			Message: "An unexpected server error occurred",
		}
	}

	status := richErr.Code
	if status == 0 {
		status = statusForCategory(richErr)
	}
	if status >= http.StatusInternalServerError {
		return http.StatusInternalServerError, ErrorResponse{
			Code:    TextCodeInternal,
			Message: "An unexpected server error occurred",
		}
	}

	body := ErrorResponse{
		Code:    richErr.TextCode,
		Message: richErr.Message,
	}
	if body.Code == "" {
		body.Code = textCodeForStatus(status)
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		body.Details = verrs
	}

	return status, body
}

func statusForCategory(richErr *goerrors.Error) int {
	switch richErr.Category {
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func textCodeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return TextCodeAuthError
	case http.StatusForbidden:
		return TextCodeAccessDenied
	case http.StatusNotFound:
		return TextCodeResourceNotFound
	case http.StatusConflict:
		return TextCodeConflict
	case http.StatusBadRequest:
		return TextCodeValidationFailed
	default:
		return TextCodeInternal
	}
}

func errorDetails(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && len(richErr.Metadata) > 0 {
		return print.MaybePrettyJSON(richErr.Metadata)
	}
	return ""
}

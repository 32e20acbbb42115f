package auth

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controllers.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

type AuthControllerRoutes struct {
	Login   string
	Signup  string
	Refresh string
	Logout  string
}

type AuthController struct {
	Debug        bool
	Logger       Logger
	Auther       *Auther
	Routes       *AuthControllerRoutes
	ErrorHandler func(router.Context, error) error
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerErrorHandler(handler func(router.Context, error) error) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if handler != nil {
			c.ErrorHandler = handler
		}
		return c
	}
}

func NewAuthController(auther *Auther, opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Auther: auther,
		Routes: &AuthControllerRoutes{
			Login:   "/login",
			Signup:  "/signup",
			Refresh: "/refresh",
			Logout:  "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.ErrorHandler == nil {
		logger := c.Logger
		c.ErrorHandler = func(ctx router.Context, err error) error {
			return WriteError(ctx, err, logger)
		}
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the auth endpoints on group
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post(a.Routes.Login, a.LoginPost).SetName("auth.login")
	group.Post(a.Routes.Signup, a.SignupPost).SetName("auth.signup")
	group.Post(a.Routes.Refresh, a.RefreshPost).SetName("auth.refresh")
	group.Post(a.Routes.Logout, a.LogoutPost).SetName("auth.logout")
}

// LoginRequest payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// SignupRequest payload
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the account fields before validation. Login payloads are
// matched exactly.
func (r *SignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
	)
}

// RefreshRequest carries a refresh token for refresh and logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type validatable interface {
	Validate() error
}

type normalizer interface {
	Normalize()
}

func (a *AuthController) bind(ctx router.Context, payload validatable) error {
	if err := ctx.Bind(payload); err != nil {
		return NewValidationError(err)
	}
	if n, ok := payload.(normalizer); ok {
		n.Normalize()
	}
	if err := payload.Validate(); err != nil {
		return NewValidationError(err)
	}
	return nil
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)
	if err := a.bind(ctx, payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	res, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("login response", "user_id", res.UserID)
	}

	return ctx.JSON(router.StatusOK, res)
}

func (a *AuthController) SignupPost(ctx router.Context) error {
	payload := new(SignupRequest)
	if err := a.bind(ctx, payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("signup request", "username", payload.Username, "email", payload.Email)
	}

	res, err := a.Auther.Signup(ctx.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if a.Debug {
		a.Logger.Debug("signup response", "payload", print.MaybePrettyJSON(res))
	}

	return ctx.JSON(router.StatusOK, res)
}

func (a *AuthController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)
	if err := a.bind(ctx, payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	res, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.JSON(router.StatusOK, res)
}

func (a *AuthController) LogoutPost(ctx router.Context) error {
	payload := new(RefreshRequest)
	if err := a.bind(ctx, payload); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	if err := a.Auther.Logout(ctx.Context(), payload.RefreshToken); err != nil {
		return a.ErrorHandler(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

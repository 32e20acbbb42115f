package jwtware_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-blog-auth/middleware/jwtware"
)

// unimplemented backs the router.Context methods the fake does not override.
// Calling one of them panics on the nil interface.
type unimplemented = router.Context

var _ router.Context = (*fakeContext)(nil)

// fakeContext implements the parts of router.Context the middleware touches
type fakeContext struct {
	unimplemented
	headers    map[string]string
	locals     map[any]any
	ctx        context.Context
	status     int
	body       any
	nextCalled bool
}

func newFakeContext(headers map[string]string) *fakeContext {
	if headers == nil {
		headers = map[string]string{}
	}
	return &fakeContext{
		headers: headers,
		locals:  map[any]any{},
		ctx:     context.Background(),
	}
}

func (f *fakeContext) Header(key string) string { return f.headers[key] }

func (f *fakeContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		f.locals[key] = value[0]
		return value[0]
	}
	return f.locals[key]
}

func (f *fakeContext) Context() context.Context { return f.ctx }

func (f *fakeContext) SetContext(c context.Context) { f.ctx = c }

func (f *fakeContext) JSON(code int, val any) error {
	f.status = code
	f.body = val
	return nil
}

func (f *fakeContext) Next() error {
	f.nextCalled = true
	return nil
}

type testClaims struct {
	sub   string
	uid   int64
	roles []string
}

func (c testClaims) Subject() string { return c.sub }
func (c testClaims) UserID() int64   { return c.uid }
func (c testClaims) Roles() []string { return c.roles }
func (c testClaims) HasRole(role string) bool {
	for _, r := range c.roles {
		if r == role {
			return true
		}
	}
	return false
}

var errBadToken = errors.New("bad token")

func validatorFor(tokens map[string]jwtware.AuthClaims) jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(raw string) (jwtware.AuthClaims, error) {
		claims, ok := tokens[raw]
		if !ok {
			return nil, errBadToken
		}
		return claims, nil
	})
}

type ctxKey struct{}

func run(mw router.MiddlewareFunc, ctx *fakeContext) error {
	return mw(func(router.Context) error { return nil })(ctx)
}

func TestJWTWare_AnonymousPassThrough(t *testing.T) {
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(nil),
		AllowAnonymous: true,
	})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"scheme only", "Bearer"},
		{"scheme with spaces", "Bearer    "},
		{"other scheme", "Basic dXNlcjpwYXNz"},
		{"scheme without separator", "Bearerabc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			ctx := newFakeContext(headers)

			require.NoError(t, run(mw, ctx))
			assert.True(t, ctx.nextCalled)
			assert.Nil(t, ctx.locals["user"])
			assert.Zero(t, ctx.status)
		})
	}
}

func TestJWTWare_MissingTokenRejectedWhenRequired(t *testing.T) {
	var captured error
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(nil),
		ErrorHandler: func(c router.Context, err error) error {
			captured = err
			return err
		},
	})

	ctx := newFakeContext(nil)
	err := run(mw, ctx)

	assert.ErrorIs(t, err, jwtware.ErrJWTMissingOrMalformed)
	assert.ErrorIs(t, captured, jwtware.ErrJWTMissingOrMalformed)
	assert.False(t, ctx.nextCalled)
}

func TestJWTWare_InvalidTokenShortCircuits(t *testing.T) {
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(nil),
		AllowAnonymous: true,
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer forged"})
	require.NoError(t, run(mw, ctx))

	assert.False(t, ctx.nextCalled)
	assert.Equal(t, router.StatusUnauthorized, ctx.status)
	assert.Equal(t, map[string]string{
		"code":    "AUTH_ERROR",
		"message": "Invalid or expired token",
	}, ctx.body)
}

func TestJWTWare_BindsResolvedIdentity(t *testing.T) {
	claims := testClaims{sub: "alice", uid: 1, roles: []string{"user"}}
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(map[string]jwtware.AuthClaims{"good": claims}),
		AllowAnonymous: true,
		ContextKey:     "identity",
		IdentityResolver: func(ctx context.Context, c jwtware.AuthClaims) (any, error) {
			return "resolved:" + c.Subject(), nil
		},
		ContextEnricher: func(ctx context.Context, c jwtware.AuthClaims, identity any) context.Context {
			return context.WithValue(ctx, ctxKey{}, identity)
		},
	})

	ctx := newFakeContext(map[string]string{"Authorization": "bearer good"})
	require.NoError(t, run(mw, ctx))

	assert.True(t, ctx.nextCalled)
	assert.Equal(t, "resolved:alice", ctx.locals["identity"])
	assert.Equal(t, "resolved:alice", ctx.ctx.Value(ctxKey{}))
}

func TestJWTWare_ClaimsBoundWithoutResolver(t *testing.T) {
	claims := testClaims{sub: "alice", uid: 1}
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(map[string]jwtware.AuthClaims{"good": claims}),
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer good"})
	require.NoError(t, run(mw, ctx))

	assert.True(t, ctx.nextCalled)
	assert.Equal(t, claims, ctx.locals["user"])
}

func TestJWTWare_ResolverErrorShortCircuits(t *testing.T) {
	errGone := errors.New("identity gone")
	claims := testClaims{sub: "ghost"}

	var captured error
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(map[string]jwtware.AuthClaims{"good": claims}),
		IdentityResolver: func(context.Context, jwtware.AuthClaims) (any, error) {
			return nil, errGone
		},
		ErrorHandler: func(c router.Context, err error) error {
			captured = err
			return nil
		},
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer good"})
	require.NoError(t, run(mw, ctx))

	assert.ErrorIs(t, captured, errGone)
	assert.False(t, ctx.nextCalled)
	assert.Nil(t, ctx.locals["user"])
}

func TestJWTWare_RequiredRole(t *testing.T) {
	tokens := map[string]jwtware.AuthClaims{
		"admin":  testClaims{sub: "root", roles: []string{"user", "admin"}},
		"member": testClaims{sub: "bob", roles: []string{"user"}},
	}

	var captured error
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(tokens),
		RequiredRole:   "admin",
		ErrorHandler: func(c router.Context, err error) error {
			captured = err
			return nil
		},
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer admin"})
	require.NoError(t, run(mw, ctx))
	assert.True(t, ctx.nextCalled)

	ctx = newFakeContext(map[string]string{"Authorization": "Bearer member"})
	require.NoError(t, run(mw, ctx))
	assert.False(t, ctx.nextCalled)
	assert.ErrorIs(t, captured, jwtware.ErrJWTRoleRequired)
}

func TestJWTWare_ValidationListeners(t *testing.T) {
	claims := testClaims{sub: "alice"}
	var seen []string
	errStop := errors.New("stop")

	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(map[string]jwtware.AuthClaims{"good": claims}),
		ValidationListeners: []jwtware.ValidationListener{
			nil,
			func(ctx router.Context, c jwtware.AuthClaims) error {
				seen = append(seen, c.Subject())
				return nil
			},
			func(ctx router.Context, c jwtware.AuthClaims) error {
				return errStop
			},
		},
		ErrorHandler: func(c router.Context, err error) error { return err },
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer good"})
	err := run(mw, ctx)

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, []string{"alice"}, seen)
	assert.False(t, ctx.nextCalled)
}

func TestJWTWare_Filter(t *testing.T) {
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(nil),
		Filter:         func(router.Context) bool { return true },
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer forged"})
	require.NoError(t, run(mw, ctx))
	assert.True(t, ctx.nextCalled)
	assert.Zero(t, ctx.status)
}

func TestJWTWare_ConcurrentRequestsHaveIndependentIdentity(t *testing.T) {
	tokens := map[string]jwtware.AuthClaims{}
	names := []string{"alice", "bob", "carol", "dave"}
	for _, n := range names {
		tokens[n] = testClaims{sub: n}
	}

	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(tokens),
		ContextEnricher: func(ctx context.Context, c jwtware.AuthClaims, identity any) context.Context {
			return context.WithValue(ctx, ctxKey{}, c.Subject())
		},
	})

	var wg sync.WaitGroup
	results := make([]string, 40)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := names[i%len(names)]
			ctx := newFakeContext(map[string]string{"Authorization": "Bearer " + name})
			if err := run(mw, ctx); err == nil {
				results[i], _ = ctx.ctx.Value(ctxKey{}).(string)
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, names[i%len(names)], got)
	}
}

func TestGetDefaultConfig_RequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.GetDefaultConfig(jwtware.Config{})
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		scheme string
		token  string
		ok     bool
	}{
		{"canonical", "Bearer abc.def", "Bearer", "abc.def", true},
		{"lowercase scheme", "bearer abc", "Bearer", "abc", true},
		{"padded", "  Bearer   abc  ", "Bearer", "abc", true},
		{"empty", "", "Bearer", "", false},
		{"scheme only", "Bearer ", "Bearer", "", false},
		{"glued", "Bearerabc", "Bearer", "", false},
		{"other scheme", "Basic abc", "Bearer", "", false},
		{"no scheme configured", "Bearer abc", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, ok := jwtware.BearerToken(tt.header, tt.scheme)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestJWTWare_DefaultErrorHandlerCodes(t *testing.T) {
	tokens := map[string]jwtware.AuthClaims{"member": testClaims{sub: "bob", roles: []string{"user"}}}
	mw := jwtware.New(jwtware.Config{
		TokenValidator: validatorFor(tokens),
		RequiredRole:   "admin",
	})

	ctx := newFakeContext(nil)
	require.NoError(t, run(mw, ctx))
	assert.Equal(t, router.StatusUnauthorized, ctx.status)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", ctx.body.(map[string]string)["code"])

	ctx = newFakeContext(map[string]string{"Authorization": "Bearer member"})
	require.NoError(t, run(mw, ctx))
	assert.Equal(t, router.StatusForbidden, ctx.status)
	assert.Equal(t, "ACCESS_DENIED", ctx.body.(map[string]string)["code"])
}

func TestJWTWare_DefaultErrorHandlerKeepsTextCode(t *testing.T) {
	expired := goerrors.New("token is expired", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode("TOKEN_EXPIRED")

	mw := jwtware.New(jwtware.Config{
		TokenValidator: jwtware.TokenValidatorFunc(func(string) (jwtware.AuthClaims, error) {
			return nil, expired
		}),
	})

	ctx := newFakeContext(map[string]string{"Authorization": "Bearer stale"})
	require.NoError(t, run(mw, ctx))

	assert.False(t, ctx.nextCalled)
	assert.Equal(t, goerrors.CodeUnauthorized, ctx.status)
	assert.Equal(t, map[string]string{
		"code":    "TOKEN_EXPIRED",
		"message": "token is expired",
	}, ctx.body)
}

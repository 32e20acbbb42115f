package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningKeyID() string
	GetTokenExpiration() time.Duration
	GetRefreshTokenExpiration() time.Duration
	GetIssuer() string
	GetContextKey() string
	GetAuthScheme() string
}

// Clock is the time source for token issuance and expiry checks
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func normalizeClock(c Clock) Clock {
	if c == nil {
		return systemClock{}
	}
	return c
}

// Identity holds the attributes of an authenticated user that
// travel with the request
type Identity struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole checks if the identity carries the given role
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	return Roles(i.Roles).Has(role)
}

// CredentialVerifier validates a username and password pair
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*Identity, error)
}

// IdentityProvider resolves identities by their unique keys
type IdentityProvider interface {
	FindIdentityByUsername(ctx context.Context, username string) (*Identity, error)
	FindIdentityByID(ctx context.Context, id int64) (*Identity, error)
}

// TokenService issues and verifies access tokens
type TokenService interface {
	Generate(identity *Identity) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// RefreshTokenStore persists opaque refresh tokens
type RefreshTokenStore interface {
	Create(ctx context.Context, identity *Identity) (*RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	VerifyNotExpired(ctx context.Context, token *RefreshToken) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID int64) error
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Print(formatLine("[ERR] AUTH ", format, args...))
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Print(formatLine("[WRN] AUTH ", format, args...))
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Print(formatLine("[INF] AUTH ", format, args...))
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Print(formatLine("[DBG] AUTH ", format, args...))
}

// formatLine accepts both printf verbs and trailing key value pairs
func formatLine(prefix, format string, args ...any) string {
	if strings.Contains(format, "%") {
		return prefix + newline(fmt.Sprintf(format, args...))
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(format)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
		} else {
			fmt.Fprintf(&b, " %v", args[i])
		}
	}
	return newline(b.String())
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}

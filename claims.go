package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the typed view over a verified access token
type AuthClaims interface {
	Subject() string
	UserID() int64
	Roles() []string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       int64    `json:"uid"`
	UserRoles []string `json:"roles,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// NewClaimsFromIdentity builds the claim set for an identity without timing fields
func NewClaimsFromIdentity(identity *Identity) *JWTClaims {
	roles := make([]string, len(identity.Roles))
	copy(roles, identity.Roles)
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: identity.Username,
		},
		UID:       identity.ID,
		UserRoles: roles,
	}
}

// Subject returns the subject claim, the username
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() int64 {
	return c.UID
}

// Roles returns the roles embedded at issue time
func (c *JWTClaims) Roles() []string {
	return c.UserRoles
}

// HasRole checks if the token carries a specific role
func (c *JWTClaims) HasRole(role string) bool {
	return Roles(c.UserRoles).Has(role)
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

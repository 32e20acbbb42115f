package auth

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Username      string     `bun:"username,notnull,unique" json:"username"`
	Email         string     `bun:"email,notnull" json:"email"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Roles         []string   `bun:"roles" json:"roles"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Identity returns the request scoped view of the user
func (u *User) Identity() *Identity {
	if u == nil {
		return nil
	}
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return &Identity{
		ID:       u.ID,
		Username: u.Username,
		Roles:    roles,
	}
}

// RefreshToken links an opaque token to the user that owns it
type RefreshToken struct {
	bun.BaseModel `bun:"table:refresh_tokens,alias:rt"`
	Token         string     `bun:"token,pk" json:"token"`
	UserID        int64      `bun:"user_id,notnull" json:"user_id"`
	ExpiryDate    time.Time  `bun:"expiry_date,notnull" json:"expiry_date"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// IsExpired reports whether the token is past its expiry at the given time
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiryDate)
}

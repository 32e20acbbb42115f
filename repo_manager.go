package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	DB() *bun.DB
	Users() Users
	RefreshTokens() RefreshTokens
}

type mngr struct {
	db            *bun.DB
	users         Users
	refreshTokens RefreshTokens
}

// NewRepositoryManager wires the users and refresh token repositories.
// refreshTTL is the lifetime of newly issued refresh tokens.
func NewRepositoryManager(db *bun.DB, refreshTTL time.Duration, opts ...RefreshTokensOption) RepositoryManager {
	return &mngr{
		db:            db,
		users:         NewUsersRepository(db),
		refreshTokens: NewRefreshTokensRepository(db, refreshTTL, opts...),
	}
}

// Validate reports the first missing dependency as an internal error
func (m mngr) Validate() error {
	missing := ""
	switch {
	case m.db == nil:
		missing = "database"
	case m.users == nil:
		missing = "users repository"
	case m.refreshTokens == nil:
		missing = "refresh tokens repository"
	default:
		return nil
	}
	return errors.New("repository manager is missing its "+missing, errors.CategoryInternal).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeInternal)
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) DB() *bun.DB {
	return m.db
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) RefreshTokens() RefreshTokens {
	return m.refreshTokens
}

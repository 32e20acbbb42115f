package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RefreshTokens is the bun backed RefreshTokenStore.
// Every method has a Tx twin so callers can join an open transaction.
type RefreshTokens interface {
	RefreshTokenStore

	CreateTx(ctx context.Context, tx bun.IDB, identity *Identity) (*RefreshToken, error)
	FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error)
	VerifyNotExpiredTx(ctx context.Context, tx bun.IDB, token *RefreshToken) (*RefreshToken, error)
	DeleteTx(ctx context.Context, tx bun.IDB, token string) error
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID int64) error
}

type refreshTokens struct {
	db    *bun.DB
	ttl   time.Duration
	clock Clock
	newID func() string
}

var _ RefreshTokens = (*refreshTokens)(nil)

// RefreshTokensOption customizes the refresh token repository
type RefreshTokensOption func(*refreshTokens)

// WithRefreshTokensClock sets the time source for expiry computation
func WithRefreshTokensClock(c Clock) RefreshTokensOption {
	return func(r *refreshTokens) {
		r.clock = normalizeClock(c)
	}
}

// NewRefreshTokensRepository returns a store that issues tokens valid for ttl
func NewRefreshTokensRepository(db *bun.DB, ttl time.Duration, opts ...RefreshTokensOption) RefreshTokens {
	r := &refreshTokens{
		db:    db,
		ttl:   ttl,
		clock: systemClock{},
		newID: NewRefreshTokenValue,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NewRefreshTokenValue returns a random version 4 UUID string
func NewRefreshTokenValue() string {
	return uuid.NewString()
}

func (r *refreshTokens) Create(ctx context.Context, identity *Identity) (*RefreshToken, error) {
	return r.CreateTx(ctx, r.db, identity)
}

func (r *refreshTokens) CreateTx(ctx context.Context, tx bun.IDB, identity *Identity) (*RefreshToken, error) {
	if identity == nil {
		return nil, errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := r.clock.Now()
	record := &RefreshToken{
		Token:      r.newID(),
		UserID:     identity.ID,
		ExpiryDate: now.Add(r.ttl),
		CreatedAt:  &now,
	}

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	return record, nil
}

func (r *refreshTokens) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	return r.FindByTokenTx(ctx, r.db, token)
}

func (r *refreshTokens) FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*RefreshToken, error) {
	if token == "" {
		return nil, ErrRefreshTokenNotFound
	}

	record := &RefreshToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load refresh token")
	}

	return record, nil
}

func (r *refreshTokens) VerifyNotExpired(ctx context.Context, token *RefreshToken) (*RefreshToken, error) {
	return r.VerifyNotExpiredTx(ctx, r.db, token)
}

// VerifyNotExpiredTx deletes the record and returns ErrTokenExpired once the
// token is past its expiry, otherwise it returns the token unchanged.
func (r *refreshTokens) VerifyNotExpiredTx(ctx context.Context, tx bun.IDB, token *RefreshToken) (*RefreshToken, error) {
	if token == nil {
		return nil, ErrRefreshTokenNotFound
	}

	if !token.IsExpired(r.clock.Now()) {
		return token, nil
	}

	if err := r.DeleteTx(ctx, tx, token.Token); err != nil {
		return nil, err
	}

	return nil, ErrTokenExpired
}

func (r *refreshTokens) Delete(ctx context.Context, token string) error {
	return r.DeleteTx(ctx, r.db, token)
}

func (r *refreshTokens) DeleteTx(ctx context.Context, tx bun.IDB, token string) error {
	_, err := tx.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("token = ?", token).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete refresh token")
	}
	return nil
}

func (r *refreshTokens) DeleteByUser(ctx context.Context, userID int64) error {
	return r.DeleteByUserTx(ctx, r.db, userID)
}

func (r *refreshTokens) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID int64) error {
	_, err := tx.NewDelete().
		Model((*RefreshToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to delete user refresh tokens").
			WithMetadata(map[string]any{"user_id": userID})
	}
	return nil
}

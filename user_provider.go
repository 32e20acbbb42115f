package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// UserFinder is a store we can use to retrieve users
type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// UserProvider verifies credentials and resolves identities
type UserProvider struct {
	store  UserFinder
	hasher PasswordHasher
	logger Logger
}

var (
	_ CredentialVerifier = (*UserProvider)(nil)
	_ IdentityProvider   = (*UserProvider)(nil)
)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder, hasher PasswordHasher) *UserProvider {
	if hasher == nil {
		hasher = NewBcryptHasher(0)
	}
	return &UserProvider{
		store:  store,
		hasher: hasher,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.logger = normalizeLogger(l)
	return u
}

// Verify will find the user, compare to the password, and return identity
func (u *UserProvider) Verify(ctx context.Context, username, password string) (*Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, u.mapLookupError(err, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	if err := u.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrBadCredentials
	}

	return user.Identity(), nil
}

func (u *UserProvider) FindIdentityByUsername(ctx context.Context, username string) (*Identity, error) {
	user, err := u.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, u.mapLookupError(err, "failed to retrieve user by username")
	}
	if user == nil {
		return nil, ErrIdentityNotFound
	}
	return user.Identity(), nil
}

func (u *UserProvider) FindIdentityByID(ctx context.Context, id int64) (*Identity, error) {
	user, err := u.store.GetByID(ctx, id)
	if err != nil {
		return nil, u.mapLookupError(err, "failed to retrieve user by id")
	}
	if user == nil {
		return nil, ErrIdentityNotFound
	}
	return user.Identity(), nil
}

func (u *UserProvider) mapLookupError(err error, msg string) error {
	if isNotFound(err) {
		return ErrIdentityNotFound
	}
	u.logger.Error(msg, "error", err)
	return internalError(err, msg)
}

func isNotFound(err error) bool {
	return repository.IsRecordNotFound(err) || errors.IsNotFound(err)
}

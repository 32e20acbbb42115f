package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-blog-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	auther *auth.Auther
	tokens *auth.TokenServiceImpl
	repo   auth.RepositoryManager
	clock  *testClock
	events []auth.ActivityEvent
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{clock: newTestClock()}
	db := newTestDB(t)
	f.repo = auth.NewRepositoryManager(db, 24*time.Hour, auth.WithRefreshTokensClock(f.clock))
	f.repo.MustValidate()

	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	provider := auth.NewUserProvider(f.repo.Users(), hasher).WithLogger(quietLogger())
	f.tokens = newTestTokenService(f.clock)

	f.auther = auth.NewAuthenticator(provider, provider, f.tokens, f.repo.RefreshTokens()).
		WithRegisterHandler(auth.NewRegisterUserHandler(f.repo, hasher)).
		WithClock(f.clock).
		WithLogger(quietLogger()).
		WithActivitySink(auth.ActivitySinkFunc(func(_ context.Context, event auth.ActivityEvent) error {
			f.events = append(f.events, event)
			return nil
		}))

	return f
}

func (f *authFixture) lastEvent() auth.ActivityEvent {
	if len(f.events) == 0 {
		return auth.ActivityEvent{}
	}
	return f.events[len(f.events)-1]
}

func TestAuthenticator_AliceScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	signup, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	assert.NotZero(t, signup.UserID)
	assert.Equal(t, "alice", signup.Username)
	assert.Equal(t, auth.ActivityEventSignupSuccess, f.lastEvent().EventType)

	login, err := f.auther.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.NotEmpty(t, login.RefreshToken)
	assert.Equal(t, signup.UserID, login.UserID)
	assert.Equal(t, auth.ActivityEventLoginSuccess, f.lastEvent().EventType)

	claims, err := f.tokens.Validate(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject())
	assert.Equal(t, signup.UserID, claims.UserID())
	assert.Equal(t, []string{auth.RoleUser}, claims.Roles())

	_, err = f.auther.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, auth.ErrBadCredentials)
	assert.Equal(t, auth.ActivityEventLoginFailure, f.lastEvent().EventType)
	assert.Equal(t, auth.TextCodeBadCredentials, f.lastEvent().TextCode)
}

func TestAuthenticator_LoginUnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.auther.Login(context.Background(), "nobody", "secret123")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	assert.True(t, goerrors.IsNotFound(err))
}

func TestAuthenticator_LoginDoesNotTrimUsername(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)

	result, err := f.auther.Login(ctx, " alice ", "secret123")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestAuthenticator_SignupConflict(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)

	result, err := f.auther.Signup(ctx, "alice", "other@x.com", "secret456")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
	assert.Equal(t, auth.TextCodeConflict, f.lastEvent().TextCode)
}

func TestAuthenticator_SignupStoresHashOnly(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "A@X.com", "secret123")
	require.NoError(t, err)

	user, err := f.repo.Users().GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestAuthenticator_SignupRequiresHandler(t *testing.T) {
	f := newAuthFixture(t)
	bare := auth.NewAuthenticator(nil, nil, f.tokens, f.repo.RefreshTokens()).WithLogger(quietLogger())

	_, err := bare.Signup(context.Background(), "alice", "a@x.com", "secret123")
	assert.True(t, auth.HasTextCode(err, auth.TextCodeInternal))
}

func TestAuthenticator_SequentialRefreshesSucceed(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	login, err := f.auther.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	first, err := f.auther.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, first.RefreshToken)

	f.clock.Advance(time.Minute)
	second, err := f.auther.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, login.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	for _, token := range []string{first.AccessToken, second.AccessToken} {
		claims, err := f.tokens.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject())
	}
	assert.Equal(t, auth.ActivityEventRefreshSuccess, f.lastEvent().EventType)
}

func TestAuthenticator_RefreshUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.auther.Refresh(context.Background(), "not-a-token")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound)
	assert.Equal(t, auth.ActivityEventRefreshFailure, f.lastEvent().EventType)
	assert.Equal(t, auth.TextCodeTokenNotFound, f.lastEvent().TextCode)
}

func TestAuthenticator_RefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	login, err := f.auther.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	f.clock.Advance(24 * time.Hour)
	_, err = f.auther.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)

	_, err = f.auther.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound)
}

func TestAuthenticator_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)
	login, err := f.auther.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	require.NoError(t, f.auther.Logout(ctx, login.RefreshToken))
	assert.Equal(t, auth.ActivityEventLogout, f.lastEvent().EventType)

	_, err = f.auther.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrRefreshTokenNotFound)

	assert.NoError(t, f.auther.Logout(ctx, login.RefreshToken))
	assert.NoError(t, f.auther.Logout(ctx, ""))
}

type failingRefreshStore struct {
	auth.RefreshTokenStore
	err error
}

func (s failingRefreshStore) Create(context.Context, *auth.Identity) (*auth.RefreshToken, error) {
	return nil, s.err
}

func TestAuthenticator_LoginFailsWhenRefreshTokenCannotPersist(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auther.Signup(ctx, "alice", "a@x.com", "secret123")
	require.NoError(t, err)

	storeErr := goerrors.New("db down", goerrors.CategoryInternal)
	provider := auth.NewUserProvider(f.repo.Users(), auth.NewBcryptHasher(bcrypt.MinCost))
	broken := auth.NewAuthenticator(provider, provider, f.tokens, failingRefreshStore{err: storeErr}).
		WithLogger(quietLogger())

	result, err := broken.Login(ctx, "alice", "secret123")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, storeErr)
}

package auth

import (
	"context"

	"github.com/goliatone/go-command"
	"github.com/goliatone/go-print"
)

// LoginResult is returned by a successful login
type LoginResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
}

// RefreshResult is returned by a successful refresh
type RefreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignupResult summarizes a newly registered user
type SignupResult struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Auther orchestrates the login, refresh, signup and logout flows
type Auther struct {
	verifier     CredentialVerifier
	identities   IdentityProvider
	tokenService TokenService
	refresh      RefreshTokenStore
	register     command.Commander[RegisterUserMessage]
	activitySink ActivitySink
	clock        Clock
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(
	verifier CredentialVerifier,
	identities IdentityProvider,
	tokenService TokenService,
	refresh RefreshTokenStore,
) *Auther {
	return &Auther{
		verifier:     verifier,
		identities:   identities,
		tokenService: tokenService,
		refresh:      refresh,
		activitySink: noopActivitySink{},
		clock:        systemClock{},
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithRegisterHandler sets the command used by Signup
func (s *Auther) WithRegisterHandler(handler command.Commander[RegisterUserMessage]) *Auther {
	s.register = handler
	return s
}

func (s *Auther) WithClock(clock Clock) *Auther {
	s.clock = normalizeClock(clock)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// IdentityProvider returns the provider used to resolve token subjects
func (s *Auther) IdentityProvider() IdentityProvider {
	return s.identities
}

func (s *Auther) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		s.logger.Warn("Login verify identity error", "error", err)
		s.emit(ctx, ActivityEventLoginFailure, nil, username, err)
		return nil, err
	}

	if identity == nil {
		s.emit(ctx, ActivityEventLoginFailure, nil, username, ErrIdentityNotFound)
		return nil, ErrIdentityNotFound
	}

	accessToken, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login generate access token error", "error", err)
		s.emit(ctx, ActivityEventLoginFailure, identity, username, err)
		return nil, err
	}

	refreshToken, err := s.refresh.Create(ctx, identity)
	if err != nil {
		s.logger.Error("Login persist refresh token error", "error", err)
		s.emit(ctx, ActivityEventLoginFailure, identity, username, err)
		return nil, err
	}

	s.logger.Debug("Login identity", "identity", print.MaybePrettyJSON(identity))
	s.emit(ctx, ActivityEventLoginSuccess, identity, username, nil)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		UserID:       identity.ID,
	}, nil
}

// Refresh exchanges a refresh token for a new access token. The presented
// refresh token is returned unchanged and stays valid until it expires.
func (s *Auther) Refresh(ctx context.Context, token string) (*RefreshResult, error) {
	record, err := s.refresh.FindByToken(ctx, token)
	if err != nil {
		s.emit(ctx, ActivityEventRefreshFailure, nil, "", err)
		return nil, err
	}

	record, err = s.refresh.VerifyNotExpired(ctx, record)
	if err != nil {
		s.emit(ctx, ActivityEventRefreshFailure, nil, "", err)
		return nil, err
	}

	identity, err := s.identities.FindIdentityByID(ctx, record.UserID)
	if err != nil {
		s.logger.Warn("Refresh resolve identity error", "error", err)
		s.emit(ctx, ActivityEventRefreshFailure, nil, "", err)
		return nil, err
	}

	accessToken, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Refresh generate access token error", "error", err)
		s.emit(ctx, ActivityEventRefreshFailure, identity, identity.Username, err)
		return nil, err
	}

	s.emit(ctx, ActivityEventRefreshSuccess, identity, identity.Username, nil)

	return &RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: record.Token,
	}, nil
}

func (s *Auther) Signup(ctx context.Context, username, email, password string) (*SignupResult, error) {
	if s.register == nil {
		return nil, internalError(ErrNoRegisterHandler, "signup is not configured")
	}

	user := &User{}
	err := s.register.Execute(ctx, RegisterUserMessage{
		Username: username,
		Email:    email,
		Password: password,
		Output:   user,
	})
	if err != nil {
		s.logger.Warn("Signup register user error", "error", err)
		s.emit(ctx, ActivityEventSignupFailure, nil, username, err)
		return nil, err
	}

	s.emit(ctx, ActivityEventSignupSuccess, user.Identity(), user.Username, nil)

	return &SignupResult{
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

// Logout deletes the refresh token. Unknown tokens are ignored.
func (s *Auther) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.refresh.Delete(ctx, token); err != nil {
		s.logger.Error("Logout delete refresh token error", "error", err)
		return err
	}

	s.emit(ctx, ActivityEventLogout, nil, "", nil)
	return nil
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, identity *Identity, username string, cause error) {
	event := ActivityEvent{
		EventType:  eventType,
		Username:   username,
		TextCode:   errorTextCode(cause),
		OccurredAt: s.clock.Now().UTC(),
	}
	if identity != nil {
		event.UserID = identity.ID
		if event.Username == "" {
			event.Username = identity.Username
		}
	}

	if err := s.activitySink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink error", "event", eventType, "error", err)
	}
}


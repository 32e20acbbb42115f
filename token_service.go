package auth

import (
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultSigningKeyID is used in the kid header when none is configured
const DefaultSigningKeyID = "primary"

// TokenServiceImpl implements the TokenService interface.
// It is immutable after construction and safe for concurrent use.
type TokenServiceImpl struct {
	signingKey       []byte
	keyID            string
	verificationKeys map[string][]byte
	tokenExpiration  time.Duration
	issuer           string
	clock            Clock
	keyfunc          jwt.Keyfunc
	logger           Logger
}

// TokenServiceOption customizes a TokenServiceImpl at construction time
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenClock sets the time source used for issuing and verifying tokens
func WithTokenClock(c Clock) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.clock = normalizeClock(c)
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(l Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.logger = normalizeLogger(l)
	}
}

// WithVerificationKey accepts tokens signed with a retired key under the given kid.
// New tokens are always signed with the primary key.
func WithVerificationKey(kid string, key []byte) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if kid == "" || len(key) == 0 {
			return
		}
		ts.verificationKeys[kid] = append([]byte(nil), key...)
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, keyID string, tokenExpiration time.Duration, issuer string, opts ...TokenServiceOption) *TokenServiceImpl {
	if keyID == "" {
		keyID = DefaultSigningKeyID
	}

	ts := &TokenServiceImpl{
		signingKey:       append([]byte(nil), signingKey...),
		keyID:            keyID,
		verificationKeys: map[string][]byte{},
		tokenExpiration:  tokenExpiration,
		issuer:           issuer,
		clock:            systemClock{},
		logger:           defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	ts.verificationKeys[ts.keyID] = ts.signingKey
	ts.keyfunc = buildKeyfunc(ts.verificationKeys)

	return ts
}

// NewTokenServiceFromConfig creates a TokenService from auth Config
func NewTokenServiceFromConfig(cfg Config, opts ...TokenServiceOption) *TokenServiceImpl {
	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetSigningKeyID(),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		opts...,
	)
}

func buildKeyfunc(keys map[string][]byte) jwt.Keyfunc {
	given := make(map[string]keyfunc.GivenKey, len(keys))
	for kid, key := range keys {
		given[kid] = keyfunc.NewGivenCustom(key, keyfunc.GivenKeyOptions{
			Algorithm: jwt.SigningMethodHS256.Alg(),
		})
	}
	return keyfunc.NewGiven(given).Keyfunc
}

// Generate creates a JWT for the identity expiring after the configured TTL
func (ts *TokenServiceImpl) Generate(identity *Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity must not be nil", errors.CategoryInternal)
	}

	now := ts.clock.Now()
	claims := NewClaimsFromIdentity(identity)
	claims.Issuer = ts.issuer
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.tokenExpiration))

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = ts.keyID

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.clock.Now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, ts.keyfunc, parserOptions...)
	if err != nil {
		return nil, ts.mapParseError(err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}

func (ts *TokenServiceImpl) mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		ts.logger.Debug("TokenService rejected token signature", "error", err)
		return ErrTokenInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		ts.logger.Debug("TokenService rejected token claims", "error", err)
		return ErrTokenMalformed
	}
}

// TokenExpiration returns the access token TTL
func (ts *TokenServiceImpl) TokenExpiration() time.Duration {
	return ts.tokenExpiration
}

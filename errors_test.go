package auth_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-blog-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestTokenErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		expired   bool
		malformed bool
		signature bool
	}{
		{
			name:    "expired sentinel",
			err:     auth.ErrTokenExpired,
			expired: true,
		},
		{
			name:      "malformed sentinel",
			err:       auth.ErrTokenMalformed,
			malformed: true,
		},
		{
			name:      "invalid signature sentinel",
			err:       auth.ErrTokenInvalidSignature,
			signature: true,
		},
		{
			name: "string that looks like an expired error",
			err:  errors.New("some wrapper: token is expired"),
		},
		{
			name: "different structured error",
			err:  auth.ErrIdentityNotFound,
		},
		{
			name: "nil error",
			err:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, auth.IsTokenExpiredError(tt.err))
			assert.Equal(t, tt.malformed, auth.IsMalformedError(tt.err))
			assert.Equal(t, tt.signature, auth.IsInvalidSignatureError(tt.err))
			assert.Equal(t, tt.expired || tt.malformed || tt.signature, auth.IsTokenError(tt.err))
		})
	}
}

func TestSentinelCodes(t *testing.T) {
	tests := []struct {
		err      *goerrors.Error
		code     int
		textCode string
	}{
		{auth.ErrIdentityNotFound, goerrors.CodeNotFound, "USER_NOT_FOUND"},
		{auth.ErrRefreshTokenNotFound, goerrors.CodeNotFound, "TOKEN_NOT_FOUND"},
		{auth.ErrBadCredentials, goerrors.CodeUnauthorized, "BAD_CREDENTIALS"},
		{auth.ErrUsernameTaken, goerrors.CodeConflict, "CONFLICT"},
		{auth.ErrTokenExpired, goerrors.CodeUnauthorized, "TOKEN_EXPIRED"},
		{auth.ErrTokenMalformed, goerrors.CodeUnauthorized, "TOKEN_MALFORMED"},
		{auth.ErrTokenInvalidSignature, goerrors.CodeUnauthorized, "TOKEN_INVALID_SIGNATURE"},
		{auth.ErrIdentityGone, goerrors.CodeUnauthorized, "AUTH_ERROR"},
		{auth.ErrForbidden, goerrors.CodeForbidden, "ACCESS_DENIED"},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.True(t, auth.HasTextCode(tt.err, tt.textCode))
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := auth.NewValidationError(errors.New("username: cannot be blank"))

	assert.Equal(t, goerrors.CodeBadRequest, err.Code)
	assert.Equal(t, auth.TextCodeValidationFailed, err.TextCode)
	assert.Equal(t, goerrors.CategoryValidation, err.Category)
}

package auth

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeUserNotFound           = "USER_NOT_FOUND"
	TextCodeTokenNotFound          = "TOKEN_NOT_FOUND"
	TextCodeResourceNotFound       = "RESOURCE_NOT_FOUND"
	TextCodeBadCredentials         = "BAD_CREDENTIALS"
	TextCodeConflict               = "CONFLICT"
	TextCodeTokenExpired           = "TOKEN_EXPIRED"
	TextCodeTokenMalformed         = "TOKEN_MALFORMED"
	TextCodeTokenInvalidSignature  = "TOKEN_INVALID_SIGNATURE"
	TextCodeAuthError              = "AUTH_ERROR"
	TextCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	TextCodeAccessDenied           = "ACCESS_DENIED"
	TextCodeValidationFailed       = "VALIDATION_FAILED"
	TextCodeInternal               = "INTERNAL_ERROR"
)

// ErrIdentityNotFound is returned when no identity matches a username or id
var ErrIdentityNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrRefreshTokenNotFound is returned when a refresh token is not in the store
var ErrRefreshTokenNotFound = errors.New("refresh token is not in database", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeTokenNotFound)

// ErrResourceNotFound is returned by resource services for missing records
var ErrResourceNotFound = errors.New("resource not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeResourceNotFound)

// ErrBadCredentials is returned when the password does not match
var ErrBadCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeBadCredentials)

// ErrUsernameTaken is returned on signup when the username is already registered
var ErrUsernameTaken = errors.New("username is already taken", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeConflict)

// ErrTokenExpired is returned for access or refresh tokens past their expiry
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned when a token cannot be parsed
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrTokenInvalidSignature is returned when a token signature does not verify
var ErrTokenInvalidSignature = errors.New("token signature is invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalidSignature)

// ErrIdentityGone is returned when a valid token names a user that no longer exists
var ErrIdentityGone = errors.New("user for token not found", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeAuthError)

// ErrAuthenticationRequired is returned when an anonymous request reaches a protected operation
var ErrAuthenticationRequired = errors.New("authentication required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeAuthenticationRequired)

// ErrForbidden is returned when the current identity does not own the resource
var ErrForbidden = errors.New("you are not allowed to modify this resource", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeAccessDenied)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeValidationFailed)

// ErrNoRegisterHandler is returned by Signup when no register command is wired
var ErrNoRegisterHandler = errors.New("register handler is not configured", errors.CategoryInternal)

// HasTextCode reports whether err carries the given text code
func HasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return HasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for tokens that could not be parsed
func IsMalformedError(err error) bool {
	return HasTextCode(err, TextCodeTokenMalformed)
}

// IsInvalidSignatureError will check for tokens with a bad signature
func IsInvalidSignatureError(err error) bool {
	return HasTextCode(err, TextCodeTokenInvalidSignature)
}

// IsTokenError reports whether err is one of the access token failures
func IsTokenError(err error) bool {
	return IsTokenExpiredError(err) || IsMalformedError(err) || IsInvalidSignatureError(err)
}

// NewValidationError wraps input validation failures as a bad request
func NewValidationError(err error) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, "validation failed").
		WithCode(errors.CodeBadRequest).
		WithTextCode(TextCodeValidationFailed)
}

func internalError(err error, msg string) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeInternal)
}

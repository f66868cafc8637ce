package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is returned when no user matches the given identifier.
var ErrIdentityNotFound = errors.New("no user exists with this identifier", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrDuplicateIdentity is returned when the username or email is taken.
var ErrDuplicateIdentity = errors.New("user with this email or username already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("IDENTITY_EXISTS")

// ErrMismatchedHashAndPassword is returned on password verification failure.
// The message deliberately does not reveal whether the identifier exists.
var ErrMismatchedHashAndPassword = errors.New("given credentials are not correct", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("BAD_CREDENTIALS")

// ErrUnauthorized is returned when a request carries no token at all.
var ErrUnauthorized = errors.New("unauthorized request", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("UNAUTHORIZED")

// ErrTokenExpired is returned for tokens past their expiry.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenMalformed is returned for tokens that fail signature or shape checks.
var ErrTokenMalformed = errors.New("invalid token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrTokenRevoked is returned when a presented refresh token no longer matches
// the single stored instance, i.e. it was superseded by rotation or cleared
// on logout.
var ErrTokenRevoked = errors.New("refresh token expired or already used", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_REVOKED")

// ErrNoEmptyString rejects blank required input.
var ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMPTY_VALUE")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed")
}

package console

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeTokenExpired       = "TOKEN_EXPIRED"
	textCodeTokenInvalid       = "TOKEN_INVALID"
	textCodeAuthRequired       = "AUTH_REQUIRED"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords so responses cannot be used to enumerate accounts.
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the uniform verification failure from the
// password hasher, covering wrong passwords and malformed hash records alike.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExpired is returned when a session token is past its expiry. The
// message matches ErrTokenMalformed so the two are indistinguishable to
// clients; the text code keeps them apart in logs.
var ErrTokenExpired = goerrors.New("invalid or expired session token", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for unparseable, tampered, or wrongly signed
// session tokens.
var ErrTokenMalformed = goerrors.New("invalid or expired session token", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrAuthorizationRequired is returned when a request carries no token in
// either the session cookie or the Authorization header.
var ErrAuthorizationRequired = goerrors.New("no token, authorization denied", goerrors.CategoryAuth).
	WithTextCode(textCodeAuthRequired).
	WithCode(goerrors.CodeUnauthorized)

// NewConflictError builds the uniqueness-violation error for a registration
// insert, naming the field that collided.
func NewConflictError(field string) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("%s already exists. Please use another one.", field),
		goerrors.CategoryConflict,
	).
		WithTextCode("DUPLICATE_" + strings.ToUpper(field)).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{"field": field})
}

// ConflictField returns the colliding field name for a conflict error, or ""
// if err is not a uniqueness violation.
func ConflictField(err error) string {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	if richErr.Category != goerrors.CategoryConflict {
		return ""
	}
	if field, ok := richErr.Metadata["field"].(string); ok {
		return field
	}
	return ""
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed token")
}

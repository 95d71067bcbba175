package infrastructure

import (
	"errors"
	"fmt"
)

// Domain errors shared by the services and the HTTP layer. The HTTP layer
// maps each sentinel to a stable machine-readable status string.
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrBadUsername            = errors.New("username contains prohibited words")
	ErrBadNickname            = errors.New("nickname contains prohibited words")
	ErrWrongEmailCode         = errors.New("wrong or missing email code")
	ErrIdentifierTaken        = errors.New("username or email already exists")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrMissingIdentifier      = errors.New("either email or username must be provided")
	ErrMultipleIdentifiers    = errors.New("provide either email or username, not both")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidToken           = errors.New("invalid access token")
	ErrTokenExpired           = errors.New("access token has expired")
	ErrUnavailable            = errors.New("backing store unavailable")
	ErrInternal               = errors.New("internal server error")
)

// InvalidInput wraps ErrInvalidInput with the offending field so handlers
// can report which value was rejected without a separate error type per field.
func InvalidInput(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidInput, field, reason)
}

// Unavailable marks a transient backing-store failure as safe to retry.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

package errors

import (
	"errors"
	"fmt"
)

// Common error types for the job board client and server
var (
	// Authentication errors
	ErrAuthFailed         = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrAuthExpired        = errors.New("authentication expired")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Transport errors
	ErrNetworkFailure  = errors.New("network failure")
	ErrOperationFailed = errors.New("operation failed")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrDuplicate    = errors.New("already exists")
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

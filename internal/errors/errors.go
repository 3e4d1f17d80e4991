package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portfolio service
var (
	// Configuration errors
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Callback errors
	ErrNoCredential      = errors.New("no credential in callback")
	ErrMalformedCallback = errors.New("malformed callback")
	ErrExchangeFailed    = errors.New("credential exchange failed")

	// Authorization errors
	ErrUnknownRole = errors.New("unknown role")

	// Realtime errors
	ErrUnknownTable  = errors.New("unknown table")
	ErrInvalidFilter = errors.New("invalid row filter")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
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

package errors

import (
	"errors"
	"fmt"
)

// Common error values shared by the session, activity and client packages
var (
	// Session errors
	ErrNoSession         = errors.New("no session")
	ErrIncompleteSession = errors.New("incomplete session")
	ErrSessionChanged    = errors.New("session changed during refresh")

	// Delegated token errors
	ErrTokenExpired = errors.New("token expired")

	// Poller errors
	ErrNotPolling = errors.New("poller is not running")
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

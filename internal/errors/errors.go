package errors

import (
	"errors"
	"fmt"
)

// Common error types for the back-office core
var (
	// Session errors
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrStaleLogin            = errors.New("stale login response discarded")
	ErrUnknownRole           = errors.New("unknown role")

	// Authorization errors
	ErrAuthorizationDenied = errors.New("authorization denied")

	// Validation errors
	ErrValidationFailure = errors.New("validation failure")

	// Collaborator errors
	ErrCollaboratorFailure = errors.New("collaborator failure")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("session snapshot not found")
	ErrInvalidSnapshot  = errors.New("invalid session snapshot")

	// General errors
	ErrNotFound = errors.New("not found")
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

// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"taskman/internal/service"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, not found, rejected input).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)

// ForError maps a failure from the backend taxonomy to an exit code.
func ForError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, service.ErrUnauthorized):
		return AuthError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrUnsupported):
		return UserError
	default:
		return BackendError
	}
}

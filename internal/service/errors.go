package service

import "errors"

// Failure taxonomy. Backends wrap one of these together with the raw cause,
// so both can be matched with errors.Is.
var (
	// ErrNetwork covers transport failures, timeouts and unexpected server errors.
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized means the credential is missing, expired or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the task id no longer exists on the server.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the server rejected the payload.
	ErrValidation = errors.New("validation failed")

	// ErrUnsupported means the backend cannot perform the operation at all.
	ErrUnsupported = errors.New("not supported by backend")
)

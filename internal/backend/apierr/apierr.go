// Package apierr maps backend failures onto the service error taxonomy.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"taskman/internal/service"
)

// Check turns a non-2xx response into a *googleapi.Error carrying the status
// code and body. The body of a successful response is left unread.
func Check(res *http.Response) error {
	return googleapi.CheckResponse(res)
}

// Wrap classifies err for operation op. The result matches both the taxonomy
// sentinel and the original error with errors.Is.
//
//   - 401, 403           -> service.ErrUnauthorized
//   - 404                -> service.ErrNotFound
//   - 400, 409, 422      -> service.ErrValidation
//   - anything else      -> service.ErrNetwork
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, Kind(err), err)
}

// Kind returns the taxonomy sentinel for err.
func Kind(err error) error {
	for _, kind := range []error{
		service.ErrUnauthorized,
		service.ErrNotFound,
		service.ErrValidation,
		service.ErrUnsupported,
		service.ErrNetwork,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return service.ErrUnauthorized
		case http.StatusNotFound:
			return service.ErrNotFound
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return service.ErrValidation
		}
		return service.ErrNetwork
	}

	// Transport failures, timeouts and cancellations.
	return service.ErrNetwork
}

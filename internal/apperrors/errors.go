// Package apperrors defines the error kinds shared by every component in
// this service. Handlers map them to HTTP statuses in exactly one place;
// everything below the HTTP layer only wraps and inspects these sentinels.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound covers absent notes, lists, accounts and notifications.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRange is returned when a request supplies both before_id
	// and after_id, or an unparseable pagination parameter.
	ErrInvalidRange = errors.New("invalid range")

	// ErrPermissionDenied is returned when a caller mutates or reads
	// something it does not own.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrCapacityExceeded is returned when an append would push a bounded
	// collection past its cap.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrAlreadyExists is returned on duplicate creation, e.g. appending a
	// member that is already on a list.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInternal wraps collaborator failures (store unreachable, etc.).
	ErrInternal = errors.New("internal error")

	// ErrValidation is returned when a request body fails validation.
	ErrValidation = errors.New("validation failed")
)

// HTTPStatus maps an error to the HTTP status the handlers respond with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

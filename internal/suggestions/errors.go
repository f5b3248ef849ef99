package suggestions

import (
	"errors"
	"net/http"
)

// Domain errors for suggestion lifecycle operations.
var (
	ErrNotFound          = errors.New("suggestion not found")
	ErrDuplicate         = errors.New("suggestion already exists for source id")
	ErrInvalidStatus     = errors.New("status must be pending, approved, or rejected")
	ErrInvalidTransition = errors.New("suggestion is not pending")
	ErrSinkFailed        = errors.New("work record sink failed")
)

// MapHTTPStatus maps suggestion domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidTransition) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidStatus) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrSinkFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

package worklog

import (
	"errors"
	"net/http"
)

// Domain errors for work-record operations.
var (
	ErrNotFound  = errors.New("work record not found")
	ErrDuplicate = errors.New("work record already exists")
)

// MapHTTPStatus maps work-record domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

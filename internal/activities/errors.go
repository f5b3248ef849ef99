package activities

import (
	"errors"
	"net/http"
)

// Domain errors for activity intake operations.
var (
	ErrInvalidActivity = errors.New("invalid activity")
	ErrInvalidSource   = errors.New("source must be calendar, chat, ticket, email, or document")
	ErrQueueClosed     = errors.New("activity queue is shut down")
)

// MapHTTPStatus maps activity domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidActivity) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrInvalidSource) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrQueueClosed) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

package privacy

import (
	"errors"
	"net/http"
)

// Domain errors for privacy operations.
var (
	ErrInvalidAction = errors.New("unknown audit action")
	ErrNotFound      = errors.New("secret not found")
	ErrStorage       = errors.New("encrypted store failure")
	ErrUnreadable    = errors.New("record cannot be decrypted")
	ErrIntegrity     = errors.New("encrypted store integrity check failed")
	ErrVaultClosed   = errors.New("vault has not been opened")
)

// MapHTTPStatus maps privacy domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidAction) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrUnreadable) || errors.Is(err, ErrStorage) || errors.Is(err, ErrIntegrity) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

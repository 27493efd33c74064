package httpapi

import (
	"errors"
	"net/http"

	"github.com/BrandonDHaskell/Checkin/server/internal/checkin/service"
)

// statusFor maps a service error onto an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id"
	case errors.Is(err, service.ErrInvalidSubevent):
		return http.StatusBadRequest, "invalid_subevent"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

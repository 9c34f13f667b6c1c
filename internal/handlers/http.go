package handlers

import (
	"errors"
	"net/http"

	"github.com/deikas123/thefoodbasket-sub001/internal/services"
)

// statusForError maps engine error kinds to HTTP statuses. Validation
// errors surface to the caller; conflicts have already exhausted the
// engine's internal retries by the time they reach here.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrBelowMinimumRedemption),
		errors.Is(err, services.ErrInvalidDelta),
		errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidReferralCode),
		errors.Is(err, services.ErrRedemptionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrDuplicateAward),
		errors.Is(err, services.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

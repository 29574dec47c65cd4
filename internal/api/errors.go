package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/domain"
	"github.com/phrazzld/opsboard/internal/service"
	"github.com/phrazzld/opsboard/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors. A deployment that can no longer be cancelled is
	// reported the same way as a missing one.
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrDeploymentNotFound),
		errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrDeploymentNotFound),
		errors.Is(err, service.ErrDeploymentNotCancellable):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "Internal server error"
	}

	switch {
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, service.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, service.ErrDeploymentNotCancellable):
		return "Deployment not found or already completed"

	case errors.Is(err, store.ErrDeploymentNotFound),
		errors.Is(err, service.ErrDeploymentNotFound):
		return "Deployment not found"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation failed"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, domain.ErrIllegalTransition):
		return "Deployment status cannot change"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "Internal server error"
	}
}

// HandleAPIError writes the status code and safe message for err, logging
// the redacted error. A non-empty fallback replaces the message of 500s.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

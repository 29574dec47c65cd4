package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/opsboard/internal/api/shared"
	"github.com/phrazzld/opsboard/internal/domain"
)

// getPathUUID extracts and parses a UUID from the chi URL parameter paramName.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}

	return id, nil
}

// handlePathUUID writes a 400 with invalidMessage and returns false when the
// id path parameter is not a UUID.
func handlePathUUID(w http.ResponseWriter, r *http.Request, log *slog.Logger, invalidMessage string) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid path id", slog.String("value", chi.URLParam(r, "id")))
		shared.RespondWithError(w, r, http.StatusBadRequest, invalidMessage)
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the body into req, sanitizes it and validates it.
// It writes the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, log *slog.Logger, req interface{ sanitize() }) bool {
	if err := shared.DecodeJSON(r, req); err != nil {
		log.Debug("malformed request body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}

	req.sanitize()

	if fieldErrors := shared.ValidateRequest(req); fieldErrors != nil {
		log.Debug("request validation failed", slog.Int("violations", len(fieldErrors)))
		shared.RespondWithValidationErrors(w, r, fieldErrors)
		return false
	}
	return true
}

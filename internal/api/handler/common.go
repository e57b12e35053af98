// Package handler holds the HTTP handlers and their JSON plumbing. All
// responses are JSON; errors go through a single respondError mapping from
// the sentinel taxonomy to status codes.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"arthastra/internal/api/handler/dto"
	"arthastra/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status, code, message, field := http.StatusInternalServerError, "", "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, "Resource not found."
	// Checked before the ErrValidation sentinel: NewValidationError wraps
	// both, and only the As-match carries the field name.
	case errors.As(err, &validationError):
		status, message, field = http.StatusBadRequest, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized."
	case errors.Is(err, apperrors.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "RATE_LIMITED"
		message = "Model capacity is exhausted right now. Please try again shortly."
	case errors.Is(err, apperrors.ErrMalformedModelOutput):
		status, code = http.StatusBadGateway, "MALFORMED_MODEL_OUTPUT"
		message = "The model returned an unreadable response."
	case errors.Is(err, apperrors.ErrExternalService):
		status, message = http.StatusBadGateway, err.Error()
	case errors.As(err, &appErr):
		message = appErr.Error()
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	resp := dto.ErrorResponse{
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	}
	respondJSON(w, status, resp)
}

func getUserIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "userID")
	if idStr == "" {
		return 0, fmt.Errorf("userID not found in URL path")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("userID must be a positive integer")
	}
	return id, nil
}

func getAlertIDFromURL(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "alertID")
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("alertID not found in URL path")
	}
	return uuid.Parse(idStr)
}

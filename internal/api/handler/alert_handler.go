package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"arthastra/internal/api/handler/dto"
	"arthastra/internal/domain/alert"
	"arthastra/internal/pkg/apperrors"
)

type AlertHandler struct {
	service alert.Service
	logger  *slog.Logger
}

func NewAlertHandler(s alert.Service, l *slog.Logger) *AlertHandler {
	return &AlertHandler{
		service: s,
		logger:  l.With("component", "AlertHandler"),
	}
}

// CreateAlert accepts system-originated alerts, e.g. the welcome alert
// raised on registration. Duplicate triggers respond 409.
func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.Create(r.Context(), req.ToDomain())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewAlertResponse(created))
}

func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	alerts, err := h.service.List(r.Context(), userID, unreadOnly)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewAlertListResponse(alerts))
}

func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	alertID, err := getAlertIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.MarkRead(r.Context(), alertID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Alert marked as read"})
}

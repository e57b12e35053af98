package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"arthastra/internal/api/handler/dto"
	"arthastra/internal/domain/profile"
	"arthastra/internal/pkg/apperrors"
)

type ProfileHandler struct {
	service profile.Service
	logger  *slog.Logger
}

func NewProfileHandler(s profile.Service, l *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: s,
		logger:  l.With("component", "ProfileHandler"),
	}
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	created, err := h.service.CreateProfile(r.Context(), req.ToDomain())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewProfileResponse(created))
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	p, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProfileResponse(p))
}

// UpdateProfile replaces the stored profile. The user ID comes from the URL;
// a mismatching body ID is rejected rather than silently overridden.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if req.UserID == 0 {
		req.UserID = userID
	}
	if req.UserID != userID {
		respondError(w, fmt.Errorf("%w: body userId does not match URL", apperrors.ErrInvalidArgument))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), req.ToDomain())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProfileResponse(updated))
}

func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.DeleteProfile(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile deleted"})
}

func (h *ProfileHandler) RecordScore(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var req dto.RecordScoreRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	if err := h.service.RecordScore(r.Context(), userID, req.Score); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "Score recorded"})
}

func (h *ProfileHandler) GetScoreHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		limit, _ = strconv.Atoi(q)
	}

	entries, err := h.service.LatestScores(r.Context(), userID, limit)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScoreHistoryResponse(userID, entries))
}

package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"arthastra/internal/agent"
	"arthastra/internal/api/handler/dto"
	"arthastra/internal/domain/profile"
	"arthastra/internal/pkg/apperrors"
)

type ChatHandler struct {
	agents   agent.Service
	profiles profile.Service
	logger   *slog.Logger
}

func NewChatHandler(agents agent.Service, profiles profile.Service, l *slog.Logger) *ChatHandler {
	return &ChatHandler{
		agents:   agents,
		profiles: profiles,
		logger:   l.With("component", "ChatHandler"),
	}
}

// Chat runs the routing pipeline. The applicant context comes from the
// stored profile when a userId is given, an inline profile otherwise, or a
// fully defaulted one when neither is present. Quota exhaustion maps to 429
// so clients can show a retry hint; unreadable model output maps to 502.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req dto.ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	var p profile.ApplicantProfile
	switch {
	case req.UserID != nil:
		stored, err := h.profiles.GetProfile(r.Context(), *req.UserID)
		if err != nil {
			respondError(w, err)
			return
		}
		p = *stored
	case req.Profile != nil:
		p = *req.Profile.ToDomain()
	}

	result, err := h.agents.Chat(r.Context(), req.Input, req.History, p)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

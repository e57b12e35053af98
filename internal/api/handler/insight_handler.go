package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"arthastra/internal/api/handler/dto"
	"arthastra/internal/domain/eligibility"
	"arthastra/internal/domain/finance"
	"arthastra/internal/domain/offers"
	"arthastra/internal/domain/profile"
	"arthastra/internal/domain/simulation"
	"arthastra/internal/infrastructure/monitoring"
	"arthastra/internal/pkg/apperrors"
)

// InsightHandler serves the read-only calculation endpoints: eligibility
// reports, priced offers, what-if simulations and the standalone EMI
// calculator. The calculations themselves never fail for a stored profile;
// only lookup and decoding errors surface.
type InsightHandler struct {
	profiles profile.Service
	logger   *slog.Logger
}

func NewInsightHandler(profiles profile.Service, l *slog.Logger) *InsightHandler {
	return &InsightHandler{
		profiles: profiles,
		logger:   l.With("component", "InsightHandler"),
	}
}

func (h *InsightHandler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	report := eligibility.Evaluate(*p)
	monitoring.EligibilityReports.Inc()

	respondJSON(w, http.StatusOK, report)
}

func (h *InsightHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"offers": offers.Generate(*p),
	})
}

func (h *InsightHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var req dto.SimulateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	result := simulation.Simulate(*p, req.ToActions())
	monitoring.SimulationsRun.Inc()

	respondJSON(w, http.StatusOK, result)
}

func (h *InsightHandler) CalculateEMI(w http.ResponseWriter, r *http.Request) {
	var req dto.EMICalcRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	emi := finance.CalculateEMI(req.Principal, req.AnnualInterestRate, req.TenureMonths)
	totalInterest := finance.TotalInterest(req.Principal, emi, req.TenureMonths)

	respondJSON(w, http.StatusOK, dto.EMICalcResponse{
		Principal:          req.Principal,
		AnnualInterestRate: req.AnnualInterestRate,
		TenureMonths:       req.TenureMonths,
		MonthlyEMI:         emi,
		TotalInterest:      totalInterest,
		TotalPayable:       req.Principal + totalInterest,
	})
}

func (h *InsightHandler) loadProfile(w http.ResponseWriter, r *http.Request) (*profile.ApplicantProfile, bool) {
	userID, err := getUserIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return nil, false
	}

	p, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return nil, false
	}
	return p, true
}

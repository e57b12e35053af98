package agent

import (
	"context"
	"fmt"
	"log/slog"

	"arthastra/internal/domain/profile"
	"arthastra/internal/infrastructure/llm"
	"arthastra/internal/infrastructure/monitoring"
	"arthastra/internal/pkg/apperrors"
)

// ChatResult pairs the routing decision with the specialist's response.
type ChatResult struct {
	Decision Decision  `json:"decision"`
	Response *Response `json:"response"`
}

type Service interface {
	Chat(ctx context.Context, input string, history []Turn, p profile.ApplicantProfile) (*ChatResult, error)
}

type service struct {
	router      *Router
	specialists map[Name]Specialist
	logger      *slog.Logger
}

func NewService(completer llm.Completer, logger *slog.Logger) Service {
	return &service{
		router: NewRouter(completer, logger),
		specialists: map[Name]Specialist{
			Onboarding:  NewOnboarding(completer),
			LoanOfficer: NewLoanOfficer(completer),
			Recovery:    NewRecovery(completer),
			General:     NewOrchestrator(completer),
		},
		logger: logger.With(slog.String("component", "agentService")),
	}
}

// Chat routes the message and runs the selected specialist. Specialist
// failures propagate so the handler can distinguish quota errors from hard
// ones; routing failures never do.
func (s *service) Chat(ctx context.Context, input string, history []Turn, p profile.ApplicantProfile) (*ChatResult, error) {
	if input == "" {
		return nil, apperrors.NewValidationError("message", "cannot be empty")
	}

	decision := s.router.Route(ctx, input, history)
	s.logger.InfoContext(ctx, "Routed chat message",
		slog.String("agent", string(decision.SelectedAgent)), slog.String("reason", decision.Reason))

	specialist, ok := s.specialists[decision.SelectedAgent]
	if !ok {
		specialist = s.specialists[General]
	}

	effective := input
	if decision.RefinedInput != "" {
		effective = decision.RefinedInput
	}

	resp, err := specialist.Handle(ctx, effective, p)
	if err != nil {
		monitoring.AgentCompletions.WithLabelValues(string(decision.SelectedAgent), "error").Inc()
		s.logger.ErrorContext(ctx, "Specialist failed",
			slog.String("agent", string(decision.SelectedAgent)), slog.Any("error", err))
		return nil, fmt.Errorf("specialist %s: %w", decision.SelectedAgent, err)
	}
	monitoring.AgentCompletions.WithLabelValues(string(decision.SelectedAgent), "success").Inc()

	return &ChatResult{Decision: decision, Response: resp}, nil
}

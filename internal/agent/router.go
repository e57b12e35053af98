// Package agent routes free-text user messages to specialist loan agents and
// runs them: a deterministic tool produces the numbers, a hosted completion
// turns them into advice.
package agent

import (
	"context"
	"log/slog"
	"strings"

	"arthastra/internal/infrastructure/llm"
)

type Name string

const (
	Onboarding  Name = "ONBOARDING"
	LoanOfficer Name = "LOAN_OFFICER"
	Recovery    Name = "RECOVERY"
	General     Name = "GENERAL"
)

// Decision is the routing outcome. Ephemeral, never persisted.
type Decision struct {
	SelectedAgent Name   `json:"selectedAgent"`
	Reason        string `json:"reason"`
	RefinedInput  string `json:"refinedInput,omitempty"`
}

// Turn is one message of conversation history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Keyword sets for the fast path, checked in priority order: a message about
// a rejection outranks one about rates, which outranks a greeting.
var (
	recoveryKeywords = []string{
		"rejected", "rejection", "declined", "denied", "credit repair",
		"improve my score", "improve my credit", "low cibil", "defaulted",
	}
	loanOfficerKeywords = []string{
		"emi", "loan", "interest", "rate", "eligib", "offer", "tenure",
		"borrow", "amount", "bank",
	}
	greetingKeywords = []string{
		"hi", "hello", "hey", "namaste", "start", "begin",
	}
)

type Router struct {
	completer llm.Completer
	logger    *slog.Logger
}

func NewRouter(completer llm.Completer, logger *slog.Logger) *Router {
	return &Router{
		completer: completer,
		logger:    logger.With(slog.String("component", "agentRouter")),
	}
}

// Route classifies the input. Keyword matching decides most messages; the
// rest go through one completion call. Routing never returns an error: any
// slow-path failure falls back to GENERAL.
func (r *Router) Route(ctx context.Context, input string, history []Turn) Decision {
	if d, ok := matchKeywords(input); ok {
		return d
	}

	d, err := r.routeWithModel(ctx, input, history)
	if err != nil {
		r.logger.WarnContext(ctx, "Slow-path routing failed, falling back to GENERAL", slog.Any("error", err))
		return Decision{SelectedAgent: General, Reason: "Routing failed"}
	}
	return d
}

func matchKeywords(input string) (Decision, bool) {
	lowered := strings.ToLower(input)

	for _, kw := range recoveryKeywords {
		if strings.Contains(lowered, kw) {
			return Decision{SelectedAgent: Recovery, Reason: "Matched keyword: " + kw}, true
		}
	}
	for _, kw := range loanOfficerKeywords {
		if strings.Contains(lowered, kw) {
			return Decision{SelectedAgent: LoanOfficer, Reason: "Matched keyword: " + kw}, true
		}
	}

	// Greetings match whole words only, "hi" hides inside too many others.
	for _, token := range strings.Fields(lowered) {
		token = strings.Trim(token, ".,!?")
		for _, kw := range greetingKeywords {
			if token == kw {
				return Decision{SelectedAgent: Onboarding, Reason: "Matched greeting: " + kw}, true
			}
		}
	}
	return Decision{}, false
}

func (r *Router) routeWithModel(ctx context.Context, input string, history []Turn) (Decision, error) {
	if r.completer == nil {
		return Decision{}, errNoCompleter
	}

	// Only the last two turns carry routing signal; older history just
	// inflates the prompt.
	if len(history) > 2 {
		history = history[len(history)-2:]
	}

	text, err := r.completer.Complete(ctx, routingPrompt(input, history))
	if err != nil {
		return Decision{}, err
	}
	return ParseDecision(text)
}

package agent

import (
	"context"
	"fmt"

	"arthastra/internal/domain/eligibility"
	"arthastra/internal/domain/offers"
	"arthastra/internal/domain/profile"
	"arthastra/internal/domain/simulation"
	"arthastra/internal/infrastructure/llm"
)

// Response merges a specialist's deterministic tool output with the model's
// textual analysis.
type Response struct {
	Agent      Name                `json:"agent"`
	Analysis   string              `json:"analysis"`
	Report     *eligibility.Report `json:"report,omitempty"`
	Offers     []offers.Offer      `json:"offers,omitempty"`
	Simulation *simulation.Result  `json:"simulation,omitempty"`
}

// Specialist is one agent persona. Handle runs its tool, asks the model for
// an interpretation and returns both.
type Specialist interface {
	Name() Name
	Handle(ctx context.Context, input string, p profile.ApplicantProfile) (*Response, error)
}

// maxOffersInPrompt caps how many offers are interpolated into the prompt;
// the full list still returns in the structured response.
const maxOffersInPrompt = 3

type loanOfficerAgent struct {
	completer llm.Completer
}

func NewLoanOfficer(completer llm.Completer) Specialist {
	return &loanOfficerAgent{completer: completer}
}

func (a *loanOfficerAgent) Name() Name { return LoanOfficer }

func (a *loanOfficerAgent) Handle(ctx context.Context, input string, p profile.ApplicantProfile) (*Response, error) {
	report := eligibility.Evaluate(p)
	offerList := offers.Generate(p)

	top := offerList
	if len(top) > maxOffersInPrompt {
		top = top[:maxOffersInPrompt]
	}

	analysis, err := complete(ctx, a.completer,
		fmt.Sprintf(loanOfficerTemplate, input, mustJSON(report), mustJSON(top)))
	if err != nil {
		return nil, err
	}

	return &Response{
		Agent:    LoanOfficer,
		Analysis: analysis,
		Report:   &report,
		Offers:   offerList,
	}, nil
}

type recoveryAgent struct {
	completer llm.Completer
}

func NewRecovery(completer llm.Completer) Specialist {
	return &recoveryAgent{completer: completer}
}

func (a *recoveryAgent) Name() Name { return Recovery }

func (a *recoveryAgent) Handle(ctx context.Context, input string, p profile.ApplicantProfile) (*Response, error) {
	result := simulation.Simulate(p, recoveryPlan(p))

	analysis, err := complete(ctx, a.completer,
		fmt.Sprintf(recoveryTemplate, input, mustJSON(result)))
	if err != nil {
		return nil, err
	}

	return &Response{
		Agent:      Recovery,
		Analysis:   analysis,
		Simulation: &result,
	}, nil
}

// recoveryPlan is the standard improvement bundle the recovery agent
// projects: clear half the obligations, a realistic score gain, six months of
// tenure.
func recoveryPlan(p profile.ApplicantProfile) simulation.Actions {
	return simulation.Actions{
		PayOffDebt:       p.ExistingEMI / 2,
		ScoreImprovement: 50,
		WaitMonths:       6,
	}
}

type orchestratorAgent struct {
	completer llm.Completer
	name      Name
	template  string
}

// NewOrchestrator handles GENERAL traffic.
func NewOrchestrator(completer llm.Completer) Specialist {
	return &orchestratorAgent{completer: completer, name: General, template: orchestratorTemplate}
}

// NewOnboarding shares the orchestrator shape with a welcome-oriented prompt.
func NewOnboarding(completer llm.Completer) Specialist {
	return &orchestratorAgent{completer: completer, name: Onboarding, template: onboardingTemplate}
}

func (a *orchestratorAgent) Name() Name { return a.name }

func (a *orchestratorAgent) Handle(ctx context.Context, input string, p profile.ApplicantProfile) (*Response, error) {
	report := eligibility.Evaluate(p)

	analysis, err := complete(ctx, a.completer,
		fmt.Sprintf(a.template, input, mustJSON(report.Summary)))
	if err != nil {
		return nil, err
	}

	return &Response{
		Agent:    a.name,
		Analysis: analysis,
		Report:   &report,
	}, nil
}

func complete(ctx context.Context, completer llm.Completer, prompt string) (string, error) {
	if completer == nil {
		return "", errNoCompleter
	}
	return completer.Complete(ctx, prompt)
}

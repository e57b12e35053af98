package dto

import (
	"fmt"

	"arthastra/internal/agent"
	"arthastra/internal/domain/simulation"
)

type EMICalcRequest struct {
	Principal          int64   `json:"principal"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TenureMonths       int     `json:"tenureMonths"`
}

func (r *EMICalcRequest) Validate() error {
	if r.Principal <= 0 {
		return fmt.Errorf("principal must be greater than zero")
	}
	if r.AnnualInterestRate < 0 {
		return fmt.Errorf("annualInterestRate cannot be negative")
	}
	if r.TenureMonths <= 0 {
		return fmt.Errorf("tenureMonths must be positive")
	}
	return nil
}

type EMICalcResponse struct {
	Principal          int64   `json:"principal"`
	AnnualInterestRate float64 `json:"annualInterestRate"`
	TenureMonths       int     `json:"tenureMonths"`
	MonthlyEMI         int64   `json:"monthlyEmi"`
	TotalInterest      int64   `json:"totalInterest"`
	TotalPayable       int64   `json:"totalPayable"`
}

// SimulateRequest is the what-if action bundle. Zero values mean the action
// is not requested.
type SimulateRequest struct {
	PayOffDebt       int64 `json:"payOffDebt"`
	IncomeIncrease   int64 `json:"incomeIncrease"`
	ScoreImprovement int   `json:"scoreImprovement"`
	WaitMonths       int   `json:"waitMonths"`
	JointApplication bool  `json:"jointApplication"`
}

func (r *SimulateRequest) Validate() error {
	if r.PayOffDebt < 0 || r.IncomeIncrease < 0 || r.ScoreImprovement < 0 || r.WaitMonths < 0 {
		return fmt.Errorf("simulation actions cannot be negative")
	}
	return nil
}

func (r *SimulateRequest) ToActions() simulation.Actions {
	return simulation.Actions{
		PayOffDebt:       r.PayOffDebt,
		IncomeIncrease:   r.IncomeIncrease,
		ScoreImprovement: r.ScoreImprovement,
		WaitMonths:       r.WaitMonths,
		JointApplication: r.JointApplication,
	}
}

// ChatRequest feeds the agent pipeline. A stored profile is loaded when
// UserID is set; an inline Profile is used otherwise; with neither, the
// specialists run on a fully defaulted profile.
type ChatRequest struct {
	UserID  *int64          `json:"userId,omitempty"`
	Input   string          `json:"input"`
	History []agent.Turn    `json:"history,omitempty"`
	Profile *ProfileRequest `json:"profile,omitempty"`
}

func (r *ChatRequest) Validate() error {
	if r.Input == "" {
		return fmt.Errorf("input is required")
	}
	return nil
}

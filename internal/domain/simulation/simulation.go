// Package simulation answers "what if" questions: given hypothetical actions
// on top of an applicant profile, it recomputes eligibility and reports the
// delta, the contribution of each action, and the best single move.
package simulation

import (
	"sort"

	"arthastra/internal/domain/eligibility"
	"arthastra/internal/domain/profile"
)

// Actions is the hypothetical bundle applied to the profile. Zero values mean
// "not requested".
type Actions struct {
	PayOffDebt       int64 `json:"payOffDebt"`       // monthly EMI obligation cleared
	IncomeIncrease   int64 `json:"incomeIncrease"`   // additional monthly income
	ScoreImprovement int   `json:"scoreImprovement"` // credit score points gained
	WaitMonths       int   `json:"waitMonths"`       // months of added employment tenure
	JointApplication bool  `json:"jointApplication"`
}

// assumedCoBorrowerShare sizes the hypothetical co-borrower's income when the
// joint-application action is requested on a solo profile.
const assumedCoBorrowerShare = 0.5

type Snapshot struct {
	MaxAmount    int64              `json:"maxAmount"`
	ApprovalOdds int                `json:"approvalOdds"`
	Status       eligibility.Status `json:"status"`
}

// Impact is the isolated effect of one action applied alone.
type Impact struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	AmountDelta int64  `json:"amountDelta"`
	OddsDelta   int    `json:"oddsDelta"`
}

type Result struct {
	Current     Snapshot `json:"current"`
	Projected   Snapshot `json:"projected"`
	AmountDelta int64    `json:"amountDelta"`
	OddsDelta   int      `json:"oddsDelta"`
	Impacts     []Impact `json:"impacts"`
	BestMove    string   `json:"bestMove"`
	Timeline    string   `json:"timeline"`
}

// Simulate compares current eligibility against the profile with all actions
// applied, and ranks each action by its standalone contribution.
func Simulate(p profile.ApplicantProfile, a Actions) Result {
	p.Normalize()

	current := snapshot(p)
	projected := snapshot(apply(p, a))

	impacts := rankImpacts(p, current, a)

	best := "Your profile is already at its strongest with the requested changes"
	if len(impacts) > 0 {
		best = impacts[0].Description
	}

	return Result{
		Current:     current,
		Projected:   projected,
		AmountDelta: projected.MaxAmount - current.MaxAmount,
		OddsDelta:   projected.ApprovalOdds - current.ApprovalOdds,
		Impacts:     impacts,
		BestMove:    best,
		Timeline:    timeline(a),
	}
}

func snapshot(p profile.ApplicantProfile) Snapshot {
	report := eligibility.Evaluate(p)
	return Snapshot{
		MaxAmount:    report.MaxEligibleAmount,
		ApprovalOdds: report.ApprovalOdds,
		Status:       report.Status,
	}
}

// apply returns a copy of the profile with the action bundle folded in.
// Profiles and actions are value types, so the caller's data never changes.
func apply(p profile.ApplicantProfile, a Actions) profile.ApplicantProfile {
	if a.PayOffDebt > 0 {
		p.ExistingEMI -= a.PayOffDebt
		if p.ExistingEMI < 0 {
			p.ExistingEMI = 0
		}
	}
	if a.IncomeIncrease > 0 {
		p.MonthlyIncome += a.IncomeIncrease
	}
	if a.ScoreImprovement > 0 {
		score := p.EffectiveCreditScore() + a.ScoreImprovement
		if score > profile.MaxCreditScore {
			score = profile.MaxCreditScore
		}
		p.CreditScore = &score
		p.HasCreditHistory = true
	}
	if a.WaitMonths > 0 {
		p.EmploymentTenureMonths += a.WaitMonths
	}
	if a.JointApplication && p.CoBorrowerIncome == nil {
		assumed := int64(float64(p.MonthlyIncome) * assumedCoBorrowerShare)
		p.CoBorrowerIncome = &assumed
	}
	return p
}

func rankImpacts(p profile.ApplicantProfile, current Snapshot, a Actions) []Impact {
	type candidate struct {
		action      string
		description string
		actions     Actions
	}

	var candidates []candidate
	if a.PayOffDebt > 0 {
		candidates = append(candidates, candidate{
			action:      "payOffDebt",
			description: "Pay down existing obligations to free up repayment capacity",
			actions:     Actions{PayOffDebt: a.PayOffDebt},
		})
	}
	if a.IncomeIncrease > 0 {
		candidates = append(candidates, candidate{
			action:      "incomeIncrease",
			description: "Raise monthly income to expand your eligible amount",
			actions:     Actions{IncomeIncrease: a.IncomeIncrease},
		})
	}
	if a.ScoreImprovement > 0 {
		candidates = append(candidates, candidate{
			action:      "scoreImprovement",
			description: "Improve your credit score to unlock better rates and multipliers",
			actions:     Actions{ScoreImprovement: a.ScoreImprovement},
		})
	}
	if a.WaitMonths > 0 {
		candidates = append(candidates, candidate{
			action:      "waitMonths",
			description: "Build employment tenure before applying",
			actions:     Actions{WaitMonths: a.WaitMonths},
		})
	}
	if a.JointApplication {
		candidates = append(candidates, candidate{
			action:      "jointApplication",
			description: "Apply jointly with a co-borrower to pool income",
			actions:     Actions{JointApplication: true},
		})
	}

	impacts := make([]Impact, 0, len(candidates))
	for _, c := range candidates {
		s := snapshot(apply(p, c.actions))
		impacts = append(impacts, Impact{
			Action:      c.action,
			Description: c.description,
			AmountDelta: s.MaxAmount - current.MaxAmount,
			OddsDelta:   s.ApprovalOdds - current.ApprovalOdds,
		})
	}

	sort.SliceStable(impacts, func(i, j int) bool {
		if impacts[i].AmountDelta != impacts[j].AmountDelta {
			return impacts[i].AmountDelta > impacts[j].AmountDelta
		}
		return impacts[i].OddsDelta > impacts[j].OddsDelta
	})
	return impacts
}

// timeline buckets how long the requested actions realistically take.
func timeline(a Actions) string {
	switch {
	case a.WaitMonths > 6:
		return "6-12 months"
	case a.WaitMonths > 0 || a.ScoreImprovement > 50:
		return "3-6 months"
	case a.ScoreImprovement > 0 || a.PayOffDebt > 0 || a.IncomeIncrease > 0:
		return "1-3 months"
	default:
		return "Immediate"
	}
}

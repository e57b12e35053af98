// Package eligibility scores an applicant profile into a loan eligibility
// report: overall status, maximum eligible amount, approval odds, per-factor
// scores and recommendations. Evaluation is a pure function of the profile.
package eligibility

import (
	"fmt"

	"arthastra/internal/domain/finance"
	"arthastra/internal/domain/profile"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusReview   Status = "review"
	StatusRejected Status = "rejected"
)

type FactorStatus string

const (
	FactorPass    FactorStatus = "pass"
	FactorWarning FactorStatus = "warning"
	FactorFail    FactorStatus = "fail"
)

// Factor is one scored dimension of the applicant's creditworthiness.
type Factor struct {
	Name        string       `json:"name"`
	Score       int          `json:"score"`
	Status      FactorStatus `json:"status"`
	Description string       `json:"description"`
}

// Summary carries the headline numbers behind the decision.
type Summary struct {
	DTI             float64 `json:"dti"`
	AvailableForEMI int64   `json:"availableForEmi"`
	EstimatedEMI    int64   `json:"estimatedEmi"`
	InterestRate    float64 `json:"interestRate"`
	TenureMonths    int     `json:"tenureMonths"`
}

type Report struct {
	Status            Status   `json:"status"`
	MaxEligibleAmount int64    `json:"maxEligibleAmount"`
	ApprovalOdds      int      `json:"approvalOdds"`
	Factors           []Factor `json:"factors"`
	Summary           Summary  `json:"summary"`
	Recommendations   []string `json:"recommendations"`
}

// Rejection and review thresholds. DTI is a FOIR-style ratio: existing EMI
// obligations over gross income, living expenses excluded.
const (
	rejectDTI    = 60.0
	reviewDTI    = 50.0
	minIncome    = 15_000
	reviewScore  = 650
	minOdds      = 15
	maxOdds      = 95
	minEligible  = 50_000
	incomeFactor = 60 // max amount cap, multiples of monthly income
)

// BaseRate returns the annual interest rate for the applicant before any
// offer-level adjustment. Brackets follow the retail pricing grid: better
// scores price lower, non-salaried employment prices higher.
func BaseRate(p profile.ApplicantProfile) float64 {
	score := p.EffectiveCreditScore()

	var rate float64
	switch {
	case score >= 800:
		rate = 9.5
	case score >= 750:
		rate = 10.5
	case score >= 700:
		rate = 11.5
	case score >= 650:
		rate = 12.5
	default:
		rate = 14.0
	}

	switch p.EmploymentType {
	case profile.EmploymentSelfEmployed:
		rate += 0.5
	case profile.EmploymentFreelancer:
		rate += 1.0
	}
	return rate
}

func creditMultiplier(p profile.ApplicantProfile) float64 {
	if !p.HasCreditHistory {
		return 0.6
	}
	score := p.EffectiveCreditScore()
	switch {
	case score >= 750:
		return 1.2
	case score >= 700:
		return 1.0
	case score >= 650:
		return 0.85
	default:
		return 0.7
	}
}

func tenureMultiplier(months int) float64 {
	switch {
	case months >= 60:
		return 1.1
	case months >= 24:
		return 1.0
	case months >= 12:
		return 0.9
	case months >= 6:
		return 0.8
	default:
		return 0.7
	}
}

// MaxAmount computes the largest principal the applicant can service: the
// half-income EMI capacity inverted through the amortization formula, scaled
// by credit and employment-tenure multipliers, clamped to
// [50000, 60 x total income].
func MaxAmount(p profile.ApplicantProfile) int64 {
	total := p.TotalIncome()
	capacity := total/2 - p.ExistingEMI
	if capacity < 0 {
		capacity = 0
	}

	principal := finance.MaxPrincipalForEMI(capacity, BaseRate(p), p.TenureMonths())
	scaled := int64(float64(principal) * creditMultiplier(p) * tenureMultiplier(p.EmploymentTenureMonths))

	ceiling := incomeFactor * total
	if scaled > ceiling {
		scaled = ceiling
	}
	if scaled < minEligible {
		scaled = minEligible
	}
	return scaled
}

// Evaluate produces the full eligibility report. It normalizes a copy of the
// profile first, so absent fields fall back to documented defaults and the
// caller's value is untouched. Deterministic: equal profiles yield equal
// reports.
func Evaluate(p profile.ApplicantProfile) Report {
	p.Normalize()

	total := p.TotalIncome()
	dti, err := finance.CalculateDTI(total, p.ExistingEMI)
	if err != nil {
		// Normalize guarantees positive income; keep the zero fallback
		// anyway so a raw profile cannot panic the report path.
		dti = 0
	}

	capacity := total/2 - p.ExistingEMI
	if capacity < 0 {
		capacity = 0
	}

	rate := BaseRate(p)
	months := p.TenureMonths()

	factors := []Factor{
		incomeFactorScore(total),
		dtiFactorScore(dti),
		creditFactorScore(p),
		employmentFactorScore(p),
	}

	return Report{
		Status:            overallStatus(p, total, dti),
		MaxEligibleAmount: MaxAmount(p),
		ApprovalOdds:      approvalOdds(p, dti, factors),
		Factors:           factors,
		Summary: Summary{
			DTI:             dti,
			AvailableForEMI: capacity,
			EstimatedEMI:    finance.CalculateEMI(p.LoanAmount, rate, months),
			InterestRate:    rate,
			TenureMonths:    months,
		},
		Recommendations: recommendations(p, total, dti, capacity, rate, months),
	}
}

func overallStatus(p profile.ApplicantProfile, total int64, dti float64) Status {
	if dti > rejectDTI || total < minIncome {
		return StatusRejected
	}
	if dti > reviewDTI || !p.HasCreditHistory || p.EffectiveCreditScore() < reviewScore {
		return StatusReview
	}
	return StatusApproved
}

// approvalOdds blends the factor scores (income 25%, DTI 30%, credit 30%,
// employment 15%) at a 0.85 haircut, applies flat penalty and bonus rules,
// and clamps the result to [15, 95].
func approvalOdds(p profile.ApplicantProfile, dti float64, factors []Factor) int {
	weights := []float64{0.25, 0.30, 0.30, 0.15}

	var weighted float64
	for i, f := range factors {
		weighted += float64(f.Score) * weights[i]
	}
	odds := weighted * 0.85

	if dti > reviewDTI {
		odds -= 15
	}
	if !p.HasCreditHistory {
		odds -= 10
	}
	if p.HasCreditHistory && p.EffectiveCreditScore() < reviewScore {
		odds -= 10
	}
	if p.CoBorrowerIncome != nil {
		odds += 10
	}

	rounded := int(odds + 0.5)
	if rounded < minOdds {
		return minOdds
	}
	if rounded > maxOdds {
		return maxOdds
	}
	return rounded
}

func incomeFactorScore(total int64) Factor {
	var score int
	switch {
	case total >= 100_000:
		score = 100
	case total >= 60_000:
		score = 85
	case total >= 40_000:
		score = 70
	case total >= 25_000:
		score = 55
	case total >= minIncome:
		score = 40
	default:
		score = 20
	}
	return Factor{
		Name:        "Income Level",
		Score:       score,
		Status:      statusForScore(score, 70, 40),
		Description: fmt.Sprintf("Total monthly income of %d considered against lender minimums", total),
	}
}

func dtiFactorScore(dti float64) Factor {
	var score int
	switch {
	case dti == 0:
		score = 100
	case dti <= 20:
		score = 90
	case dti <= 35:
		score = 75
	case dti <= reviewDTI:
		score = 55
	case dti <= rejectDTI:
		score = 35
	default:
		score = 10
	}
	return Factor{
		Name:        "Debt-to-Income Ratio",
		Score:       score,
		Status:      statusForScore(score, 75, 55),
		Description: fmt.Sprintf("Existing obligations consume %.1f%% of monthly income", dti),
	}
}

func creditFactorScore(p profile.ApplicantProfile) Factor {
	if !p.HasCreditHistory {
		return Factor{
			Name:        "Credit Score",
			Score:       40,
			Status:      FactorWarning,
			Description: "No credit history on file, lenders will price conservatively",
		}
	}

	score := p.EffectiveCreditScore()
	// Linear map from [300, 900] to [0, 100].
	mapped := (score - profile.MinCreditScore) / 6
	return Factor{
		Name:        "Credit Score",
		Score:       mapped,
		Status:      statusForScore(mapped, 67, 55),
		Description: fmt.Sprintf("CIBIL score of %d", score),
	}
}

func employmentFactorScore(p profile.ApplicantProfile) Factor {
	var score int
	switch tenure := p.EmploymentTenureMonths; {
	case tenure >= 60:
		score = 95
	case tenure >= 24:
		score = 80
	case tenure >= 12:
		score = 65
	case tenure >= 6:
		score = 50
	default:
		score = 30
	}

	switch p.EmploymentType {
	case profile.EmploymentSelfEmployed:
		score -= 10
	case profile.EmploymentFreelancer:
		score -= 20
	}
	if score < 0 {
		score = 0
	}

	return Factor{
		Name:        "Employment Stability",
		Score:       score,
		Status:      statusForScore(score, 70, 45),
		Description: fmt.Sprintf("%s for %d months", p.EmploymentType, p.EmploymentTenureMonths),
	}
}

func statusForScore(score, passAt, warnAt int) FactorStatus {
	switch {
	case score >= passAt:
		return FactorPass
	case score >= warnAt:
		return FactorWarning
	default:
		return FactorFail
	}
}

func recommendations(p profile.ApplicantProfile, total int64, dti float64, capacity int64, rate float64, months int) []string {
	recs := make([]string, 0, 4)

	if dti > 35 {
		recs = append(recs, "Reduce existing debt obligations to bring your debt-to-income ratio under 35%")
	}
	if !p.HasCreditHistory {
		recs = append(recs, "Build a credit history with a secured credit card or a small consumer loan repaid on time")
	} else if p.EffectiveCreditScore() < 700 {
		recs = append(recs, "Improve your credit score above 700 by clearing dues on time and keeping card utilisation low")
	}
	if p.CoBorrowerIncome == nil && total < 50_000 {
		recs = append(recs, "Consider a joint application with an earning co-borrower to raise your eligible amount")
	}
	if requested := finance.CalculateEMI(p.LoanAmount, rate, months); requested > capacity {
		recs = append(recs, "Extend the loan tenure to bring the monthly installment within your repayment capacity")
	}
	if p.EmploymentTenureMonths < 24 {
		recs = append(recs, "Maintain stable employment, lenders prefer at least two years with the current employer")
	}

	return recs
}

package profile

import "time"

// Default substitutions applied by Normalize for fields the onboarding flow
// left empty. Calculators always receive a normalized profile.
const (
	DefaultMonthlyIncome = 30_000
	DefaultCreditScore   = 650
	DefaultLoanAmount    = 500_000
	DefaultTenureYears   = 3

	MinCreditScore = 300
	MaxCreditScore = 900
)

type EmploymentType string

const (
	EmploymentSalaried     EmploymentType = "salaried"
	EmploymentSelfEmployed EmploymentType = "self_employed"
	EmploymentFreelancer   EmploymentType = "freelancer"
)

// ApplicantProfile is the central entity: everything the eligibility
// calculator, offer generator and simulator read. Monetary fields are whole
// rupees and never negative after Normalize.
type ApplicantProfile struct {
	UserID                 int64          `json:"userId"`
	FullName               string         `json:"fullName"`
	Phone                  string         `json:"phone"`
	PAN                    string         `json:"pan,omitempty"`
	Aadhaar                string         `json:"aadhaar,omitempty"`
	MonthlyIncome          int64          `json:"monthlyIncome"`
	ExistingEMI            int64          `json:"existingEmi"`
	MonthlyExpenses        int64          `json:"monthlyExpenses"`
	CreditScore            *int           `json:"creditScore,omitempty"`
	HasCreditHistory       bool           `json:"hasCreditHistory"`
	EmploymentType         EmploymentType `json:"employmentType"`
	EmploymentTenureMonths int            `json:"employmentTenureMonths"`
	LoanAmount             int64          `json:"loanAmount"`
	TenureYears            int            `json:"tenureYears"`
	CoBorrowerIncome       *int64         `json:"coBorrowerIncome,omitempty"`
	CreatedAt              time.Time      `json:"createdAt"`
	UpdatedAt              time.Time      `json:"updatedAt"`
}

// ScoreEntry is one point in a user's credit-score history. The recorded date
// doubles as the dedup discriminator for score-change alerts.
type ScoreEntry struct {
	UserID     int64     `json:"userId"`
	Score      int       `json:"score"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Normalize applies the documented default-substitution rules exactly once at
// the boundary. Missing fields are defaulted, never rejected.
func (p *ApplicantProfile) Normalize() {
	if p.MonthlyIncome <= 0 {
		p.MonthlyIncome = DefaultMonthlyIncome
	}
	if p.ExistingEMI < 0 {
		p.ExistingEMI = 0
	}
	if p.MonthlyExpenses < 0 {
		p.MonthlyExpenses = 0
	}
	if p.LoanAmount <= 0 {
		p.LoanAmount = DefaultLoanAmount
	}
	if p.TenureYears <= 0 {
		p.TenureYears = DefaultTenureYears
	}
	if p.EmploymentTenureMonths < 0 {
		p.EmploymentTenureMonths = 0
	}

	switch p.EmploymentType {
	case EmploymentSalaried, EmploymentSelfEmployed, EmploymentFreelancer:
	default:
		p.EmploymentType = EmploymentSalaried
	}

	if p.HasCreditHistory {
		if p.CreditScore == nil {
			score := DefaultCreditScore
			p.CreditScore = &score
		} else if *p.CreditScore < MinCreditScore {
			score := MinCreditScore
			p.CreditScore = &score
		} else if *p.CreditScore > MaxCreditScore {
			score := MaxCreditScore
			p.CreditScore = &score
		}
	} else {
		p.CreditScore = nil
	}

	if p.CoBorrowerIncome != nil && *p.CoBorrowerIncome <= 0 {
		p.CoBorrowerIncome = nil
	}
}

// TotalIncome is own income plus co-borrower income for joint applications.
func (p *ApplicantProfile) TotalIncome() int64 {
	total := p.MonthlyIncome
	if p.CoBorrowerIncome != nil {
		total += *p.CoBorrowerIncome
	}
	return total
}

// TenureMonths converts the UI-facing years figure to the internal unit.
func (p *ApplicantProfile) TenureMonths() int {
	return p.TenureYears * 12
}

// EffectiveCreditScore returns the normalized score, or the default when the
// applicant has no credit history.
func (p *ApplicantProfile) EffectiveCreditScore() int {
	if p.CreditScore != nil {
		return *p.CreditScore
	}
	return DefaultCreditScore
}

package dto

import (
	"fmt"
	"strconv"
	"time"

	"arthastra/internal/domain/profile"
)

// ProfileRequest carries applicant data for create and update. Financial
// fields are optional: the domain substitutes documented defaults for
// anything left empty, so validation only rejects what cannot be defaulted.
type ProfileRequest struct {
	UserID                 int64  `json:"userId"`
	FullName               string `json:"fullName"`
	Phone                  string `json:"phone"`
	PAN                    string `json:"pan,omitempty"`
	Aadhaar                string `json:"aadhaar,omitempty"`
	MonthlyIncome          int64  `json:"monthlyIncome"`
	ExistingEMI            int64  `json:"existingEmi"`
	MonthlyExpenses        int64  `json:"monthlyExpenses"`
	CreditScore            *int   `json:"creditScore,omitempty"`
	HasCreditHistory       bool   `json:"hasCreditHistory"`
	EmploymentType         string `json:"employmentType"`
	EmploymentTenureMonths int    `json:"employmentTenureMonths"`
	LoanAmount             int64  `json:"loanAmount"`
	TenureYears            int    `json:"tenureYears"`
	CoBorrowerIncome       *int64 `json:"coBorrowerIncome,omitempty"`
}

func (r *ProfileRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("userId must be a positive integer")
	}
	if r.FullName == "" {
		return fmt.Errorf("fullName is required")
	}
	switch profile.EmploymentType(r.EmploymentType) {
	case "", profile.EmploymentSalaried, profile.EmploymentSelfEmployed, profile.EmploymentFreelancer:
	default:
		return fmt.Errorf("unknown employmentType %q", r.EmploymentType)
	}
	return nil
}

func (r *ProfileRequest) ToDomain() *profile.ApplicantProfile {
	return &profile.ApplicantProfile{
		UserID:                 r.UserID,
		FullName:               r.FullName,
		Phone:                  r.Phone,
		PAN:                    r.PAN,
		Aadhaar:                r.Aadhaar,
		MonthlyIncome:          r.MonthlyIncome,
		ExistingEMI:            r.ExistingEMI,
		MonthlyExpenses:        r.MonthlyExpenses,
		CreditScore:            r.CreditScore,
		HasCreditHistory:       r.HasCreditHistory,
		EmploymentType:         profile.EmploymentType(r.EmploymentType),
		EmploymentTenureMonths: r.EmploymentTenureMonths,
		LoanAmount:             r.LoanAmount,
		TenureYears:            r.TenureYears,
		CoBorrowerIncome:       r.CoBorrowerIncome,
	}
}

type ProfileResponse struct {
	UserID                 string    `json:"userId"`
	FullName               string    `json:"fullName"`
	Phone                  string    `json:"phone"`
	PAN                    string    `json:"pan,omitempty"`
	Aadhaar                string    `json:"aadhaar,omitempty"`
	MonthlyIncome          int64     `json:"monthlyIncome"`
	ExistingEMI            int64     `json:"existingEmi"`
	MonthlyExpenses        int64     `json:"monthlyExpenses"`
	CreditScore            *int      `json:"creditScore,omitempty"`
	HasCreditHistory       bool      `json:"hasCreditHistory"`
	EmploymentType         string    `json:"employmentType"`
	EmploymentTenureMonths int       `json:"employmentTenureMonths"`
	LoanAmount             int64     `json:"loanAmount"`
	TenureYears            int       `json:"tenureYears"`
	CoBorrowerIncome       *int64    `json:"coBorrowerIncome,omitempty"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func NewProfileResponse(p *profile.ApplicantProfile) ProfileResponse {
	return ProfileResponse{
		UserID:                 strconv.FormatInt(p.UserID, 10),
		FullName:               p.FullName,
		Phone:                  p.Phone,
		PAN:                    p.PAN,
		Aadhaar:                p.Aadhaar,
		MonthlyIncome:          p.MonthlyIncome,
		ExistingEMI:            p.ExistingEMI,
		MonthlyExpenses:        p.MonthlyExpenses,
		CreditScore:            p.CreditScore,
		HasCreditHistory:       p.HasCreditHistory,
		EmploymentType:         string(p.EmploymentType),
		EmploymentTenureMonths: p.EmploymentTenureMonths,
		LoanAmount:             p.LoanAmount,
		TenureYears:            p.TenureYears,
		CoBorrowerIncome:       p.CoBorrowerIncome,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

type RecordScoreRequest struct {
	Score int `json:"score"`
}

func (r *RecordScoreRequest) Validate() error {
	if r.Score < profile.MinCreditScore || r.Score > profile.MaxCreditScore {
		return fmt.Errorf("score must be between %d and %d", profile.MinCreditScore, profile.MaxCreditScore)
	}
	return nil
}

type ScoreEntryResponse struct {
	Score      int       `json:"score"`
	RecordedAt time.Time `json:"recordedAt"`
}

type ScoreHistoryResponse struct {
	UserID  string               `json:"userId"`
	Entries []ScoreEntryResponse `json:"entries"`
}

func NewScoreHistoryResponse(userID int64, entries []profile.ScoreEntry) ScoreHistoryResponse {
	resp := ScoreHistoryResponse{
		UserID:  strconv.FormatInt(userID, 10),
		Entries: make([]ScoreEntryResponse, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = ScoreEntryResponse{Score: e.Score, RecordedAt: e.RecordedAt}
	}
	return resp
}

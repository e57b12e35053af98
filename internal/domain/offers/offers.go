// Package offers projects the static lender catalog onto an applicant
// profile, pricing each product with credit and employment adjustments.
package offers

import (
	"sort"

	"arthastra/internal/domain/eligibility"
	"arthastra/internal/domain/finance"
	"arthastra/internal/domain/profile"
)

// CatalogEntry is one bank product. Base rates and fees are fixed; the
// per-applicant adjustment happens in Generate.
type CatalogEntry struct {
	BankName          string   `json:"bankName"`
	ProductName       string   `json:"productName"`
	BaseRate          float64  `json:"baseRate"`
	ProcessingFeePct  float64  `json:"processingFeePct"`
	ApprovalOddsDelta int      `json:"-"`
	Features          []string `json:"features"`
}

// Offer is a catalog entry priced for one applicant.
type Offer struct {
	BankName         string   `json:"bankName"`
	ProductName      string   `json:"productName"`
	EffectiveRate    float64  `json:"effectiveRate"`
	MonthlyEMI       int64    `json:"monthlyEmi"`
	ProcessingFee    int64    `json:"processingFee"`
	TotalInterest    int64    `json:"totalInterest"`
	ApprovalOdds     int      `json:"approvalOdds"`
	Features         []string `json:"features"`
	TenureMonths     int      `json:"tenureMonths"`
	RequestedAmount  int64    `json:"requestedAmount"`
	ProcessingFeePct float64  `json:"processingFeePct"`
}

const (
	minRate     = 8.5
	maxRate     = 18.0
	minOfferOdd = 30
	maxOfferOdd = 95
)

// catalog is ordered by base rate for readability only; Generate re-sorts by
// effective rate per applicant.
var catalog = []CatalogEntry{
	{
		BankName:          "HDFC Bank",
		ProductName:       "Personal Loan Xpress",
		BaseRate:          10.5,
		ProcessingFeePct:  1.5,
		ApprovalOddsDelta: 5,
		Features:          []string{"Disbursal in 24 hours", "No collateral", "Minimal documentation"},
	},
	{
		BankName:          "ICICI Bank",
		ProductName:       "Insta Personal Loan",
		BaseRate:          10.75,
		ProcessingFeePct:  2.0,
		ApprovalOddsDelta: 0,
		Features:          []string{"Pre-approved for existing customers", "Flexible tenure up to 6 years"},
	},
	{
		BankName:          "SBI",
		ProductName:       "Xpress Credit",
		BaseRate:          11.0,
		ProcessingFeePct:  1.0,
		ApprovalOddsDelta: 10,
		Features:          []string{"Lowest processing fee", "No prepayment penalty", "Salary account benefits"},
	},
	{
		BankName:          "Axis Bank",
		ProductName:       "Personal Loan",
		BaseRate:          10.99,
		ProcessingFeePct:  1.75,
		ApprovalOddsDelta: 0,
		Features:          []string{"Doorstep service", "Balance transfer option"},
	},
	{
		BankName:          "Kotak Mahindra Bank",
		ProductName:       "Personal Loan",
		BaseRate:          10.99,
		ProcessingFeePct:  2.5,
		ApprovalOddsDelta: -5,
		Features:          []string{"Digital process", "Top-up facility"},
	},
	{
		BankName:          "Bajaj Finserv",
		ProductName:       "Flexi Personal Loan",
		BaseRate:          12.0,
		ProcessingFeePct:  2.0,
		ApprovalOddsDelta: 15,
		Features:          []string{"Flexi withdrawal facility", "Interest only on utilised amount", "Relaxed eligibility"},
	},
}

// Catalog returns a copy of the product list.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// Generate prices every catalog entry for the applicant and returns the
// offers sorted ascending by effective rate. Purely a projection, no state.
func Generate(p profile.ApplicantProfile) []Offer {
	p.Normalize()

	creditAdj := creditAdjustment(p)
	employmentAdj := employmentAdjustment(p.EmploymentType)
	baseOdds := eligibility.Evaluate(p).ApprovalOdds
	months := p.TenureMonths()

	out := make([]Offer, 0, len(catalog))
	for _, entry := range catalog {
		rate := clampRate(entry.BaseRate + creditAdj + employmentAdj)
		emi := finance.CalculateEMI(p.LoanAmount, rate, months)

		out = append(out, Offer{
			BankName:         entry.BankName,
			ProductName:      entry.ProductName,
			EffectiveRate:    rate,
			MonthlyEMI:       emi,
			ProcessingFee:    int64(float64(p.LoanAmount) * entry.ProcessingFeePct / 100),
			TotalInterest:    finance.TotalInterest(p.LoanAmount, emi, months),
			ApprovalOdds:     clampOdds(baseOdds + entry.ApprovalOddsDelta),
			Features:         entry.Features,
			TenureMonths:     months,
			RequestedAmount:  p.LoanAmount,
			ProcessingFeePct: entry.ProcessingFeePct,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveRate < out[j].EffectiveRate
	})
	return out
}

func creditAdjustment(p profile.ApplicantProfile) float64 {
	if !p.HasCreditHistory {
		return 2.0
	}
	switch score := p.EffectiveCreditScore(); {
	case score >= 800:
		return -1.0
	case score >= 750:
		return -0.5
	case score >= 700:
		return 0
	case score >= 650:
		return 0.75
	default:
		return 2.0
	}
}

func employmentAdjustment(t profile.EmploymentType) float64 {
	switch t {
	case profile.EmploymentSelfEmployed:
		return 0.5
	case profile.EmploymentFreelancer:
		return 1.0
	default:
		return 0
	}
}

func clampRate(rate float64) float64 {
	if rate < minRate {
		return minRate
	}
	if rate > maxRate {
		return maxRate
	}
	return rate
}

func clampOdds(odds int) int {
	if odds < minOfferOdd {
		return minOfferOdd
	}
	if odds > maxOfferOdd {
		return maxOfferOdd
	}
	return odds
}

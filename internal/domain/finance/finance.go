// Package finance holds the closed-form money math shared by the eligibility
// calculator, the offer generator and the simulator. All amounts are whole
// rupees; rates are annual percentages.
package finance

import (
	"fmt"
	"math"

	"arthastra/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// CalculateEMI computes the fixed monthly installment for a reducing-balance
// loan:
//
//	EMI = P * r * (1+r)^n / ((1+r)^n - 1)
//
// with r the monthly rate. A zero rate degenerates to an even split. Both
// paths round up so EMI×n always covers the principal, down to single-rupee
// loans. Non-positive principal or months yields 0; callers guard their own
// ranges.
func CalculateEMI(principal int64, annualRatePercent float64, months int) int64 {
	if principal <= 0 || months <= 0 {
		return 0
	}
	if annualRatePercent <= 0 {
		return int64(math.Ceil(float64(principal) / float64(months)))
	}

	monthlyRate := annualRatePercent / 12.0 / 100.0
	factor := math.Pow(1+monthlyRate, float64(months))
	emi := float64(principal) * monthlyRate * factor / (factor - 1)

	return decimal.NewFromFloat(emi).Ceil().IntPart()
}

// CalculateDTI returns the bank-style debt-service ratio in percent:
// existing EMI obligations over gross monthly income, expenses excluded.
// Zero or negative income is an explicit error rather than a silent zero;
// callers normalize profiles before reaching here.
func CalculateDTI(monthlyIncome, existingEMI int64) (float64, error) {
	if monthlyIncome <= 0 {
		return 0, fmt.Errorf("%w: monthly income must be positive for DTI", apperrors.ErrInvalidArgument)
	}
	if existingEMI < 0 {
		existingEMI = 0
	}

	ratio := decimal.NewFromInt(existingEMI).
		Div(decimal.NewFromInt(monthlyIncome)).
		Mul(decimal.NewFromInt(100))
	dti, _ := ratio.Round(2).Float64()
	return dti, nil
}

// MaxPrincipalForEMI inverts the amortization formula: the largest principal
// whose installment at the given rate and term stays within emi.
func MaxPrincipalForEMI(emi int64, annualRatePercent float64, months int) int64 {
	if emi <= 0 || months <= 0 {
		return 0
	}
	if annualRatePercent <= 0 {
		return emi * int64(months)
	}

	monthlyRate := annualRatePercent / 12.0 / 100.0
	factor := math.Pow(1+monthlyRate, float64(months))
	principal := float64(emi) * (factor - 1) / (monthlyRate * factor)

	return decimal.NewFromFloat(principal).Round(0).IntPart()
}

// TotalInterest is the interest paid over the full term for a given EMI.
// Floored at zero to absorb rounding on degenerate inputs.
func TotalInterest(principal, emi int64, months int) int64 {
	total := emi*int64(months) - principal
	if total < 0 {
		return 0
	}
	return total
}

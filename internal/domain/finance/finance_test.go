package finance

import (
	"testing"

	"arthastra/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEMI(t *testing.T) {
	t.Run("reproduces the standard amortization value", func(t *testing.T) {
		// Direct evaluation gives 16251.18, carried up to the next rupee.
		// Calculators that round the monthly rate before compounding quote
		// ~16254 for the same loan; see DESIGN.md "EMI reference value".
		emi := CalculateEMI(500_000, 10.5, 36)
		assert.Equal(t, int64(16252), emi)
	})

	t.Run("zero rate splits principal evenly", func(t *testing.T) {
		assert.Equal(t, int64(10_000), CalculateEMI(120_000, 0, 12))
	})

	t.Run("zero rate rounds up on uneven split", func(t *testing.T) {
		emi := CalculateEMI(100, 0, 3)
		assert.Equal(t, int64(34), emi)
		assert.GreaterOrEqual(t, emi*3, int64(100))
	})

	t.Run("returns zero for non-positive inputs", func(t *testing.T) {
		assert.Equal(t, int64(0), CalculateEMI(0, 10.5, 36))
		assert.Equal(t, int64(0), CalculateEMI(-500, 10.5, 36))
		assert.Equal(t, int64(0), CalculateEMI(500_000, 10.5, 0))
	})

	t.Run("total repayment never falls below principal", func(t *testing.T) {
		cases := []struct {
			principal int64
			rate      float64
			months    int
		}{
			{50_000, 8.5, 12},
			{500_000, 10.5, 36},
			{2_500_000, 14.0, 240},
			{120_000, 0, 12},
			{100, 0, 3},
			{75_000, 18.0, 6},
			// Single-digit principals: the per-month share is well below a
			// rupee, so anything short of rounding up yields a zero EMI.
			{1, 10.5, 36},
			{5, 10.5, 36},
			{10, 10.5, 36},
			{15, 10.5, 36},
			{100, 10.5, 12},
		}
		for _, tc := range cases {
			emi := CalculateEMI(tc.principal, tc.rate, tc.months)
			assert.GreaterOrEqual(t, emi*int64(tc.months), tc.principal,
				"P=%d rate=%.1f n=%d", tc.principal, tc.rate, tc.months)
		}
	})
}

func TestCalculateDTI(t *testing.T) {
	t.Run("computes percentage ratio", func(t *testing.T) {
		dti, err := CalculateDTI(30_000, 9_000)
		assert.NoError(t, err)
		assert.Equal(t, 30.0, dti)
	})

	t.Run("zero existing EMI yields zero", func(t *testing.T) {
		dti, err := CalculateDTI(30_000, 0)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, dti)
	})

	t.Run("zero income is an explicit error", func(t *testing.T) {
		_, err := CalculateDTI(0, 5_000)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("negative obligations treated as zero", func(t *testing.T) {
		dti, err := CalculateDTI(30_000, -500)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, dti)
	})
}

func TestMaxPrincipalForEMI(t *testing.T) {
	t.Run("inverts the EMI formula", func(t *testing.T) {
		principal := MaxPrincipalForEMI(16251, 10.5, 36)
		assert.InDelta(t, 500_000, float64(principal), 100)

		// Re-applying the forward formula must stay within the EMI budget
		// give or take integer rounding.
		emi := CalculateEMI(principal, 10.5, 36)
		assert.InDelta(t, 16251, float64(emi), 2)
	})

	t.Run("zero rate is a straight multiple", func(t *testing.T) {
		assert.Equal(t, int64(120_000), MaxPrincipalForEMI(10_000, 0, 12))
	})

	t.Run("returns zero for non-positive inputs", func(t *testing.T) {
		assert.Equal(t, int64(0), MaxPrincipalForEMI(0, 10.5, 36))
		assert.Equal(t, int64(0), MaxPrincipalForEMI(16251, 10.5, 0))
	})
}

func TestTotalInterest(t *testing.T) {
	assert.Equal(t, int64(85_036), TotalInterest(500_000, 16251, 36))
	assert.Equal(t, int64(0), TotalInterest(120_000, 10_000, 12))
	assert.Equal(t, int64(0), TotalInterest(500_000, 100, 3))
}

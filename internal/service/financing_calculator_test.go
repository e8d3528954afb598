package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestFinancingCalculatorStandardLoan(t *testing.T) {
	calc := NewFinancingCalculator(nil, nil)
	result, err := calc.Calculate(models.FinancingTerms{
		VehiclePrice: 30000,
		DownPayment:  5000,
		AnnualRate:   6.0,
		TermMonths:   60,
	})
	require.NoError(t, err)
	assert.InDelta(t, 25000.0, result.Principal, 0.001)
	assert.InDelta(t, 483.32, result.MonthlyPayment, 0.01)
	assert.InDelta(t, 3999.20, result.TotalInterest, 0.01)
	assert.Equal(t, models.AffordabilityUnknown, result.Affordability)
	assert.Nil(t, result.DTIRatio)
}

func TestFinancingCalculatorPaymentIdentity(t *testing.T) {
	calc := NewFinancingCalculator(nil, nil)
	cases := []models.FinancingTerms{
		{VehiclePrice: 30000, DownPayment: 5000, AnnualRate: 6.0, TermMonths: 60},
		{VehiclePrice: 18500, DownPayment: 1000, TradeInValue: 2500, AnnualRate: 9.9, TermMonths: 48},
		{VehiclePrice: 55000, DownPayment: 11000, AnnualRate: 3.25, TermMonths: 72, TaxRate: 8.0, Fees: 450},
	}
	for _, terms := range cases {
		result, err := calc.Calculate(terms)
		require.NoError(t, err)
		total := result.MonthlyPayment * float64(result.TermMonths)
		assert.InDelta(t, result.Principal+result.TotalInterest, total, 0.01,
			"payment identity must hold for %+v", terms)
	}
}

func TestFinancingCalculatorZeroRate(t *testing.T) {
	calc := NewFinancingCalculator(nil, nil)
	result, err := calc.Calculate(models.FinancingTerms{
		VehiclePrice: 24000,
		DownPayment:  0,
		AnnualRate:   0,
		TermMonths:   48,
	})
	require.NoError(t, err)
	assert.InDelta(t, 500.0, result.MonthlyPayment, 0.001)
	assert.InDelta(t, 0.0, result.TotalInterest, 0.01)
}

func TestFinancingCalculatorAffordabilityBands(t *testing.T) {
	calc := NewFinancingCalculator(nil, nil)

	cases := []struct {
		income   float64
		expected models.Affordability
	}{
		{income: 5000, expected: models.AffordabilityAffordable},
		{income: 2500, expected: models.AffordabilityTight},
		{income: 1200, expected: models.AffordabilityUnaffordable},
	}
	for _, tc := range cases {
		result, err := calc.Calculate(models.FinancingTerms{
			VehiclePrice:  30000,
			DownPayment:   5000,
			AnnualRate:    6.0,
			TermMonths:    60,
			MonthlyIncome: floatPtr(tc.income),
		})
		require.NoError(t, err)
		require.NotNil(t, result.DTIRatio)
		assert.Equal(t, tc.expected, result.Affordability, "income %.0f", tc.income)
	}
}

func TestFinancingCalculatorTaxAndFeesFinanced(t *testing.T) {
	calc := NewFinancingCalculator(nil, nil)
	result, err := calc.Calculate(models.FinancingTerms{
		VehiclePrice: 20000,
		DownPayment:  2000,
		AnnualRate:   0,
		TermMonths:   36,
		TaxRate:      10,
		Fees:         500,
	})
	require.NoError(t, err)
	assert.InDelta(t, 20500.0, result.Principal, 0.001)
	assert.InDelta(t, 18000.0, result.Breakdown.Principal, 0.001)
	assert.InDelta(t, 2000.0, result.Breakdown.Tax, 0.001)
	assert.InDelta(t, 500.0, result.Breakdown.Fees, 0.001)
}

func TestFinancingCalculatorRejectsInvalidInput(t *testing.T) {
	calc := NewFinancingCalculator(nil, nil)

	_, err := calc.Calculate(models.FinancingTerms{VehiclePrice: 10000, TermMonths: 0})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = calc.Calculate(models.FinancingTerms{VehiclePrice: 10000, AnnualRate: -1, TermMonths: 36})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = calc.Calculate(models.FinancingTerms{VehiclePrice: 10000, DownPayment: 8000, TradeInValue: 5000, TermMonths: 36})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

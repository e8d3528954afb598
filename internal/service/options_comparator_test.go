package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

func newTestComparator() *FinancingOptionsComparator {
	return NewFinancingOptionsComparator(NewFinancingCalculator(nil, nil), newTestScoringEngine(), nil)
}

func comparatorRequest(income float64) *models.FIRequest {
	return &models.FIRequest{
		ID:       "req-1",
		TenantID: "t1",
		Employment: models.Employment{
			MonthlyIncome: income,
			MonthsAtJob:   30,
			IncomeType:    models.IncomeTypeSalaried,
		},
		CreditInfo: models.CreditInfo{Range: models.CreditGood},
	}
}

func TestComparatorRanksByProbabilityThenPayment(t *testing.T) {
	comparator := newTestComparator()

	// With $3000/mo income the cheap offer stays affordable while the
	// short expensive one crosses into unaffordable territory.
	comparison, err := comparator.Compare(comparatorRequest(3000), 30000, 5000, []models.FinancingOption{
		{Lender: "ShortTerm Bank", AnnualRate: 10.0, TermMonths: 36},
		{Lender: "Credit Union", AnnualRate: 3.0, TermMonths: 60},
	})
	require.NoError(t, err)
	require.Len(t, comparison.Options, 2)

	assert.Equal(t, "Credit Union", comparison.Options[0].Lender)
	assert.Equal(t, "Credit Union", comparison.BestLender)
	assert.Greater(t, comparison.Options[0].ApprovalProbability, comparison.Options[1].ApprovalProbability)
}

func TestComparatorBreaksProbabilityTiesWithPayment(t *testing.T) {
	comparator := newTestComparator()

	// High income keeps every offer in the same affordability band, so
	// probabilities tie and the cheaper payment wins.
	comparison, err := comparator.Compare(comparatorRequest(12000), 30000, 5000, []models.FinancingOption{
		{Lender: "Pricier", AnnualRate: 4.0, TermMonths: 60},
		{Lender: "Cheaper", AnnualRate: 3.0, TermMonths: 60},
	})
	require.NoError(t, err)
	assert.Equal(t, comparison.Options[0].ApprovalProbability, comparison.Options[1].ApprovalProbability)
	assert.Equal(t, "Cheaper", comparison.BestLender)
	assert.Less(t, comparison.Options[0].MonthlyPayment, comparison.Options[1].MonthlyPayment)
}

func TestComparatorMarksExactlyOneRecommended(t *testing.T) {
	comparator := newTestComparator()
	comparison, err := comparator.Compare(comparatorRequest(4000), 30000, 5000, []models.FinancingOption{
		{Lender: "A", AnnualRate: 5.0, TermMonths: 60},
		{Lender: "B", AnnualRate: 6.5, TermMonths: 48},
		{Lender: "C", AnnualRate: 8.0, TermMonths: 72},
	})
	require.NoError(t, err)

	recommended := 0
	for _, opt := range comparison.Options {
		if opt.IsRecommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)
	assert.True(t, comparison.Options[0].IsRecommended)
	assert.NotEmpty(t, comparison.Recommendation)
}

func TestComparatorRejectsEmptyOptions(t *testing.T) {
	comparator := newTestComparator()
	_, err := comparator.Compare(comparatorRequest(4000), 30000, 5000, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

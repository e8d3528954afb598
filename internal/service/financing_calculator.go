package service

import (
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

// Debt-to-income bands.
const (
	dtiAffordableMax = 0.15
	dtiTightMax      = 0.25
)

// FinancingCalculator computes fixed-rate amortization terms. It holds no
// state; identical inputs always produce identical output.
type FinancingCalculator struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFinancingCalculator constructs the calculator.
func NewFinancingCalculator(validate *validator.Validate, logger *zap.Logger) *FinancingCalculator {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinancingCalculator{validator: validate, logger: logger}
}

// Calculate produces the payment summary for one set of loan terms.
// Tax and fees are financed on top of the vehicle principal; the breakdown
// itemises each component so reviewers can audit the financed amount.
func (c *FinancingCalculator) Calculate(terms models.FinancingTerms) (*models.FinancingCalculationResult, error) {
	if err := c.validator.Struct(terms); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid financing terms")
	}
	if terms.TermMonths <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term must be positive")
	}
	if terms.AnnualRate < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rate must not be negative")
	}

	base := terms.VehiclePrice - terms.DownPayment - terms.TradeInValue
	if base < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "down payment and trade-in exceed vehicle price")
	}

	tax := round2(terms.VehiclePrice * terms.TaxRate / 100)
	principal := round2(base + tax + terms.Fees)
	n := float64(terms.TermMonths)

	var payment float64
	if terms.AnnualRate == 0 {
		payment = principal / n
	} else {
		r := terms.AnnualRate / 12 / 100
		payment = principal * r / (1 - math.Pow(1+r, -n))
	}
	payment = round2(payment)

	totalInterest := round2(payment*n - principal)
	result := &models.FinancingCalculationResult{
		Principal:      principal,
		MonthlyPayment: payment,
		TotalInterest:  totalInterest,
		TotalCost:      round2(principal + totalInterest + terms.DownPayment + terms.TradeInValue),
		TermMonths:     terms.TermMonths,
		AnnualRate:     terms.AnnualRate,
		Affordability:  models.AffordabilityUnknown,
		Breakdown: models.PaymentBreakdown{
			Principal: round2(base),
			Interest:  totalInterest,
			Tax:       tax,
			Fees:      terms.Fees,
		},
	}

	if terms.MonthlyIncome != nil && *terms.MonthlyIncome > 0 {
		dti := payment / *terms.MonthlyIncome
		result.DTIRatio = &dti
		result.Affordability = classifyAffordability(dti)
	}

	return result, nil
}

func classifyAffordability(dti float64) models.Affordability {
	switch {
	case dti <= dtiAffordableMax:
		return models.AffordabilityAffordable
	case dti <= dtiTightMax:
		return models.AffordabilityTight
	default:
		return models.AffordabilityUnaffordable
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

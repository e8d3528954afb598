package service

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

// FinancingOptionsComparator ranks candidate lender offers for one
// applicant by running each through the calculator and scoring engine.
type FinancingOptionsComparator struct {
	calculator *FinancingCalculator
	scoring    *ApprovalScoringEngine
	logger     *zap.Logger
}

// NewFinancingOptionsComparator constructs the comparator.
func NewFinancingOptionsComparator(calculator *FinancingCalculator, scoring *ApprovalScoringEngine, logger *zap.Logger) *FinancingOptionsComparator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinancingOptionsComparator{calculator: calculator, scoring: scoring, logger: logger}
}

// Compare ranks offers by approval probability, breaking ties with the
// lower monthly payment. Exactly one option is marked recommended.
func (c *FinancingOptionsComparator) Compare(req *models.FIRequest, vehiclePrice, downPayment float64, options []models.FinancingOption) (*models.OptionsComparison, error) {
	if len(options) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one financing option is required")
	}

	ranked := make([]models.RankedOption, 0, len(options))
	for _, opt := range options {
		terms := models.FinancingTerms{
			VehiclePrice: vehiclePrice,
			DownPayment:  downPayment,
			AnnualRate:   opt.AnnualRate,
			TermMonths:   opt.TermMonths,
		}
		if req.Employment.MonthlyIncome > 0 {
			income := req.Employment.MonthlyIncome
			terms.MonthlyIncome = &income
		}
		calc, err := c.calculator.Calculate(terms)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("invalid terms for lender %s", opt.Lender))
		}

		score := c.scoring.Score(ScoringInput{
			Employment:   req.Employment,
			CreditInfo:   req.CreditInfo,
			PersonalInfo: req.PersonalInfo,
			VehiclePrice: vehiclePrice,
			DownPayment:  downPayment,
			Calculation:  calc,
		})

		ranked = append(ranked, models.RankedOption{
			FinancingOption:     opt,
			MonthlyPayment:      calc.MonthlyPayment,
			DTIRatio:            calc.DTIRatio,
			ApprovalProbability: score.Probability,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ApprovalProbability != ranked[j].ApprovalProbability {
			return ranked[i].ApprovalProbability > ranked[j].ApprovalProbability
		}
		return ranked[i].MonthlyPayment < ranked[j].MonthlyPayment
	})
	ranked[0].IsRecommended = true

	return &models.OptionsComparison{
		Options:        ranked,
		BestLender:     ranked[0].Lender,
		Recommendation: c.summarize(ranked),
	}, nil
}

// summarize names the trade-off when the cheapest payment and the highest
// approval odds come from different lenders.
func (c *FinancingOptionsComparator) summarize(ranked []models.RankedOption) string {
	best := ranked[0]
	cheapest := best
	for _, opt := range ranked[1:] {
		if opt.MonthlyPayment < cheapest.MonthlyPayment {
			cheapest = opt
		}
	}
	if cheapest.Lender == best.Lender {
		return fmt.Sprintf("%s offers both the best approval odds and the lowest payment at $%.2f/mo", best.Lender, best.MonthlyPayment)
	}
	return fmt.Sprintf("%s has the best approval odds (%.0f%%); %s is cheaper at $%.2f/mo but with lower odds",
		best.Lender, best.ApprovalProbability*100, cheapest.Lender, cheapest.MonthlyPayment)
}

package service

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/pkg/config"
)

// Credit tier deltas, the dominant scoring factor. Ordering across tiers
// is relied on by the recommendation bands.
var creditTierDelta = map[models.CreditRange]int{
	models.CreditExcellent: 200,
	models.CreditGood:      120,
	models.CreditFair:      30,
	models.CreditPoor:      -80,
	models.CreditVeryPoor:  -180,
}

// Fixed co-signer boost per credit tier. A co-signer never lowers the
// client's score.
var cosignerTierBonus = map[models.CreditRange]int{
	models.CreditExcellent: 100,
	models.CreditGood:      75,
	models.CreditFair:      40,
	models.CreditPoor:      15,
	models.CreditVeryPoor:  0,
}

// logisticSlope anchors the score-to-probability curve so the base score
// maps to 0.5 and the approve threshold lands around 0.75.
const logisticSlope = 0.008

// ScoringInput is everything a scoring run reads. The engine never reaches
// back into storage; callers assemble the snapshot.
type ScoringInput struct {
	Employment   models.Employment
	CreditInfo   models.CreditInfo
	PersonalInfo models.PersonalInfo
	VehiclePrice float64
	DownPayment  float64
	Calculation  *models.FinancingCalculationResult
}

// ApprovalScoringEngine turns an applicant snapshot into a score,
// probability and recommendation. Runs are full recomputations; there is
// no incremental path.
type ApprovalScoringEngine struct {
	rejectBelow  int
	approveAbove int
	logger       *zap.Logger
	now          func() time.Time
}

// NewApprovalScoringEngine constructs the engine with band thresholds.
func NewApprovalScoringEngine(cfg config.ScoringConfig, logger *zap.Logger) *ApprovalScoringEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	rejectBelow := cfg.RejectBelow
	if rejectBelow <= 0 {
		rejectBelow = 400
	}
	approveAbove := cfg.ApproveAbove
	if approveAbove <= rejectBelow {
		approveAbove = 650
	}
	return &ApprovalScoringEngine{
		rejectBelow:  rejectBelow,
		approveAbove: approveAbove,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source.
func (e *ApprovalScoringEngine) WithClock(now func() time.Time) *ApprovalScoringEngine {
	e.now = now
	return e
}

// Score computes the approval score from scratch. The factor strings are a
// contractual output shown to reviewers, one per adjustment applied.
func (e *ApprovalScoringEngine) Score(input ScoringInput) *models.ApprovalScore {
	score := models.ScoreBase
	var risks, positives []string

	if delta, ok := creditTierDelta[input.CreditInfo.Range]; ok {
		score += delta
		if delta >= 0 {
			positives = append(positives, fmt.Sprintf("credit range %s (+%d)", input.CreditInfo.Range, delta))
		} else {
			risks = append(risks, fmt.Sprintf("credit range %s (%d)", input.CreditInfo.Range, delta))
		}
	} else {
		score -= 60
		risks = append(risks, "credit range not provided (-60)")
	}

	affordability := models.AffordabilityUnknown
	if input.Calculation != nil {
		affordability = input.Calculation.Affordability
	}
	switch affordability {
	case models.AffordabilityAffordable:
		score += 40
		positives = append(positives, "payment is affordable for stated income (+40)")
	case models.AffordabilityTight:
		score -= 40
		risks = append(risks, "payment is tight for stated income (-40)")
	case models.AffordabilityUnaffordable:
		score -= 120
		risks = append(risks, "payment exceeds affordable debt-to-income ratio (-120)")
	default:
		score -= 20
		risks = append(risks, "no income supplied, affordability unknown (-20)")
	}

	switch {
	case input.Employment.MonthsAtJob >= 24:
		score += 50
		positives = append(positives, "two or more years at current job (+50)")
	case input.Employment.MonthsAtJob >= 12:
		score += 20
		positives = append(positives, "over a year at current job (+20)")
	case input.Employment.MonthsAtJob < 6:
		score -= 60
		risks = append(risks, "less than six months at current job (-60)")
	}

	switch input.Employment.IncomeType {
	case models.IncomeTypeSalaried:
		score += 40
		positives = append(positives, "salaried income (+40)")
	case models.IncomeTypeSelfEmployed, models.IncomeTypeBusiness:
		score += 10
		positives = append(positives, fmt.Sprintf("%s income (+10)", input.Employment.IncomeType))
	default:
		score -= 60
		risks = append(risks, "no verifiable income source (-60)")
	}

	if input.VehiclePrice > 0 {
		ratio := input.DownPayment / input.VehiclePrice
		switch {
		case ratio >= 0.2:
			score += 60
			positives = append(positives, "down payment of 20% or more (+60)")
		case ratio >= 0.1:
			score += 25
			positives = append(positives, "down payment of 10% or more (+25)")
		case ratio < 0.05:
			score -= 30
			risks = append(risks, "down payment below 5% of vehicle price (-30)")
		}
	}

	if income := input.Employment.MonthlyIncome; income > 0 {
		burden := (input.PersonalInfo.HousingPayment + 250*float64(input.PersonalInfo.Dependents)) / income
		if burden > 0.4 {
			score -= 60
			risks = append(risks, "housing and dependent obligations exceed 40% of income (-60)")
		}
	}

	score = clampScore(score)
	return &models.ApprovalScore{
		Score:           score,
		Probability:     e.Probability(score),
		Recommendation:  e.Recommendation(score, input.CreditInfo.Range, affordability),
		RiskFactors:     risks,
		PositiveFactors: positives,
		ComputedAt:      e.now(),
	}
}

// Probability maps a score onto a logistic curve anchored at the base
// score. Monotonic in the score.
func (e *ApprovalScoringEngine) Probability(score int) float64 {
	p := 1 / (1 + math.Exp(-logisticSlope*float64(score-models.ScoreBase)))
	return math.Round(p*10000) / 10000
}

// Recommendation maps a score into its decision band. The middle band
// flags for a co-signer when credit is weak but the payment itself is
// not already unaffordable.
func (e *ApprovalScoringEngine) Recommendation(score int, credit models.CreditRange, affordability models.Affordability) models.Recommendation {
	switch {
	case score < e.rejectBelow:
		return models.RecommendReject
	case score > e.approveAbove:
		return models.RecommendApprove
	}
	weakCredit := credit == models.CreditPoor || credit == models.CreditVeryPoor
	if weakCredit && affordability != models.AffordabilityUnaffordable {
		return models.RecommendNeedsCosigner
	}
	return models.RecommendConditional
}

// CombineWithCosigner blends the client score with the co-signer's credit
// tier only. It returns the combined score; recommendation and probability
// are not re-derived here.
func (e *ApprovalScoringEngine) CombineWithCosigner(score int, tier models.CreditRange) int {
	return clampScore(score + cosignerTierBonus[tier])
}

func clampScore(score int) int {
	if score < models.ScoreMin {
		return models.ScoreMin
	}
	if score > models.ScoreMax {
		return models.ScoreMax
	}
	return score
}

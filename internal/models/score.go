package models

import "time"

// Recommendation is the decision band derived from a score.
type Recommendation string

const (
	RecommendApprove       Recommendation = "approve"
	RecommendConditional   Recommendation = "conditional"
	RecommendReject        Recommendation = "reject"
	RecommendNeedsCosigner Recommendation = "needs_cosigner"
)

// ApprovalScore is recomputed in full on every scoring run. The factor
// lists are a contractual output displayed to reviewers, not diagnostics.
type ApprovalScore struct {
	Score           int            `json:"score"`
	Probability     float64        `json:"probability"`
	Recommendation  Recommendation `json:"recommendation"`
	RiskFactors     []string       `json:"risk_factors"`
	PositiveFactors []string       `json:"positive_factors"`
	ComputedAt      time.Time      `json:"computed_at"`
}

// Score scale bounds.
const (
	ScoreMin  = 0
	ScoreMax  = 1000
	ScoreBase = 500
)

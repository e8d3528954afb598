package models

import "time"

// FIMetricsFilter bounds a reporting rollup to a tenant and period.
type FIMetricsFilter struct {
	From *time.Time
	To   *time.Time
}

// FIMetricsReport is a read-only rollup over financing requests.
type FIMetricsReport struct {
	From             *time.Time     `json:"from,omitempty"`
	To               *time.Time     `json:"to,omitempty"`
	TotalRequests    int            `json:"total_requests"`
	ApprovedRequests int            `json:"approved_requests"`
	RejectedRequests int            `json:"rejected_requests"`
	ApprovalRate     float64        `json:"approval_rate"`
	AverageScore     float64        `json:"average_score"`
	AverageIncome    float64        `json:"average_income"`
	StatusCounts     map[string]int `json:"status_counts"`
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/drivelane/fi-decision-api/internal/models"
)

// MetricsRepository computes read-only rollups over financing requests.
type MetricsRepository struct {
	db *sqlx.DB
}

// NewMetricsRepository creates a new metrics repository.
func NewMetricsRepository(db *sqlx.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

type metricsSummaryRow struct {
	Total         int     `db:"total"`
	Approved      int     `db:"approved"`
	Rejected      int     `db:"rejected"`
	AverageScore  float64 `db:"average_score"`
	AverageIncome float64 `db:"average_income"`
}

type statusCountRow struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// Summary aggregates approval rate, average score and average income for
// a tenant over a period. Score and income are read out of the JSONB
// payloads the scoring pipeline wrote.
func (r *MetricsRepository) Summary(ctx context.Context, tenantID string, filter models.FIMetricsFilter) (*models.FIMetricsReport, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at < $%d", len(args)+1)
		args = append(args, *filter.To)
	}

	summaryQuery := fmt.Sprintf(`SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = 'approved') AS approved,
        COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
        COALESCE(AVG((approval_score->>'score')::numeric), 0) AS average_score,
        COALESCE(AVG((employment->>'monthly_income')::numeric), 0) AS average_income
        FROM fi_requests %s`, where)

	var summary metricsSummaryRow
	if err := r.db.GetContext(ctx, &summary, summaryQuery, args...); err != nil {
		return nil, fmt.Errorf("metrics summary: %w", err)
	}

	statusQuery := fmt.Sprintf(`SELECT status, COUNT(*) AS count FROM fi_requests %s GROUP BY status`, where)
	var statuses []statusCountRow
	if err := r.db.SelectContext(ctx, &statuses, statusQuery, args...); err != nil {
		return nil, fmt.Errorf("metrics status counts: %w", err)
	}

	report := &models.FIMetricsReport{
		From:             filter.From,
		To:               filter.To,
		TotalRequests:    summary.Total,
		ApprovedRequests: summary.Approved,
		RejectedRequests: summary.Rejected,
		AverageScore:     summary.AverageScore,
		AverageIncome:    summary.AverageIncome,
		StatusCounts:     make(map[string]int, len(statuses)),
	}
	if decided := summary.Approved + summary.Rejected; decided > 0 {
		report.ApprovalRate = float64(summary.Approved) / float64(decided)
	}
	for _, row := range statuses {
		report.StatusCounts[row.Status] = row.Count
	}
	return report, nil
}

package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/pkg/config"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/export"
)

type metricsSource interface {
	Summary(ctx context.Context, tenantID string, filter models.FIMetricsFilter) (*models.FIMetricsReport, error)
}

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ReportingService serves period-bounded rollups with short-lived caching
// and renders them as CSV or PDF for export.
type ReportingService struct {
	metrics  metricsSource
	cache    reportCache
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportingService constructs the service. The cache may be nil.
func NewReportingService(metrics metricsSource, cache reportCache, cfg config.ReportingConfig, logger *zap.Logger) *ReportingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportingService{
		metrics:  metrics,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		cacheTTL: ttl,
		logger:   logger,
	}
}

// Summary returns the rollup for a tenant and period, from cache when
// fresh enough.
func (s *ReportingService) Summary(ctx context.Context, tenantID string, filter models.FIMetricsFilter) (*models.FIMetricsReport, error) {
	key := cacheKey(tenantID, filter)
	if s.cache != nil {
		var cached models.FIMetricsReport
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	report, err := s.metrics.Summary(ctx, tenantID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute metrics")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, report, s.cacheTTL); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return report, nil
}

// ExportCSV renders the rollup as CSV.
func (s *ReportingService) ExportCSV(ctx context.Context, tenantID string, filter models.FIMetricsFilter) ([]byte, error) {
	report, err := s.Summary(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	data, err := s.csv.Render(reportDataset(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV report")
	}
	return data, nil
}

// ExportPDF renders the rollup as a tabular PDF.
func (s *ReportingService) ExportPDF(ctx context.Context, tenantID string, filter models.FIMetricsFilter) ([]byte, error) {
	report, err := s.Summary(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	data, err := s.pdf.Render(reportDataset(report), "Financing Decision Report")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF report")
	}
	return data, nil
}

// ExportQuotePDF renders one financing calculation as a shareable quote.
func (s *ReportingService) ExportQuotePDF(calc *models.FinancingCalculationResult) ([]byte, error) {
	if calc == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no financing calculation to export")
	}
	pairs := [][2]string{
		{"Financed amount", fmt.Sprintf("$%.2f", calc.Principal)},
		{"Monthly payment", fmt.Sprintf("$%.2f", calc.MonthlyPayment)},
		{"Term", fmt.Sprintf("%d months", calc.TermMonths)},
		{"Annual rate", fmt.Sprintf("%.2f%%", calc.AnnualRate)},
		{"Total interest", fmt.Sprintf("$%.2f", calc.TotalInterest)},
		{"Total cost", fmt.Sprintf("$%.2f", calc.TotalCost)},
	}
	if calc.DTIRatio != nil {
		pairs = append(pairs, [2]string{"Debt-to-income", fmt.Sprintf("%.1f%% (%s)", *calc.DTIRatio*100, calc.Affordability)})
	}
	data, err := s.pdf.RenderKeyValue("Financing Quote", pairs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render quote PDF")
	}
	return data, nil
}

func cacheKey(tenantID string, filter models.FIMetricsFilter) string {
	from, to := "any", "any"
	if filter.From != nil {
		from = filter.From.UTC().Format(time.RFC3339)
	}
	if filter.To != nil {
		to = filter.To.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("fi:report:%s:%s:%s", tenantID, from, to)
}

func reportDataset(report *models.FIMetricsReport) export.Dataset {
	row := func(metric, value string) map[string]string {
		return map[string]string{"Metric": metric, "Value": value}
	}
	rows := []map[string]string{
		row("Total requests", fmt.Sprintf("%d", report.TotalRequests)),
		row("Approved", fmt.Sprintf("%d", report.ApprovedRequests)),
		row("Rejected", fmt.Sprintf("%d", report.RejectedRequests)),
		row("Approval rate", fmt.Sprintf("%.1f%%", report.ApprovalRate*100)),
		row("Average score", fmt.Sprintf("%.0f", report.AverageScore)),
		row("Average monthly income", fmt.Sprintf("$%.2f", report.AverageIncome)),
	}
	statuses := make([]string, 0, len(report.StatusCounts))
	for status := range report.StatusCounts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, row(fmt.Sprintf("Status %s", status), fmt.Sprintf("%d", report.StatusCounts[status])))
	}
	return export.Dataset{Headers: []string{"Metric", "Value"}, Rows: rows}
}

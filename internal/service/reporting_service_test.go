package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/pkg/config"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type metricsSourceStub struct {
	report *models.FIMetricsReport
	calls  int
}

func (s *metricsSourceStub) Summary(ctx context.Context, tenantID string, filter models.FIMetricsFilter) (*models.FIMetricsReport, error) {
	s.calls++
	return s.report, nil
}

type reportCacheStub struct {
	entries map[string][]byte
	sets    int
}

func newReportCacheStub() *reportCacheStub {
	return &reportCacheStub{entries: map[string][]byte{}}
}

func (c *reportCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if _, ok := c.entries[key]; !ok {
		return appErrors.ErrCacheMiss
	}
	return nil
}

func (c *reportCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = nil
	c.sets++
	return nil
}

func sampleReport() *models.FIMetricsReport {
	return &models.FIMetricsReport{
		TotalRequests:    12,
		ApprovedRequests: 7,
		RejectedRequests: 2,
		ApprovalRate:     0.5833,
		AverageScore:     612,
		AverageIncome:    5400.50,
		StatusCounts:     map[string]int{"approved": 7, "rejected": 2, "under_review": 3},
	}
}

func TestReportingServiceExportCSV(t *testing.T) {
	source := &metricsSourceStub{report: sampleReport()}
	svc := NewReportingService(source, nil, config.ReportingConfig{}, nil)

	data, err := svc.ExportCSV(context.Background(), "t1", models.FIMetricsFilter{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "Metric,Value", lines[0])
	assert.Equal(t, "Total requests,12", lines[1])
	assert.Equal(t, "Approved,7", lines[2])
	assert.Equal(t, "Approval rate,58.3%", lines[4])
	assert.Contains(t, string(data), "Status under_review,3")
}

func TestReportingServiceExportPDF(t *testing.T) {
	source := &metricsSourceStub{report: sampleReport()}
	svc := NewReportingService(source, nil, config.ReportingConfig{}, nil)

	data, err := svc.ExportPDF(context.Background(), "t1", models.FIMetricsFilter{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestReportingServiceSummaryWritesCache(t *testing.T) {
	source := &metricsSourceStub{report: sampleReport()}
	cache := newReportCacheStub()
	svc := NewReportingService(source, cache, config.ReportingConfig{}, nil)

	_, err := svc.Summary(context.Background(), "t1", models.FIMetricsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, cache.sets)

	// A warm cache short-circuits the rollup query.
	_, err = svc.Summary(context.Background(), "t1", models.FIMetricsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drivelane/fi-decision-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the decisioning pipeline. All methods are nil-safe so instrumentation
// can be disabled by passing a nil service around.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	scoresComputed  *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	workflowRuns    prometheus.Counter
	documentsSubmit prometheus.Counter
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	scoresComputed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fi_scores_computed_total",
		Help: "Approval scores computed, labelled by recommendation band",
	}, []string{"recommendation"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fi_status_transitions_total",
		Help: "Committed request status transitions",
	}, []string{"from", "to"})

	workflowRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fi_workflow_runs_total",
		Help: "Workflow rules that matched and ran their actions",
	})

	documentsSubmit := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fi_document_submissions_total",
		Help: "Documents submitted through tokenized requests",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scoresComputed, transitions, workflowRuns, documentsSubmit, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		scoresComputed:  scoresComputed,
		transitions:     transitions,
		workflowRuns:    workflowRuns,
		documentsSubmit: documentsSubmit,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordScore counts a scoring run by its recommendation band.
func (m *MetricsService) RecordScore(recommendation models.Recommendation) {
	if m == nil {
		return
	}
	m.scoresComputed.WithLabelValues(string(recommendation)).Inc()
}

// RecordTransition counts a committed status transition.
func (m *MetricsService) RecordTransition(from, to models.FIRequestStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordWorkflowRun counts one matched rule execution.
func (m *MetricsService) RecordWorkflowRun() {
	if m == nil {
		return
	}
	m.workflowRuns.Inc()
}

// RecordDocumentSubmission counts one token submission.
func (m *MetricsService) RecordDocumentSubmission() {
	if m == nil {
		return
	}
	m.documentsSubmit.Inc()
}

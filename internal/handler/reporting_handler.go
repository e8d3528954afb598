package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/service"
	"github.com/drivelane/fi-decision-api/pkg/response"
)

// ReportingHandler exposes the decision metrics rollup and its exports.
type ReportingHandler struct {
	reporting *service.ReportingService
}

// NewReportingHandler constructs handler.
func NewReportingHandler(reporting *service.ReportingService) *ReportingHandler {
	return &ReportingHandler{reporting: reporting}
}

func metricsFilter(c *gin.Context) models.FIMetricsFilter {
	var filter models.FIMetricsFilter
	if raw := c.Query("from"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.From = &ts
		}
	}
	if raw := c.Query("to"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.To = &ts
		}
	}
	return filter
}

// Summary godoc
// @Summary Decision metrics summary
// @Tags Reports
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/reports/summary [get]
func (h *ReportingHandler) Summary(c *gin.Context) {
	claims := claimsFromContext(c)
	report, err := h.reporting.Summary(c.Request.Context(), claims.TenantID, metricsFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ExportCSV godoc
// @Summary Export the metrics summary as CSV
// @Tags Reports
// @Produce text/csv
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /fi/reports/export/csv [get]
func (h *ReportingHandler) ExportCSV(c *gin.Context) {
	claims := claimsFromContext(c)
	data, err := h.reporting.ExportCSV(c.Request.Context(), claims.TenantID, metricsFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="fi_report.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF godoc
// @Summary Export the metrics summary as PDF
// @Tags Reports
// @Produce application/pdf
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /fi/reports/export/pdf [get]
func (h *ReportingHandler) ExportPDF(c *gin.Context) {
	claims := claimsFromContext(c)
	data, err := h.reporting.ExportPDF(c.Request.Context(), claims.TenantID, metricsFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="fi_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/service"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/response"
)

// FIRequestHandler exposes the financing request lifecycle.
type FIRequestHandler struct {
	requests   *service.FIRequestService
	calculator *service.FinancingCalculator
	reporting  *service.ReportingService
}

// NewFIRequestHandler constructs handler.
func NewFIRequestHandler(requests *service.FIRequestService, calculator *service.FinancingCalculator, reporting *service.ReportingService) *FIRequestHandler {
	return &FIRequestHandler{requests: requests, calculator: calculator, reporting: reporting}
}

// Calculate godoc
// @Summary Run an ad-hoc financing calculation
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body models.FinancingTerms true "Financing terms"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/calculations [post]
func (h *FIRequestHandler) Calculate(c *gin.Context) {
	var terms models.FinancingTerms
	if err := c.ShouldBindJSON(&terms); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.calculator.Calculate(terms)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Open a draft financing request
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateFIRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests [post]
func (h *FIRequestHandler) Create(c *gin.Context) {
	var req dto.CreateFIRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	request, err := h.requests.Create(c.Request.Context(), claims.TenantID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Get godoc
// @Summary Get a financing request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id} [get]
func (h *FIRequestHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.Get(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// List godoc
// @Summary List financing requests
// @Tags Requests
// @Produce json
// @Param client_id query string false "Filter by client"
// @Param status query []string false "Filter by status" collectionFormat(multi)
// @Param assigned_to query string false "Filter by assignee"
// @Param from query string false "Created from (RFC3339)"
// @Param to query string false "Created to (RFC3339)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests [get]
func (h *FIRequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	page, pageSize := pageParams(c)

	filter := models.FIRequestFilter{
		ClientID:   c.Query("client_id"),
		AssignedTo: c.Query("assigned_to"),
		Page:       page,
		PageSize:   pageSize,
	}
	for _, raw := range c.QueryArray("status") {
		filter.Status = append(filter.Status, models.FIRequestStatus(raw))
	}
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

	requests, total, err := h.requests.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, models.NewPagination(page, pageSize, total))
}

// Update godoc
// @Summary Update an editable financing request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateFIRequestRequest true "Request payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id} [put]
func (h *FIRequestHandler) Update(c *gin.Context) {
	var req dto.UpdateFIRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	request, err := h.requests.Update(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit a draft for review
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.SubmitFIRequestRequest false "Submit payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/submit [post]
func (h *FIRequestHandler) Submit(c *gin.Context) {
	// Body is optional on submit.
	var req dto.SubmitFIRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	request, err := h.requests.Submit(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// UpdateStatus godoc
// @Summary Transition a request status
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/status [put]
func (h *FIRequestHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	request, err := h.requests.UpdateStatus(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// AddNote godoc
// @Summary Append a note to a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.AddNoteRequest true "Note payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/notes [post]
func (h *FIRequestHandler) AddNote(c *gin.Context) {
	var req dto.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	request, err := h.requests.AddNote(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Assign godoc
// @Summary Assign a request to a reviewer
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.AssignRequest true "Assignee payload"
// @Success 204
// @Security BearerAuth
// @Router /fi/requests/{id}/assign [put]
func (h *FIRequestHandler) Assign(c *gin.Context) {
	var req dto.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	if err := h.requests.Assign(c.Request.Context(), claims.TenantID, c.Param("id"), req.Assignee); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// History godoc
// @Summary List the request audit trail
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/history [get]
func (h *FIRequestHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	history, err := h.requests.History(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// SetCosigner godoc
// @Summary Attach or replace the co-signer
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.SetCosignerRequest true "Co-signer payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/cosigner [put]
func (h *FIRequestHandler) SetCosigner(c *gin.Context) {
	var req dto.SetCosignerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	request, err := h.requests.SetCosigner(c.Request.Context(), claims.TenantID, c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// RemoveCosigner godoc
// @Summary Detach the co-signer
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/cosigner [delete]
func (h *FIRequestHandler) RemoveCosigner(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.RemoveCosigner(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// CombineScore godoc
// @Summary Combine applicant and co-signer scores
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/combine-score [post]
func (h *FIRequestHandler) CombineScore(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.CombineScore(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Rescore godoc
// @Summary Recompute the approval score
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/rescore [post]
func (h *FIRequestHandler) Rescore(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.Rescore(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// CompareOptions godoc
// @Summary Rank financing options for a request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.CompareOptionsRequest true "Options payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/compare-options [post]
func (h *FIRequestHandler) CompareOptions(c *gin.Context) {
	var req dto.CompareOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	comparison, err := h.requests.CompareOptions(c.Request.Context(), claims.TenantID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comparison, nil)
}

// ExportQuote godoc
// @Summary Download the financing quote as PDF
// @Tags Requests
// @Produce application/pdf
// @Param id path string true "Request ID"
// @Success 200 {file} byte
// @Security BearerAuth
// @Router /fi/requests/{id}/quote [get]
func (h *FIRequestHandler) ExportQuote(c *gin.Context) {
	claims := claimsFromContext(c)
	request, err := h.requests.Get(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if request.FinancingCalculation == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "request has no financing calculation yet"))
		return
	}
	pdf, err := h.reporting.ExportQuotePDF(request.FinancingCalculation)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="financing_quote.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

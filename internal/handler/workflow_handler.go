package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/service"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/response"
)

// WorkflowHandler exposes workflow rule CRUD.
type WorkflowHandler struct {
	workflows *service.WorkflowService
}

// NewWorkflowHandler constructs handler.
func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

// Create godoc
// @Summary Create a workflow rule
// @Tags Workflows
// @Accept json
// @Produce json
// @Param payload body dto.CreateWorkflowRequest true "Rule payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/workflows [post]
func (h *WorkflowHandler) Create(c *gin.Context) {
	var req dto.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	workflow, err := h.workflows.Create(c.Request.Context(), claims.TenantID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, workflow)
}

// Get godoc
// @Summary Get a workflow rule
// @Tags Workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/workflows/{id} [get]
func (h *WorkflowHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	workflow, err := h.workflows.Get(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workflow, nil)
}

// List godoc
// @Summary List workflow rules
// @Tags Workflows
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/workflows [get]
func (h *WorkflowHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	workflows, err := h.workflows.List(c.Request.Context(), claims.TenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workflows, nil)
}

// Update godoc
// @Summary Update a workflow rule
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path string true "Workflow ID"
// @Param payload body dto.UpdateWorkflowRequest true "Rule payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/workflows/{id} [put]
func (h *WorkflowHandler) Update(c *gin.Context) {
	var req dto.UpdateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	workflow, err := h.workflows.Update(c.Request.Context(), claims.TenantID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workflow, nil)
}

// Delete godoc
// @Summary Delete a workflow rule
// @Tags Workflows
// @Param id path string true "Workflow ID"
// @Success 204
// @Security BearerAuth
// @Router /fi/workflows/{id} [delete]
func (h *WorkflowHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.workflows.Delete(c.Request.Context(), claims.TenantID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

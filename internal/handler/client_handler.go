package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/service"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/response"
)

// ClientHandler exposes client CRUD endpoints.
type ClientHandler struct {
	clients *service.ClientService
}

// NewClientHandler constructs handler.
func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Create godoc
// @Summary Register a financing client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body dto.CreateFIClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateFIClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	client, err := h.clients.Create(c.Request.Context(), claims.TenantID, claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Get godoc
// @Summary Get a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	client, err := h.clients.Get(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	page, pageSize := pageParams(c)
	filter := models.FIClientFilter{Search: c.Query("search"), Page: page, PageSize: pageSize}
	clients, total, err := h.clients.List(c.Request.Context(), claims.TenantID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, models.NewPagination(page, pageSize, total))
}

// Update godoc
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body dto.UpdateFIClientRequest true "Client payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req dto.UpdateFIClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	client, err := h.clients.Update(c.Request.Context(), claims.TenantID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/service"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/response"
)

// DocumentHandler exposes document collection endpoints. The token routes
// are public: the token itself is the credential.
type DocumentHandler struct {
	documents *service.DocumentRequestService
}

// NewDocumentHandler constructs handler.
func NewDocumentHandler(documents *service.DocumentRequestService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Create godoc
// @Summary Open a document collection request
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body dto.CreateDocumentRequestRequest true "Document request payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	claims := claimsFromContext(c)
	doc, err := h.documents.Create(c.Request.Context(), claims.TenantID, req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// ListByRequest godoc
// @Summary List document requests for a financing request
// @Tags Documents
// @Produce json
// @Param id path string true "Financing request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fi/requests/{id}/documents [get]
func (h *DocumentHandler) ListByRequest(c *gin.Context) {
	claims := claimsFromContext(c)
	docs, err := h.documents.ListByRequest(c.Request.Context(), claims.TenantID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// GetByToken godoc
// @Summary View a document request by its public token
// @Tags Documents
// @Produce json
// @Param token path string true "Collection token"
// @Success 200 {object} response.Envelope
// @Router /public/documents/{token} [get]
func (h *DocumentHandler) GetByToken(c *gin.Context) {
	doc, err := h.documents.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// SubmitByToken godoc
// @Summary Submit one document by public token
// @Tags Documents
// @Accept json
// @Produce json
// @Param token path string true "Collection token"
// @Param payload body dto.SubmitDocumentRequest true "Document payload"
// @Success 200 {object} response.Envelope
// @Router /public/documents/{token} [post]
func (h *DocumentHandler) SubmitByToken(c *gin.Context) {
	var req dto.SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	doc, err := h.documents.Submit(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

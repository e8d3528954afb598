package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/service"
	"github.com/drivelane/fi-decision-api/pkg/config"
)

type documentRepoMock struct {
	doc *models.DocumentRequest
}

func (m *documentRepoMock) Create(ctx context.Context, doc *models.DocumentRequest) error {
	return nil
}

func (m *documentRepoMock) GetByToken(ctx context.Context, token string) (*models.DocumentRequest, error) {
	if m.doc == nil || m.doc.Token != token {
		return nil, sql.ErrNoRows
	}
	copied := *m.doc
	return &copied, nil
}

func (m *documentRepoMock) ListByRequest(ctx context.Context, tenantID, requestID string) ([]models.DocumentRequest, error) {
	return nil, nil
}

func (m *documentRepoMock) Update(ctx context.Context, doc *models.DocumentRequest) error {
	return nil
}

func newDocumentTestHandler(repo *documentRepoMock) *DocumentHandler {
	svc := service.NewDocumentRequestService(repo, config.DocumentsConfig{DefaultExpiryDays: 7, TokenLength: 64}, nil, nil)
	return NewDocumentHandler(svc)
}

func TestDocumentHandlerGetByTokenNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentTestHandler(&documentRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/public/documents/unknown", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "unknown"}}

	handler.GetByToken(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentHandlerGetByToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &documentRepoMock{doc: &models.DocumentRequest{
		ID:        "doc-1",
		TenantID:  "t1",
		Token:     "tok-abc",
		Status:    models.DocumentPending,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}}
	handler := newDocumentTestHandler(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/public/documents/tok-abc", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "tok-abc"}}

	handler.GetByToken(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.DocumentRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "doc-1", envelope.Data.ID)
	assert.Equal(t, models.DocumentPending, envelope.Data.Status)
}

func TestDocumentHandlerSubmitInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newDocumentTestHandler(&documentRepoMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/public/documents/tok-abc", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "tok-abc"}}

	handler.SubmitByToken(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandlerSubmitMissingURL(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &documentRepoMock{doc: &models.DocumentRequest{
		ID:        "doc-1",
		Token:     "tok-abc",
		Status:    models.DocumentPending,
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}}
	handler := newDocumentTestHandler(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.SubmitDocumentRequest{Type: "proof_of_income"})
	req, _ := http.NewRequest(http.MethodPost, "/public/documents/tok-abc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "token", Value: "tok-abc"}}

	handler.SubmitByToken(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

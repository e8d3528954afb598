package dto

import "github.com/drivelane/fi-decision-api/internal/models"

// CreateDocumentRequestRequest opens a tokenized collection request.
type CreateDocumentRequestRequest struct {
	RequestID     string                     `json:"request_id" validate:"required"`
	ClientID      string                     `json:"client_id" validate:"required"`
	Documents     []models.RequestedDocument `json:"documents" validate:"required,min=1,dive"`
	ExpiresInDays int                        `json:"expires_in_days" validate:"gte=0"`
}

// SubmitDocumentRequest attaches one uploaded document by token.
type SubmitDocumentRequest struct {
	Type string `json:"type" validate:"required"`
	Name string `json:"name"`
	URL  string `json:"url" validate:"required,url"`
}

package models

import "time"

// DocumentRequestStatus is the lifecycle of a document-collection request.
type DocumentRequestStatus string

const (
	DocumentPending   DocumentRequestStatus = "pending"
	DocumentSubmitted DocumentRequestStatus = "submitted"
	// DocumentExpired is computed at read time from ExpiresAt; nothing
	// sweeps rows into this state in the background.
	DocumentExpired DocumentRequestStatus = "expired"
)

// RequestedDocument names one document the client must provide.
type RequestedDocument struct {
	Type     string `json:"type" validate:"required"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// SubmittedDocument is one upload attached to the request. Resubmissions
// of the same type append; nothing is ever removed.
type SubmittedDocument struct {
	Type        string    `json:"type"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DocumentRequest is an independent aggregate keyed by a single-use
// unguessable token.
type DocumentRequest struct {
	ID                 string                `json:"id"`
	TenantID           string                `json:"tenant_id"`
	RequestID          string                `json:"request_id"`
	ClientID           string                `json:"client_id"`
	Token              string                `json:"token"`
	RequestedDocuments []RequestedDocument   `json:"requested_documents"`
	SubmittedDocuments []SubmittedDocument   `json:"submitted_documents"`
	Status             DocumentRequestStatus `json:"status"`
	RequestedBy        string                `json:"requested_by"`
	ExpiresAt          time.Time             `json:"expires_at"`
	Version            int                   `json:"version"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// EffectiveStatus folds expiration into the stored status. An expired
// request that already collected everything stays submitted.
func (d *DocumentRequest) EffectiveStatus(now time.Time) DocumentRequestStatus {
	if d.Status == DocumentSubmitted {
		return DocumentSubmitted
	}
	if now.After(d.ExpiresAt) {
		return DocumentExpired
	}
	return d.Status
}

// AllRequiredPresent reports whether every required requested type has a
// matching submitted document.
func (d *DocumentRequest) AllRequiredPresent() bool {
	for _, req := range d.RequestedDocuments {
		if !req.Required {
			continue
		}
		found := false
		for _, sub := range d.SubmittedDocuments {
			if sub.Type == req.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

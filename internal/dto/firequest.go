package dto

import "github.com/drivelane/fi-decision-api/internal/models"

// CreateFIRequestRequest opens a draft financing request for a client.
type CreateFIRequestRequest struct {
	ClientID     string              `json:"client_id" validate:"required"`
	Employment   models.Employment   `json:"employment"`
	CreditInfo   models.CreditInfo   `json:"credit_info"`
	PersonalInfo models.PersonalInfo `json:"personal_info"`
}

// UpdateFIRequestRequest edits the financial triad; only legal while the
// request is in an editable status.
type UpdateFIRequestRequest struct {
	Employment   *models.Employment   `json:"employment,omitempty"`
	CreditInfo   *models.CreditInfo   `json:"credit_info,omitempty"`
	PersonalInfo *models.PersonalInfo `json:"personal_info,omitempty"`
}

// SubmitFIRequestRequest moves a draft into the review pipeline.
type SubmitFIRequestRequest struct {
	Notes string `json:"notes,omitempty"`
}

// UpdateStatusRequest drives a reviewer transition.
type UpdateStatusRequest struct {
	Status models.FIRequestStatus `json:"status" validate:"required"`
	Notes  string                 `json:"notes,omitempty"`
}

// AddNoteRequest appends a note without a status change.
type AddNoteRequest struct {
	Text       string `json:"text" validate:"required"`
	IsInternal bool   `json:"is_internal"`
}

// SetCosignerRequest attaches or replaces the co-signer, invalidating any
// previously combined score.
type SetCosignerRequest struct {
	FirstName    string              `json:"first_name" validate:"required"`
	LastName     string              `json:"last_name" validate:"required"`
	Employment   models.Employment   `json:"employment"`
	CreditInfo   models.CreditInfo   `json:"credit_info"`
	PersonalInfo models.PersonalInfo `json:"personal_info"`
}

// AssignRequest routes a request to a reviewer.
type AssignRequest struct {
	Assignee string `json:"assignee" validate:"required"`
}

// CompareOptionsRequest ranks candidate lender offers for a request.
type CompareOptionsRequest struct {
	VehiclePrice float64                  `json:"vehicle_price" validate:"required,gt=0"`
	DownPayment  float64                  `json:"down_payment" validate:"gte=0"`
	Options      []models.FinancingOption `json:"options" validate:"required,min=1,dive"`
}

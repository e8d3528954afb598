package models

import "time"

// IncomeType categorises how verifiable the applicant's income is.
type IncomeType string

const (
	IncomeTypeSalaried     IncomeType = "salaried"
	IncomeTypeSelfEmployed IncomeType = "self_employed"
	IncomeTypeBusiness     IncomeType = "business"
	IncomeTypeOther        IncomeType = "other"
)

// CreditRange is the manually supplied credit tier. A bureau pull, when a
// provider is configured, only refines this value.
type CreditRange string

const (
	CreditExcellent CreditRange = "excellent"
	CreditGood      CreditRange = "good"
	CreditFair      CreditRange = "fair"
	CreditPoor      CreditRange = "poor"
	CreditVeryPoor  CreditRange = "very_poor"
)

// ValidCreditRange reports whether the value is a known tier.
func ValidCreditRange(r CreditRange) bool {
	switch r {
	case CreditExcellent, CreditGood, CreditFair, CreditPoor, CreditVeryPoor:
		return true
	}
	return false
}

// Employment captures the applicant's income situation.
type Employment struct {
	Employer      string     `json:"employer"`
	MonthlyIncome float64    `json:"monthly_income"`
	MonthsAtJob   int        `json:"months_at_job"`
	IncomeType    IncomeType `json:"income_type"`
}

// CreditInfo is the manual credit intake.
type CreditInfo struct {
	Range CreditRange `json:"range"`
	Notes string      `json:"notes,omitempty"`
}

// PersonalInfo captures household obligations that weigh on the score.
type PersonalInfo struct {
	MaritalStatus  string  `json:"marital_status,omitempty"`
	Dependents     int     `json:"dependents"`
	HousingType    string  `json:"housing_type,omitempty"`
	HousingPayment float64 `json:"housing_payment"`
}

// FIRequestStatus is the state-machine value of a financing request.
type FIRequestStatus string

const (
	StatusDraft       FIRequestStatus = "draft"
	StatusSubmitted   FIRequestStatus = "submitted"
	StatusUnderReview FIRequestStatus = "under_review"
	StatusPreApproved FIRequestStatus = "pre_approved"
	StatusApproved    FIRequestStatus = "approved"
	StatusPendingInfo FIRequestStatus = "pending_info"
	StatusRejected    FIRequestStatus = "rejected"
)

// Terminal reports whether no further transitions leave the status.
func (s FIRequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Editable reports whether the financial fields may still change.
func (s FIRequestStatus) Editable() bool {
	return s == StatusDraft || s == StatusPendingInfo
}

// CosignerStatus is the co-signer's independent approval state.
type CosignerStatus string

const (
	CosignerPending  CosignerStatus = "pending"
	CosignerApproved CosignerStatus = "approved"
	CosignerRejected CosignerStatus = "rejected"
)

// Cosigner is scoped to exactly one FIRequest and carries its own
// employment/credit/personal triad.
type Cosigner struct {
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Employment   Employment     `json:"employment"`
	CreditInfo   CreditInfo     `json:"credit_info"`
	PersonalInfo PersonalInfo   `json:"personal_info"`
	Status       CosignerStatus `json:"status"`
	AddedAt      time.Time      `json:"added_at"`
}

// HistoryAction discriminates history entries.
type HistoryAction string

const (
	HistoryStatusChange HistoryAction = "status_change"
	HistoryNoteAdded    HistoryAction = "note_added"
)

// FIRequestHistory is one append-only audit entry on a request. Entries
// are never updated, truncated or reordered.
type FIRequestHistory struct {
	ID             string           `db:"id" json:"id"`
	RequestID      string           `db:"request_id" json:"request_id"`
	Action         HistoryAction    `db:"action" json:"action"`
	PreviousStatus *FIRequestStatus `db:"previous_status" json:"previous_status,omitempty"`
	NewStatus      *FIRequestStatus `db:"new_status" json:"new_status,omitempty"`
	Note           *string          `db:"note" json:"note,omitempty"`
	IsInternal     bool             `db:"is_internal" json:"is_internal"`
	Actor          string           `db:"actor" json:"actor"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
}

// FIRequest is the central aggregate of the decisioning subsystem.
// Version backs the single-writer-per-aggregate guarantee: updates carry
// the version they read and fail with CONFLICT when it moved.
type FIRequest struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	ClientID string `json:"client_id"`
	Version  int    `json:"version"`

	Employment   Employment   `json:"employment"`
	CreditInfo   CreditInfo   `json:"credit_info"`
	PersonalInfo PersonalInfo `json:"personal_info"`

	Status      FIRequestStatus `json:"status"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	SubmittedBy *string         `json:"submitted_by,omitempty"`
	AssignedTo  *string         `json:"assigned_to,omitempty"`

	// ApprovalScore and FinancingCalculation are overwritten together on
	// every scoring run and are never patched individually.
	ApprovalScore        *ApprovalScore              `json:"approval_score,omitempty"`
	FinancingCalculation *FinancingCalculationResult `json:"financing_calculation,omitempty"`

	Cosigner      *Cosigner `json:"cosigner,omitempty"`
	CombinedScore *int      `json:"combined_score,omitempty"`

	FinancingOptions []RankedOption     `json:"financing_options,omitempty"`
	History          []FIRequestHistory `json:"history,omitempty"`

	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FIRequestFilter constrains request listing.
type FIRequestFilter struct {
	ClientID   string
	Status     []FIRequestStatus
	AssignedTo string
	From       *time.Time
	To         *time.Time
	Page       int
	PageSize   int
}

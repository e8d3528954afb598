package models

import "time"

// WorkflowTrigger selects which events a workflow listens to.
type WorkflowTrigger string

const (
	TriggerScoreThreshold   WorkflowTrigger = "score_threshold"
	TriggerDTIRatio         WorkflowTrigger = "dti_ratio"
	TriggerCreditRange      WorkflowTrigger = "credit_range"
	TriggerStatusChange     WorkflowTrigger = "status_change"
	TriggerDocumentReceived WorkflowTrigger = "document_received"
)

// ValidWorkflowTrigger reports whether the trigger is known.
func ValidWorkflowTrigger(t WorkflowTrigger) bool {
	switch t {
	case TriggerScoreThreshold, TriggerDTIRatio, TriggerCreditRange, TriggerStatusChange, TriggerDocumentReceived:
		return true
	}
	return false
}

// ConditionOperator compares a resolved field against a value.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpContains    ConditionOperator = "contains"
	OpIn          ConditionOperator = "in"
)

// WorkflowCondition is one conjunct; Field uses dotted-path resolution
// against the request snapshot, e.g. "approval_score.score".
type WorkflowCondition struct {
	Field    string            `json:"field" validate:"required"`
	Operator ConditionOperator `json:"operator" validate:"required"`
	Value    interface{}       `json:"value"`
}

// WorkflowActionType enumerates the closed set of action kinds.
type WorkflowActionType string

const (
	ActionRequestDocuments WorkflowActionType = "request_documents"
	ActionChangeStatus     WorkflowActionType = "change_status"
	ActionNotify           WorkflowActionType = "notify"
	ActionPreApprove       WorkflowActionType = "pre_approve"
	ActionAssignTo         WorkflowActionType = "assign_to"
)

// WorkflowAction is a tagged variant; exactly the fields matching Type
// are meaningful.
type WorkflowAction struct {
	Type WorkflowActionType `json:"type" validate:"required"`

	// request_documents
	Documents  []RequestedDocument `json:"documents,omitempty"`
	ExpiryDays int                 `json:"expiry_days,omitempty"`

	// change_status
	Status FIRequestStatus `json:"status,omitempty"`

	// notify
	Template  string `json:"template,omitempty"`
	Recipient string `json:"recipient,omitempty"`

	// assign_to
	Assignee string `json:"assignee,omitempty"`
}

// FIWorkflow is a tenant-scoped declarative rule. Workflows are evaluated
// in definition order against whichever request triggers them.
type FIWorkflow struct {
	ID         string              `json:"id"`
	TenantID   string              `json:"tenant_id"`
	Name       string              `json:"name"`
	Trigger    WorkflowTrigger     `json:"trigger"`
	Conditions []WorkflowCondition `json:"conditions"`
	Actions    []WorkflowAction    `json:"actions"`
	Enabled    bool                `json:"enabled"`
	RunCount   int64               `json:"run_count"`
	LastRunAt  *time.Time          `json:"last_run_at,omitempty"`
	CreatedBy  string              `json:"created_by"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// WorkflowEvent is what the state machine hands the engine after a
// committed transition (or document submission).
type WorkflowEvent struct {
	TenantID       string           `json:"tenant_id"`
	RequestID      string           `json:"request_id"`
	Trigger        WorkflowTrigger  `json:"trigger"`
	PreviousStatus *FIRequestStatus `json:"previous_status,omitempty"`
	NewStatus      *FIRequestStatus `json:"new_status,omitempty"`
	Score          *int             `json:"score,omitempty"`
	DTIRatio       *float64         `json:"dti_ratio,omitempty"`
	CreditRange    CreditRange      `json:"credit_range,omitempty"`
	DocumentType   string           `json:"document_type,omitempty"`
	Actor          string           `json:"actor"`
	OccurredAt     time.Time        `json:"occurred_at"`
}

package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionRequestCreate   = "FI_REQUEST_CREATE"
	AuditActionRequestSubmit   = "FI_REQUEST_SUBMIT"
	AuditActionStatusChange    = "FI_REQUEST_STATUS_CHANGE"
	AuditActionNoteAdd         = "FI_REQUEST_NOTE_ADD"
	AuditActionCosignerChange  = "FI_REQUEST_COSIGNER_CHANGE"
	AuditActionDocumentRequest = "FI_DOCUMENT_REQUEST"
	AuditActionDocumentSubmit  = "FI_DOCUMENT_SUBMIT"
	AuditActionWorkflowChange  = "FI_WORKFLOW_CHANGE"
	AuditActionClientChange    = "FI_CLIENT_CHANGE"
)

// AuditLog represents an audit trail record, kept separate from the
// per-request history so infrastructure concerns never touch the
// aggregate.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

package dto

import "github.com/drivelane/fi-decision-api/internal/models"

// CreateWorkflowRequest defines a new rule.
type CreateWorkflowRequest struct {
	Name       string                     `json:"name" validate:"required"`
	Trigger    models.WorkflowTrigger     `json:"trigger" validate:"required"`
	Conditions []models.WorkflowCondition `json:"conditions" validate:"dive"`
	Actions    []models.WorkflowAction    `json:"actions" validate:"required,min=1,dive"`
	Enabled    *bool                      `json:"enabled,omitempty"`
}

// UpdateWorkflowRequest edits a rule in place.
type UpdateWorkflowRequest struct {
	Name       *string                    `json:"name,omitempty"`
	Trigger    *models.WorkflowTrigger    `json:"trigger,omitempty"`
	Conditions []models.WorkflowCondition `json:"conditions,omitempty" validate:"omitempty,dive"`
	Actions    []models.WorkflowAction    `json:"actions,omitempty" validate:"omitempty,dive"`
	Enabled    *bool                      `json:"enabled,omitempty"`
}

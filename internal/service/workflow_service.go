package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type workflowRepository interface {
	Create(ctx context.Context, wf *models.FIWorkflow) error
	GetByID(ctx context.Context, tenantID, id string) (*models.FIWorkflow, error)
	List(ctx context.Context, tenantID string) ([]models.FIWorkflow, error)
	Update(ctx context.Context, wf *models.FIWorkflow) error
	Delete(ctx context.Context, tenantID, id string) error
}

// WorkflowService manages rule definitions. Evaluation lives in the
// engine; this service only guards that stored rules are well formed.
type WorkflowService struct {
	repo      workflowRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(repo workflowRepository, validate *validator.Validate, logger *zap.Logger) *WorkflowService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{repo: repo, validator: validate, logger: logger}
}

// Create stores a new rule, enabled by default.
func (s *WorkflowService) Create(ctx context.Context, tenantID, actor string, req dto.CreateWorkflowRequest) (*models.FIWorkflow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workflow payload")
	}
	if err := validateRule(req.Trigger, req.Conditions, req.Actions); err != nil {
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	wf := &models.FIWorkflow{
		TenantID:   tenantID,
		Name:       req.Name,
		Trigger:    req.Trigger,
		Conditions: req.Conditions,
		Actions:    req.Actions,
		Enabled:    enabled,
		CreatedBy:  actor,
	}
	if err := s.repo.Create(ctx, wf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create workflow")
	}
	return wf, nil
}

// Get loads one rule.
func (s *WorkflowService) Get(ctx context.Context, tenantID, id string) (*models.FIWorkflow, error) {
	wf, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "workflow not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workflow")
	}
	return wf, nil
}

// List returns all rules for the tenant in definition order.
func (s *WorkflowService) List(ctx context.Context, tenantID string) ([]models.FIWorkflow, error) {
	workflows, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list workflows")
	}
	return workflows, nil
}

// Update edits a rule in place. Run bookkeeping is untouched.
func (s *WorkflowService) Update(ctx context.Context, tenantID, id string, req dto.UpdateWorkflowRequest) (*models.FIWorkflow, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid workflow payload")
	}
	wf, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		wf.Name = *req.Name
	}
	if req.Trigger != nil {
		wf.Trigger = *req.Trigger
	}
	if req.Conditions != nil {
		wf.Conditions = req.Conditions
	}
	if req.Actions != nil {
		wf.Actions = req.Actions
	}
	if req.Enabled != nil {
		wf.Enabled = *req.Enabled
	}
	if err := validateRule(wf.Trigger, wf.Conditions, wf.Actions); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, wf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update workflow")
	}
	return wf, nil
}

// Delete removes a rule.
func (s *WorkflowService) Delete(ctx context.Context, tenantID, id string) error {
	if _, err := s.Get(ctx, tenantID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete workflow")
	}
	return nil
}

func validateRule(trigger models.WorkflowTrigger, conditions []models.WorkflowCondition, actions []models.WorkflowAction) error {
	if !models.ValidWorkflowTrigger(trigger) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown trigger %s", trigger))
	}
	for _, cond := range conditions {
		switch cond.Operator {
		case models.OpEquals, models.OpGreaterThan, models.OpLessThan, models.OpContains, models.OpIn:
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown operator %s", cond.Operator))
		}
	}
	if len(actions) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one action is required")
	}
	for _, action := range actions {
		switch action.Type {
		case models.ActionRequestDocuments:
			if len(action.Documents) == 0 {
				return appErrors.Clone(appErrors.ErrValidation, "request_documents action needs at least one document")
			}
		case models.ActionChangeStatus:
			if action.Status == "" {
				return appErrors.Clone(appErrors.ErrValidation, "change_status action needs a target status")
			}
		case models.ActionNotify:
			if action.Template == "" {
				return appErrors.Clone(appErrors.ErrValidation, "notify action needs a template")
			}
		case models.ActionAssignTo:
			if action.Assignee == "" {
				return appErrors.Clone(appErrors.ErrValidation, "assign_to action needs an assignee")
			}
		case models.ActionPreApprove:
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown action type %s", action.Type))
		}
	}
	return nil
}

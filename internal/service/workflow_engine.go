package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

// WorkflowActor marks mutations performed by the rule engine. Events
// raised by those mutations are not re-evaluated, so rules cannot cascade
// off their own transitions.
const WorkflowActor = "workflow"

type workflowRuleSource interface {
	ListEnabledByTrigger(ctx context.Context, tenantID string, trigger models.WorkflowTrigger) ([]models.FIWorkflow, error)
	RecordRun(ctx context.Context, tenantID, id string, ranAt time.Time) error
}

type workflowRequestReader interface {
	GetByID(ctx context.Context, tenantID, id string) (*models.FIRequest, error)
}

type workflowStatusChanger interface {
	UpdateStatus(ctx context.Context, tenantID, id, actor string, req dto.UpdateStatusRequest) (*models.FIRequest, error)
	Assign(ctx context.Context, tenantID, id, assignee string) error
}

type workflowDocumentCreator interface {
	Create(ctx context.Context, tenantID string, req dto.CreateDocumentRequestRequest, requestedBy string) (*models.DocumentRequest, error)
}

type workflowNotifier interface {
	Notify(ctx context.Context, template, recipient string, event models.WorkflowEvent) error
}

type workflowRunCounter interface {
	RecordWorkflowRun()
}

// WorkflowEngine evaluates declarative condition/action rules against
// committed domain events. Action failures are isolated per action and
// never surface to the caller that produced the event.
type WorkflowEngine struct {
	rules     workflowRuleSource
	requests  workflowRequestReader
	statuses  workflowStatusChanger
	documents workflowDocumentCreator
	notifier  workflowNotifier
	metrics   workflowRunCounter
	logger    *zap.Logger
	now       func() time.Time
}

// NewWorkflowEngine constructs the engine.
func NewWorkflowEngine(rules workflowRuleSource, requests workflowRequestReader, statuses workflowStatusChanger, documents workflowDocumentCreator, notifier workflowNotifier, logger *zap.Logger) *WorkflowEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowEngine{
		rules:     rules,
		requests:  requests,
		statuses:  statuses,
		documents: documents,
		notifier:  notifier,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetMetrics wires the optional run counter.
func (e *WorkflowEngine) SetMetrics(m workflowRunCounter) {
	e.metrics = m
}

// WithClock overrides the timestamp source.
func (e *WorkflowEngine) WithClock(now func() time.Time) *WorkflowEngine {
	e.now = now
	return e
}

// Dispatch evaluates every enabled rule matching the event's trigger, in
// definition order. A rule whose conditions all hold runs its actions in
// list order and has its run counter bumped once.
func (e *WorkflowEngine) Dispatch(ctx context.Context, event models.WorkflowEvent) {
	if event.Actor == WorkflowActor {
		return
	}

	workflows, err := e.rules.ListEnabledByTrigger(ctx, event.TenantID, event.Trigger)
	if err != nil {
		e.logger.Error("workflow rule lookup failed", zap.String("trigger", string(event.Trigger)), zap.Error(err))
		return
	}
	if len(workflows) == 0 {
		return
	}

	request, err := e.requests.GetByID(ctx, event.TenantID, event.RequestID)
	if err != nil {
		e.logger.Error("workflow snapshot load failed", zap.String("request_id", event.RequestID), zap.Error(err))
		return
	}
	snapshot := buildSnapshot(request)

	for i := range workflows {
		wf := &workflows[i]
		if !e.matches(wf, snapshot) {
			continue
		}
		for idx, action := range wf.Actions {
			if err := e.execute(ctx, wf, action, event, request); err != nil {
				e.logger.Warn("workflow action failed",
					zap.String("workflow", wf.Name),
					zap.Int("action", idx),
					zap.String("type", string(action.Type)),
					zap.Error(err))
			}
		}
		if err := e.rules.RecordRun(ctx, wf.TenantID, wf.ID, e.now()); err != nil {
			e.logger.Error("workflow run bookkeeping failed", zap.String("workflow", wf.Name), zap.Error(err))
		}
		if e.metrics != nil {
			e.metrics.RecordWorkflowRun()
		}
	}
}

func (e *WorkflowEngine) matches(wf *models.FIWorkflow, snapshot map[string]interface{}) bool {
	for _, cond := range wf.Conditions {
		value, ok := resolvePath(snapshot, cond.Field)
		if !ok {
			return false
		}
		if !evaluateCondition(value, cond.Operator, cond.Value) {
			return false
		}
	}
	return true
}

func (e *WorkflowEngine) execute(ctx context.Context, wf *models.FIWorkflow, action models.WorkflowAction, event models.WorkflowEvent, request *models.FIRequest) error {
	switch action.Type {
	case models.ActionRequestDocuments:
		if e.documents == nil {
			return fmt.Errorf("document requests are not enabled")
		}
		_, err := e.documents.Create(ctx, event.TenantID, dto.CreateDocumentRequestRequest{
			RequestID:     event.RequestID,
			ClientID:      request.ClientID,
			Documents:     action.Documents,
			ExpiresInDays: action.ExpiryDays,
		}, WorkflowActor)
		return err

	case models.ActionChangeStatus:
		return e.changeStatus(ctx, wf, event, action.Status)

	case models.ActionPreApprove:
		return e.changeStatus(ctx, wf, event, models.StatusPreApproved)

	case models.ActionNotify:
		if e.notifier == nil {
			return fmt.Errorf("notification boundary not configured")
		}
		return e.notifier.Notify(ctx, action.Template, action.Recipient, event)

	case models.ActionAssignTo:
		return e.statuses.Assign(ctx, event.TenantID, event.RequestID, action.Assignee)

	default:
		return fmt.Errorf("unknown action type %s", action.Type)
	}
}

// changeStatus delegates to the state machine, which re-validates the
// edge. An invalid transition is logged and swallowed; a rule cannot
// force an edge the table forbids.
func (e *WorkflowEngine) changeStatus(ctx context.Context, wf *models.FIWorkflow, event models.WorkflowEvent, target models.FIRequestStatus) error {
	_, err := e.statuses.UpdateStatus(ctx, event.TenantID, event.RequestID, WorkflowActor, dto.UpdateStatusRequest{
		Status: target,
		Notes:  fmt.Sprintf("workflow %s", wf.Name),
	})
	if appErrors.Is(err, appErrors.ErrInvalidTransition) {
		e.logger.Info("workflow skipped invalid transition",
			zap.String("workflow", wf.Name),
			zap.String("target", string(target)))
		return nil
	}
	return err
}

// buildSnapshot flattens the request into its JSON shape so condition
// fields resolve against the same names the API exposes.
func buildSnapshot(request *models.FIRequest) map[string]interface{} {
	raw, err := json.Marshal(request)
	if err != nil {
		return map[string]interface{}{}
	}
	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return map[string]interface{}{}
	}
	return snapshot
}

// resolvePath walks a dotted path through nested objects. CamelCase
// segments fall back to their snake_case spelling, so both
// approvalScore.score and approval_score.score address the same field.
func resolvePath(snapshot map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = snapshot
	for _, segment := range segments {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok := node[segment]
		if !ok {
			value, ok = node[toSnakeCase(segment)]
			if !ok {
				return nil, false
			}
		}
		current = value
	}
	return current, true
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func evaluateCondition(field interface{}, op models.ConditionOperator, expected interface{}) bool {
	switch op {
	case models.OpEquals:
		if fv, fok := toFloat(field); fok {
			if ev, eok := toFloat(expected); eok {
				return fv == ev
			}
		}
		return fmt.Sprintf("%v", field) == fmt.Sprintf("%v", expected)

	case models.OpGreaterThan:
		fv, fok := toFloat(field)
		ev, eok := toFloat(expected)
		return fok && eok && fv > ev

	case models.OpLessThan:
		fv, fok := toFloat(field)
		ev, eok := toFloat(expected)
		return fok && eok && fv < ev

	case models.OpContains:
		switch v := field.(type) {
		case string:
			return strings.Contains(v, fmt.Sprintf("%v", expected))
		case []interface{}:
			for _, item := range v {
				if fmt.Sprintf("%v", item) == fmt.Sprintf("%v", expected) {
					return true
				}
			}
		}
		return false

	case models.OpIn:
		list, ok := expected.([]interface{})
		if !ok {
			return false
		}
		for _, item := range list {
			if evaluateCondition(field, models.OpEquals, item) {
				return true
			}
		}
		return false
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type ruleSourceStub struct {
	workflows []models.FIWorkflow
	runs      map[string]int
}

func (s *ruleSourceStub) ListEnabledByTrigger(_ context.Context, tenantID string, trigger models.WorkflowTrigger) ([]models.FIWorkflow, error) {
	var out []models.FIWorkflow
	for _, wf := range s.workflows {
		if wf.TenantID == tenantID && wf.Trigger == trigger && wf.Enabled {
			out = append(out, wf)
		}
	}
	return out, nil
}

func (s *ruleSourceStub) RecordRun(_ context.Context, _, id string, _ time.Time) error {
	if s.runs == nil {
		s.runs = map[string]int{}
	}
	s.runs[id]++
	return nil
}

type requestReaderStub struct {
	request *models.FIRequest
}

func (s *requestReaderStub) GetByID(_ context.Context, _, _ string) (*models.FIRequest, error) {
	if s.request == nil {
		return nil, errors.New("not found")
	}
	return s.request, nil
}

type statusChangerStub struct {
	statusCalls []models.FIRequestStatus
	assignCalls []string
	statusErr   error
}

func (s *statusChangerStub) UpdateStatus(_ context.Context, _, _, _ string, req dto.UpdateStatusRequest) (*models.FIRequest, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	s.statusCalls = append(s.statusCalls, req.Status)
	return &models.FIRequest{Status: req.Status}, nil
}

func (s *statusChangerStub) Assign(_ context.Context, _, _, assignee string) error {
	s.assignCalls = append(s.assignCalls, assignee)
	return nil
}

type documentCreatorStub struct {
	created []dto.CreateDocumentRequestRequest
	err     error
}

func (s *documentCreatorStub) Create(_ context.Context, _ string, req dto.CreateDocumentRequestRequest, _ string) (*models.DocumentRequest, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, req)
	return &models.DocumentRequest{RequestID: req.RequestID}, nil
}

type notifierStub struct {
	sent []string
	err  error
}

func (s *notifierStub) Notify(_ context.Context, template, _ string, _ models.WorkflowEvent) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, template)
	return nil
}

func lowScoreRequest() *models.FIRequest {
	return &models.FIRequest{
		ID:       "req-1",
		TenantID: "t1",
		ClientID: "client-1",
		Status:   models.StatusSubmitted,
		CreditInfo: models.CreditInfo{
			Range: models.CreditPoor,
		},
		ApprovalScore: &models.ApprovalScore{Score: 410, Probability: 0.33},
	}
}

func lowScoreEvent() models.WorkflowEvent {
	score := 410
	prev := models.StatusDraft
	next := models.StatusSubmitted
	return models.WorkflowEvent{
		TenantID:       "t1",
		RequestID:      "req-1",
		Trigger:        models.TriggerScoreThreshold,
		PreviousStatus: &prev,
		NewStatus:      &next,
		Score:          &score,
		Actor:          "seller-1",
		OccurredAt:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func documentRule(name string) models.FIWorkflow {
	return models.FIWorkflow{
		ID:       name,
		TenantID: "t1",
		Name:     name,
		Trigger:  models.TriggerScoreThreshold,
		Enabled:  true,
		Conditions: []models.WorkflowCondition{
			{Field: "approval_score.score", Operator: models.OpLessThan, Value: 450},
		},
		Actions: []models.WorkflowAction{
			{Type: models.ActionRequestDocuments, Documents: []models.RequestedDocument{{Type: "pay_stub", Required: true}}, ExpiryDays: 5},
		},
	}
}

func TestWorkflowEngineLowScoreRequestsDocumentsOnce(t *testing.T) {
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{documentRule("low-score-docs")}}
	documents := &documentCreatorStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, &statusChangerStub{}, documents, &notifierStub{}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())

	require.Len(t, documents.created, 1)
	assert.Equal(t, "req-1", documents.created[0].RequestID)
	assert.Equal(t, "client-1", documents.created[0].ClientID)
	assert.Equal(t, 1, rules.runs["low-score-docs"])
}

func TestWorkflowEngineConditionBlocksRun(t *testing.T) {
	rule := documentRule("high-bar")
	rule.Conditions = []models.WorkflowCondition{
		{Field: "approval_score.score", Operator: models.OpLessThan, Value: 300},
	}
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{rule}}
	documents := &documentCreatorStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, &statusChangerStub{}, documents, &notifierStub{}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())

	assert.Empty(t, documents.created)
	assert.Zero(t, rules.runs["high-bar"])
}

func TestWorkflowEngineConditionsAreConjunctive(t *testing.T) {
	rule := documentRule("two-conditions")
	rule.Conditions = []models.WorkflowCondition{
		{Field: "approval_score.score", Operator: models.OpLessThan, Value: 450},
		{Field: "credit_info.range", Operator: models.OpEquals, Value: "excellent"},
	}
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{rule}}
	documents := &documentCreatorStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, &statusChangerStub{}, documents, &notifierStub{}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())
	assert.Empty(t, documents.created, "a single failing conjunct must block the rule")
}

func TestWorkflowEngineResolvesCamelCasePaths(t *testing.T) {
	rule := documentRule("camel-path")
	rule.Conditions = []models.WorkflowCondition{
		{Field: "approvalScore.score", Operator: models.OpLessThan, Value: 450},
	}
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{rule}}
	documents := &documentCreatorStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, &statusChangerStub{}, documents, &notifierStub{}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())
	assert.Len(t, documents.created, 1)
}

func TestWorkflowEngineSwallowsInvalidTransition(t *testing.T) {
	rule := documentRule("force-approve")
	rule.Actions = []models.WorkflowAction{
		{Type: models.ActionChangeStatus, Status: models.StatusApproved},
	}
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{rule}}
	statuses := &statusChangerStub{statusErr: appErrors.Clone(appErrors.ErrInvalidTransition, "transition not permitted")}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, statuses, &documentCreatorStub{}, &notifierStub{}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())

	assert.Equal(t, 1, rules.runs["force-approve"], "an invalid transition does not fail the rule")
}

func TestWorkflowEngineIsolatesActionFailures(t *testing.T) {
	rule := documentRule("notify-then-assign")
	rule.Actions = []models.WorkflowAction{
		{Type: models.ActionNotify, Template: "score_alert", Recipient: "fm@example.com"},
		{Type: models.ActionAssignTo, Assignee: "fm-1"},
	}
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{rule}}
	statuses := &statusChangerStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, statuses, &documentCreatorStub{}, &notifierStub{err: errors.New("smtp down")}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())

	assert.Equal(t, []string{"fm-1"}, statuses.assignCalls, "a failing notify must not block later actions")
	assert.Equal(t, 1, rules.runs["notify-then-assign"])
}

func TestWorkflowEngineRunsRulesInDefinitionOrder(t *testing.T) {
	first := documentRule("first")
	second := documentRule("second")
	second.Actions = []models.WorkflowAction{{Type: models.ActionAssignTo, Assignee: "fm-2"}}
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{first, second}}
	documents := &documentCreatorStub{}
	statuses := &statusChangerStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, statuses, documents, &notifierStub{}, nil)

	engine.Dispatch(context.Background(), lowScoreEvent())

	assert.Len(t, documents.created, 1)
	assert.Equal(t, []string{"fm-2"}, statuses.assignCalls)
	assert.Equal(t, 1, rules.runs["first"])
	assert.Equal(t, 1, rules.runs["second"])
}

func TestWorkflowEngineIgnoresItsOwnEvents(t *testing.T) {
	rules := &ruleSourceStub{workflows: []models.FIWorkflow{documentRule("loop-guard")}}
	documents := &documentCreatorStub{}
	engine := NewWorkflowEngine(rules, &requestReaderStub{request: lowScoreRequest()}, &statusChangerStub{}, documents, &notifierStub{}, nil)

	event := lowScoreEvent()
	event.Actor = WorkflowActor
	engine.Dispatch(context.Background(), event)

	assert.Empty(t, documents.created)
	assert.Zero(t, rules.runs["loop-guard"])
}

func TestWorkflowConditionOperators(t *testing.T) {
	assert.True(t, evaluateCondition(410.0, models.OpLessThan, 450))
	assert.False(t, evaluateCondition(470.0, models.OpLessThan, 450))
	assert.True(t, evaluateCondition(470.0, models.OpGreaterThan, 450))
	assert.True(t, evaluateCondition("poor", models.OpEquals, "poor"))
	assert.True(t, evaluateCondition(450.0, models.OpEquals, 450))
	assert.True(t, evaluateCondition("self_employed", models.OpContains, "employed"))
	assert.True(t, evaluateCondition("poor", models.OpIn, []interface{}{"poor", "very_poor"}))
	assert.False(t, evaluateCondition("good", models.OpIn, []interface{}{"poor", "very_poor"}))
}

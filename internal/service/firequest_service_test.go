package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/repository"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type fiRequestRepoStub struct {
	requests  map[string]*models.FIRequest
	history   map[string][]models.FIRequestHistory
	updateErr error
}

func newFIRequestRepoStub() *fiRequestRepoStub {
	return &fiRequestRepoStub{
		requests: map[string]*models.FIRequest{},
		history:  map[string][]models.FIRequestHistory{},
	}
}

func (s *fiRequestRepoStub) Create(_ context.Context, req *models.FIRequest) error {
	if req.ID == "" {
		req.ID = "req-1"
	}
	req.Version = 1
	copied := *req
	s.requests[req.ID] = &copied
	return nil
}

func (s *fiRequestRepoStub) GetByID(_ context.Context, tenantID, id string) (*models.FIRequest, error) {
	req, ok := s.requests[id]
	if !ok || req.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	copied := *req
	copied.History = append([]models.FIRequestHistory(nil), s.history[id]...)
	return &copied, nil
}

func (s *fiRequestRepoStub) Update(_ context.Context, req *models.FIRequest, history ...models.FIRequestHistory) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	req.Version++
	copied := *req
	s.requests[req.ID] = &copied
	for _, entry := range history {
		entry.RequestID = req.ID
		s.history[req.ID] = append(s.history[req.ID], entry)
	}
	return nil
}

func (s *fiRequestRepoStub) ListHistory(_ context.Context, requestID string) ([]models.FIRequestHistory, error) {
	return append([]models.FIRequestHistory(nil), s.history[requestID]...), nil
}

func (s *fiRequestRepoStub) List(_ context.Context, tenantID string, _ models.FIRequestFilter) ([]models.FIRequest, int, error) {
	var out []models.FIRequest
	for _, req := range s.requests {
		if req.TenantID == tenantID {
			out = append(out, *req)
		}
	}
	return out, len(out), nil
}

type clientReaderStub struct {
	clients map[string]*models.FIClient
}

func (s *clientReaderStub) FindByID(_ context.Context, tenantID, id string) (*models.FIClient, error) {
	client, ok := s.clients[id]
	if !ok || client.TenantID != tenantID {
		return nil, sql.ErrNoRows
	}
	return client, nil
}

func newTestFIRequestService(repo fiRequestRepository, clients fiClientReader) *FIRequestService {
	calculator := NewFinancingCalculator(nil, nil)
	scoring := newTestScoringEngine()
	comparator := NewFinancingOptionsComparator(calculator, scoring, nil)
	svc := NewFIRequestService(repo, clients, calculator, scoring, comparator, nil, nil)
	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return svc.WithClock(func() time.Time { return fixed })
}

func dealClients() *clientReaderStub {
	return &clientReaderStub{clients: map[string]*models.FIClient{
		"client-1": {
			ID:           "client-1",
			TenantID:     "t1",
			FirstName:    "Dana",
			LastName:     "Reyes",
			Email:        "dana@example.com",
			VehiclePrice: floatPtr(30000),
			DownPayment:  floatPtr(5000),
		},
	}}
}

func draftRequest() dto.CreateFIRequestRequest {
	return dto.CreateFIRequestRequest{
		ClientID: "client-1",
		Employment: models.Employment{
			Employer:      "Acme Motors",
			MonthlyIncome: 5200,
			MonthsAtJob:   30,
			IncomeType:    models.IncomeTypeSalaried,
		},
		CreditInfo:   models.CreditInfo{Range: models.CreditGood},
		PersonalInfo: models.PersonalInfo{Dependents: 1, HousingPayment: 1100},
	}
}

func TestFIRequestServiceSubmitBackfillsCreditRange(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	svc.SetCreditProvider(&StaticCreditReportProvider{Range: models.CreditExcellent})

	req := draftRequest()
	req.CreditInfo = models.CreditInfo{}
	created, err := svc.Create(context.Background(), "t1", "seller-1", req)
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.CreditExcellent, submitted.CreditInfo.Range)
}

func TestFIRequestServiceSubmitKeepsManualCreditRange(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	svc.SetCreditProvider(&StaticCreditReportProvider{Range: models.CreditExcellent})

	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.CreditGood, submitted.CreditInfo.Range, "a bureau pull never overrides manual intake")
}

func TestFIRequestServiceSubmitBlockedByProviderOutage(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	svc.SetCreditProvider(NewTimeoutCreditReportProvider(&failingCreditProvider{}, time.Second, nil))

	req := draftRequest()
	req.CreditInfo = models.CreditInfo{}
	created, err := svc.Create(context.Background(), "t1", "seller-1", req)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProviderUnavailable.Code, appErrors.FromError(err).Code)

	stored, err := svc.Get(context.Background(), "t1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, stored.Status, "provider outage blocks the submit, it is not a negative signal")
}

func TestFIRequestServiceCreateRequiresIncome(t *testing.T) {
	svc := newTestFIRequestService(newFIRequestRepoStub(), dealClients())
	req := draftRequest()
	req.Employment.MonthlyIncome = 0
	_, err := svc.Create(context.Background(), "t1", "seller-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFIRequestServiceCreateStartsAsDraft(t *testing.T) {
	svc := newTestFIRequestService(newFIRequestRepoStub(), dealClients())
	request, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, request.Status)
	assert.Nil(t, request.ApprovalScore)
	assert.Empty(t, request.History)
}

func TestFIRequestServiceSubmitRunsScoringPipeline(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	require.NotNil(t, submitted.SubmittedBy)
	assert.Equal(t, "seller-1", *submitted.SubmittedBy)
	require.NotNil(t, submitted.FinancingCalculation)
	require.NotNil(t, submitted.ApprovalScore)
	assert.Equal(t, float64(defaultAnnualRate), submitted.FinancingCalculation.AnnualRate)
	assert.Equal(t, defaultTermMonths, submitted.FinancingCalculation.TermMonths)
	assert.InDelta(t, 483.32, submitted.FinancingCalculation.MonthlyPayment, 0.01)

	history, err := repo.ListHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryStatusChange, history[0].Action)
	assert.Equal(t, models.StatusDraft, *history[0].PreviousStatus)
	assert.Equal(t, models.StatusSubmitted, *history[0].NewStatus)
}

func TestFIRequestServiceDirectApproveRejected(t *testing.T) {
	svc := newTestFIRequestService(newFIRequestRepoStub(), dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestFIRequestServiceFullApprovalPathProducesThreeHistoryEntries(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusUnderReview})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusApproved})
	require.NoError(t, err)

	history, err := repo.ListHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, models.StatusSubmitted, *history[0].NewStatus)
	assert.Equal(t, models.StatusUnderReview, *history[1].NewStatus)
	assert.Equal(t, models.StatusApproved, *history[2].NewStatus)
}

func TestFIRequestServiceTerminalStateBlocksTransitions(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusUnderReview})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusRejected})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusUnderReview})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestFIRequestServicePendingInfoRoundTrip(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusUnderReview})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusPendingInfo})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(context.Background(), "t1", created.ID, "fm-1", dto.UpdateStatusRequest{Status: models.StatusUnderReview})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, updated.Status)
}

func TestFIRequestServiceAddNoteKeepsStatus(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	updated, err := svc.AddNote(context.Background(), "t1", created.ID, "fm-1", dto.AddNoteRequest{Text: "called the client", IsInternal: true})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, updated.Status)

	history, err := repo.ListHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.HistoryNoteAdded, history[0].Action)
	assert.True(t, history[0].IsInternal)
	assert.Nil(t, history[0].PreviousStatus)
}

func TestFIRequestServiceConflictSurfacesAsConflict(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)

	repo.updateErr = repository.ErrVersionConflict
	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestFIRequestServiceSetCosignerInvalidatesCombinedScore(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)

	_, err = svc.SetCosigner(context.Background(), "t1", created.ID, "seller-1", dto.SetCosignerRequest{
		FirstName:  "Jordan",
		LastName:   "Lee",
		CreditInfo: models.CreditInfo{Range: models.CreditExcellent},
	})
	require.NoError(t, err)

	combined, err := svc.CombineScore(context.Background(), "t1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, combined.CombinedScore)
	assert.GreaterOrEqual(t, *combined.CombinedScore, combined.ApprovalScore.Score)

	// Replacing the co-signer drops the stale combined value.
	replaced, err := svc.SetCosigner(context.Background(), "t1", created.ID, "seller-1", dto.SetCosignerRequest{
		FirstName:  "Sam",
		LastName:   "Cole",
		CreditInfo: models.CreditInfo{Range: models.CreditFair},
	})
	require.NoError(t, err)
	assert.Nil(t, replaced.CombinedScore)
}

func TestFIRequestServiceRemoveCosignerClearsCombinedScore(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)

	_, err = svc.SetCosigner(context.Background(), "t1", created.ID, "seller-1", dto.SetCosignerRequest{
		FirstName:  "Jordan",
		LastName:   "Lee",
		CreditInfo: models.CreditInfo{Range: models.CreditExcellent},
	})
	require.NoError(t, err)
	_, err = svc.CombineScore(context.Background(), "t1", created.ID)
	require.NoError(t, err)

	removed, err := svc.RemoveCosigner(context.Background(), "t1", created.ID)
	require.NoError(t, err)
	assert.Nil(t, removed.Cosigner)
	assert.Nil(t, removed.CombinedScore)

	_, err = svc.RemoveCosigner(context.Background(), "t1", created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFIRequestServiceDispatchesTransitionEvents(t *testing.T) {
	repo := newFIRequestRepoStub()
	svc := newTestFIRequestService(repo, dealClients())
	dispatcher := &dispatcherStub{}
	svc.SetDispatcher(dispatcher)

	created, err := svc.Create(context.Background(), "t1", "seller-1", draftRequest())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), "t1", created.ID, "seller-1", dto.SubmitFIRequestRequest{})
	require.NoError(t, err)

	triggers := map[models.WorkflowTrigger]bool{}
	for _, event := range dispatcher.events {
		triggers[event.Trigger] = true
		assert.Equal(t, created.ID, event.RequestID)
	}
	assert.True(t, triggers[models.TriggerStatusChange])
	assert.True(t, triggers[models.TriggerScoreThreshold], "score trigger expected once the request is scored")
}

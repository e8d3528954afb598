package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/repository"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
)

type fiRequestRepository interface {
	Create(ctx context.Context, req *models.FIRequest) error
	GetByID(ctx context.Context, tenantID, id string) (*models.FIRequest, error)
	Update(ctx context.Context, req *models.FIRequest, history ...models.FIRequestHistory) error
	ListHistory(ctx context.Context, requestID string) ([]models.FIRequestHistory, error)
	List(ctx context.Context, tenantID string, filter models.FIRequestFilter) ([]models.FIRequest, int, error)
}

type fiClientReader interface {
	FindByID(ctx context.Context, tenantID, id string) (*models.FIClient, error)
}

// decisionMetrics counts committed transitions and computed scores.
type decisionMetrics interface {
	RecordScore(recommendation models.Recommendation)
	RecordTransition(from, to models.FIRequestStatus)
}

// allowedTransitions is the full state-machine edge set. Approved and
// rejected are terminal.
var allowedTransitions = map[models.FIRequestStatus][]models.FIRequestStatus{
	models.StatusDraft:       {models.StatusSubmitted},
	models.StatusSubmitted:   {models.StatusUnderReview},
	models.StatusUnderReview: {models.StatusPreApproved, models.StatusApproved, models.StatusPendingInfo, models.StatusRejected},
	models.StatusPendingInfo: {models.StatusUnderReview},
	models.StatusPreApproved: {models.StatusApproved},
}

func canTransition(from, to models.FIRequestStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FIRequestService owns the financing-request lifecycle. Every status
// change appends exactly one history entry and, once committed, is handed
// to the workflow dispatcher.
type FIRequestService struct {
	repo       fiRequestRepository
	clients    fiClientReader
	calculator *FinancingCalculator
	scoring    *ApprovalScoringEngine
	comparator *FinancingOptionsComparator
	dispatcher workflowDispatcher
	credit     CreditReportProvider
	metrics    decisionMetrics
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewFIRequestService constructs the service.
func NewFIRequestService(repo fiRequestRepository, clients fiClientReader, calculator *FinancingCalculator, scoring *ApprovalScoringEngine, comparator *FinancingOptionsComparator, validate *validator.Validate, logger *zap.Logger) *FIRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FIRequestService{
		repo:       repo,
		clients:    clients,
		calculator: calculator,
		scoring:    scoring,
		comparator: comparator,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetDispatcher wires the workflow engine in after construction.
func (s *FIRequestService) SetDispatcher(d workflowDispatcher) {
	s.dispatcher = d
}

// SetMetrics wires the optional Prometheus counters.
func (s *FIRequestService) SetMetrics(m decisionMetrics) {
	s.metrics = m
}

// SetCreditProvider wires an optional bureau integration. When present it
// backfills the credit range of submits that arrive without one.
func (s *FIRequestService) SetCreditProvider(p CreditReportProvider) {
	s.credit = p
}

// WithClock overrides the timestamp source.
func (s *FIRequestService) WithClock(now func() time.Time) *FIRequestService {
	s.now = now
	return s
}

// Create opens a draft request. Monthly income is required up front so
// the scoring pipeline has something to work with at submit time.
func (s *FIRequestService) Create(ctx context.Context, tenantID, actor string, req dto.CreateFIRequestRequest) (*models.FIRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid financing request payload")
	}
	if req.Employment.MonthlyIncome <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "monthly income is required")
	}
	if req.CreditInfo.Range != "" && !models.ValidCreditRange(req.CreditInfo.Range) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown credit range %s", req.CreditInfo.Range))
	}

	if _, err := s.clients.FindByID(ctx, tenantID, req.ClientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}

	request := &models.FIRequest{
		TenantID:     tenantID,
		ClientID:     req.ClientID,
		Employment:   req.Employment,
		CreditInfo:   req.CreditInfo,
		PersonalInfo: req.PersonalInfo,
		Status:       models.StatusDraft,
		CreatedBy:    actor,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create financing request")
	}
	return request, nil
}

// Get loads one request with its history.
func (s *FIRequestService) Get(ctx context.Context, tenantID, id string) (*models.FIRequest, error) {
	return s.load(ctx, tenantID, id)
}

// List returns requests matching the filter plus the total count.
func (s *FIRequestService) List(ctx context.Context, tenantID string, filter models.FIRequestFilter) ([]models.FIRequest, int, error) {
	requests, total, err := s.repo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list financing requests")
	}
	return requests, total, nil
}

// History returns the append-only audit trail of one request.
func (s *FIRequestService) History(ctx context.Context, tenantID, id string) ([]models.FIRequestHistory, error) {
	if _, err := s.load(ctx, tenantID, id); err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request history")
	}
	return history, nil
}

// Update edits the financial triad. Only draft and pending_info requests
// are editable; all other statuses freeze the financial fields.
func (s *FIRequestService) Update(ctx context.Context, tenantID, id, actor string, req dto.UpdateFIRequestRequest) (*models.FIRequest, error) {
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !request.Status.Editable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("request in status %s cannot be edited", request.Status))
	}
	if req.Employment != nil {
		if req.Employment.MonthlyIncome <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "monthly income is required")
		}
		request.Employment = *req.Employment
	}
	if req.CreditInfo != nil {
		if req.CreditInfo.Range != "" && !models.ValidCreditRange(req.CreditInfo.Range) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown credit range %s", req.CreditInfo.Range))
		}
		request.CreditInfo = *req.CreditInfo
	}
	if req.PersonalInfo != nil {
		request.PersonalInfo = *req.PersonalInfo
	}
	if err := s.persist(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Submit moves a draft into review intake. When the linked client carries
// vehicle pricing, the calculator and scoring engine run before the
// transition commits; a failed calculation blocks the submit entirely so
// the request never stores a partial score.
func (s *FIRequestService) Submit(ctx context.Context, tenantID, id, actor string, req dto.SubmitFIRequestRequest) (*models.FIRequest, error) {
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if request.Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot submit request in status %s", request.Status))
	}

	client, err := s.clients.FindByID(ctx, tenantID, request.ClientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	// A bureau pull only fills a missing credit range; it never overrides
	// the manual intake. Provider failure blocks the submit rather than
	// being read as a negative signal.
	if s.credit != nil && request.CreditInfo.Range == "" {
		report, err := s.credit.PullReport(ctx, ClientPII{
			FirstName: client.FirstName,
			LastName:  client.LastName,
			Email:     client.Email,
		})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrProviderUnavailable.Code, appErrors.ErrProviderUnavailable.Status, "credit report pull failed")
		}
		request.CreditInfo.Range = report.Range
	}

	if err := s.runScoringPipeline(request, client); err != nil {
		return nil, err
	}

	now := s.now()
	previous := request.Status
	request.Status = models.StatusSubmitted
	request.SubmittedAt = &now
	request.SubmittedBy = &actor

	entry := s.transitionEntry(previous, request.Status, actor, req.Notes)
	if err := s.persist(ctx, request, entry); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(previous, request.Status)
		if request.ApprovalScore != nil {
			s.metrics.RecordScore(request.ApprovalScore.Recommendation)
		}
	}
	s.dispatchTransition(ctx, request, previous, actor)
	return request, nil
}

// UpdateStatus applies a reviewer transition validated against the edge
// table. Each successful call appends exactly one history entry.
func (s *FIRequestService) UpdateStatus(ctx context.Context, tenantID, id, actor string, req dto.UpdateStatusRequest) (*models.FIRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !canTransition(request.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("transition %s -> %s not permitted", request.Status, req.Status))
	}

	previous := request.Status
	request.Status = req.Status

	entry := s.transitionEntry(previous, request.Status, actor, req.Notes)
	if err := s.persist(ctx, request, entry); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordTransition(previous, request.Status)
	}
	s.dispatchTransition(ctx, request, previous, actor)
	return request, nil
}

// AddNote appends a note entry without touching the status. Internal
// notes keep their flag so client-facing views can filter them out.
func (s *FIRequestService) AddNote(ctx context.Context, tenantID, id, actor string, req dto.AddNoteRequest) (*models.FIRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid note payload")
	}
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	note := req.Text
	entry := models.FIRequestHistory{
		Action:     models.HistoryNoteAdded,
		Note:       &note,
		IsInternal: req.IsInternal,
		Actor:      actor,
		CreatedAt:  s.now(),
	}
	if err := s.persist(ctx, request, entry); err != nil {
		return nil, err
	}
	request.History = append(request.History, entry)
	return request, nil
}

// Assign sets the owner field. No history entry and no workflow event.
func (s *FIRequestService) Assign(ctx context.Context, tenantID, id, assignee string) error {
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return err
	}
	request.AssignedTo = &assignee
	return s.persist(ctx, request)
}

// SetCosigner attaches or replaces the co-signer. Any previously combined
// score is invalidated until recomputed.
func (s *FIRequestService) SetCosigner(ctx context.Context, tenantID, id, actor string, req dto.SetCosignerRequest) (*models.FIRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cosigner payload")
	}
	if !models.ValidCreditRange(req.CreditInfo.Range) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown credit range %s", req.CreditInfo.Range))
	}
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("request in status %s cannot take a cosigner", request.Status))
	}
	request.Cosigner = &models.Cosigner{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Employment:   req.Employment,
		CreditInfo:   req.CreditInfo,
		PersonalInfo: req.PersonalInfo,
		Status:       models.CosignerPending,
		AddedAt:      s.now(),
	}
	request.CombinedScore = nil
	if err := s.persist(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// RemoveCosigner detaches the co-signer and invalidates the combined
// score.
func (s *FIRequestService) RemoveCosigner(ctx context.Context, tenantID, id string) (*models.FIRequest, error) {
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if request.Status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("request in status %s cannot be modified", request.Status))
	}
	if request.Cosigner == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request has no cosigner")
	}
	request.Cosigner = nil
	request.CombinedScore = nil
	if err := s.persist(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// CombineScore blends the client's approval score with the co-signer's
// credit tier and stores the combined value.
func (s *FIRequestService) CombineScore(ctx context.Context, tenantID, id string) (*models.FIRequest, error) {
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if request.ApprovalScore == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request has not been scored yet")
	}
	if request.Cosigner == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request has no cosigner")
	}
	combined := s.scoring.CombineWithCosigner(request.ApprovalScore.Score, request.Cosigner.CreditInfo.Range)
	request.CombinedScore = &combined
	if err := s.persist(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

// Rescore reruns the calculator and scoring engine against the current
// snapshot, overwriting both derived values together.
func (s *FIRequestService) Rescore(ctx context.Context, tenantID, id string) (*models.FIRequest, error) {
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.FindByID(ctx, tenantID, request.ClientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if client.VehiclePrice == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "client has no vehicle price to score against")
	}
	if err := s.runScoringPipeline(request, client); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, request); err != nil {
		return nil, err
	}
	if s.metrics != nil && request.ApprovalScore != nil {
		s.metrics.RecordScore(request.ApprovalScore.Recommendation)
	}
	return request, nil
}

// CompareOptions ranks candidate lender offers and stores the ranking on
// the request.
func (s *FIRequestService) CompareOptions(ctx context.Context, tenantID, id string, req dto.CompareOptionsRequest) (*models.OptionsComparison, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid options payload")
	}
	request, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	comparison, err := s.comparator.Compare(request, req.VehiclePrice, req.DownPayment, req.Options)
	if err != nil {
		return nil, err
	}
	request.FinancingOptions = comparison.Options
	if err := s.persist(ctx, request); err != nil {
		return nil, err
	}
	return comparison, nil
}

func (s *FIRequestService) load(ctx context.Context, tenantID, id string) (*models.FIRequest, error) {
	request, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "financing request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load financing request")
	}
	return request, nil
}

func (s *FIRequestService) persist(ctx context.Context, request *models.FIRequest, history ...models.FIRequestHistory) error {
	if err := s.repo.Update(ctx, request, history...); err != nil {
		if err == repository.ErrVersionConflict {
			return appErrors.Clone(appErrors.ErrConflict, "financing request was modified concurrently")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update financing request")
	}
	return nil
}

// runScoringPipeline recomputes the calculation and score in lockstep.
// Skipped entirely when the client has no vehicle price yet.
func (s *FIRequestService) runScoringPipeline(request *models.FIRequest, client *models.FIClient) error {
	if client.VehiclePrice == nil {
		return nil
	}
	terms := models.FinancingTerms{
		VehiclePrice: *client.VehiclePrice,
		TermMonths:   defaultTermMonths,
		AnnualRate:   defaultAnnualRate,
	}
	if client.DownPayment != nil {
		terms.DownPayment = *client.DownPayment
	}
	if client.TradeInValue != nil {
		terms.TradeInValue = *client.TradeInValue
	}
	if request.Employment.MonthlyIncome > 0 {
		income := request.Employment.MonthlyIncome
		terms.MonthlyIncome = &income
	}
	calc, err := s.calculator.Calculate(terms)
	if err != nil {
		return err
	}
	score := s.scoring.Score(ScoringInput{
		Employment:   request.Employment,
		CreditInfo:   request.CreditInfo,
		PersonalInfo: request.PersonalInfo,
		VehiclePrice: terms.VehiclePrice,
		DownPayment:  terms.DownPayment,
		Calculation:  calc,
	})
	request.FinancingCalculation = calc
	request.ApprovalScore = score
	return nil
}

// Default terms used when a request is scored from client deal context
// alone, before any lender offer is on the table.
const (
	defaultTermMonths = 60
	defaultAnnualRate = 6.0
)

func (s *FIRequestService) transitionEntry(previous, next models.FIRequestStatus, actor, notes string) models.FIRequestHistory {
	entry := models.FIRequestHistory{
		Action:         models.HistoryStatusChange,
		PreviousStatus: &previous,
		NewStatus:      &next,
		Actor:          actor,
		CreatedAt:      s.now(),
	}
	if notes != "" {
		note := notes
		entry.Note = &note
	}
	return entry
}

// dispatchTransition hands the committed transition to the workflow
// engine. One event per matching trigger type; score-derived triggers are
// only raised when the request has been scored.
func (s *FIRequestService) dispatchTransition(ctx context.Context, request *models.FIRequest, previous models.FIRequestStatus, actor string) {
	if s.dispatcher == nil {
		return
	}
	newStatus := request.Status
	base := models.WorkflowEvent{
		TenantID:       request.TenantID,
		RequestID:      request.ID,
		PreviousStatus: &previous,
		NewStatus:      &newStatus,
		CreditRange:    request.CreditInfo.Range,
		Actor:          actor,
		OccurredAt:     s.now(),
	}
	if request.ApprovalScore != nil {
		score := request.ApprovalScore.Score
		base.Score = &score
	}
	if request.FinancingCalculation != nil {
		base.DTIRatio = request.FinancingCalculation.DTIRatio
	}

	triggers := []models.WorkflowTrigger{models.TriggerStatusChange}
	if base.Score != nil {
		triggers = append(triggers, models.TriggerScoreThreshold)
	}
	if base.DTIRatio != nil {
		triggers = append(triggers, models.TriggerDTIRatio)
	}
	if base.CreditRange != "" {
		triggers = append(triggers, models.TriggerCreditRange)
	}
	for _, trigger := range triggers {
		event := base
		event.Trigger = trigger
		s.dispatcher.Dispatch(ctx, event)
	}
}

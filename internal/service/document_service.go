package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/drivelane/fi-decision-api/internal/dto"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/repository"
	"github.com/drivelane/fi-decision-api/pkg/config"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/token"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.DocumentRequest) error
	GetByToken(ctx context.Context, token string) (*models.DocumentRequest, error)
	ListByRequest(ctx context.Context, tenantID, requestID string) ([]models.DocumentRequest, error)
	Update(ctx context.Context, doc *models.DocumentRequest) error
}

// workflowDispatcher receives committed domain events. Dispatch failures
// never propagate to the caller that produced the event.
type workflowDispatcher interface {
	Dispatch(ctx context.Context, event models.WorkflowEvent)
}

type submissionCounter interface {
	RecordDocumentSubmission()
}

// DocumentRequestService issues and resolves tokenized document-collection
// requests. Expiration is enforced when a request is read or submitted to,
// never by a background sweep.
type DocumentRequestService struct {
	repo        documentRepository
	dispatcher  workflowDispatcher
	docValidate DocumentValidator
	metrics     submissionCounter
	expiryDays  int
	tokenLength int
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewDocumentRequestService constructs the service.
func NewDocumentRequestService(repo documentRepository, cfg config.DocumentsConfig, validate *validator.Validate, logger *zap.Logger) *DocumentRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	expiryDays := cfg.DefaultExpiryDays
	if expiryDays <= 0 {
		expiryDays = 7
	}
	tokenLength := cfg.TokenLength
	if tokenLength < token.MinLength {
		tokenLength = 64
	}
	return &DocumentRequestService{
		repo:        repo,
		expiryDays:  expiryDays,
		tokenLength: tokenLength,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetDispatcher wires the workflow engine in after construction; the
// engine itself delegates document creation back to this service.
func (s *DocumentRequestService) SetDispatcher(d workflowDispatcher) {
	s.dispatcher = d
}

// SetValidator wires an optional upload validator. Submissions the
// validator rejects are never recorded.
func (s *DocumentRequestService) SetValidator(v DocumentValidator) {
	s.docValidate = v
}

// SetMetrics wires the optional submission counter.
func (s *DocumentRequestService) SetMetrics(m submissionCounter) {
	s.metrics = m
}

// WithClock overrides the timestamp source.
func (s *DocumentRequestService) WithClock(now func() time.Time) *DocumentRequestService {
	s.now = now
	return s
}

// Create issues a new pending request keyed by a fresh random token. The
// caller embeds the token in an outbound link.
func (s *DocumentRequestService) Create(ctx context.Context, tenantID string, req dto.CreateDocumentRequestRequest, requestedBy string) (*models.DocumentRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document request payload")
	}

	tok, err := token.Generate(s.tokenLength)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate document token")
	}

	days := req.ExpiresInDays
	if days <= 0 {
		days = s.expiryDays
	}

	doc := &models.DocumentRequest{
		TenantID:           tenantID,
		RequestID:          req.RequestID,
		ClientID:           req.ClientID,
		Token:              tok,
		RequestedDocuments: req.Documents,
		Status:             models.DocumentPending,
		RequestedBy:        requestedBy,
		ExpiresAt:          s.now().AddDate(0, 0, days),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document request")
	}
	return doc, nil
}

// GetByToken resolves a request by its token. Expiration shows up as the
// expired status on the returned record, not as an error; an expired but
// existing request is a displayable state.
func (s *DocumentRequestService) GetByToken(ctx context.Context, tok string) (*models.DocumentRequest, error) {
	doc, err := s.repo.GetByToken(ctx, tok)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document request")
	}
	doc.Status = doc.EffectiveStatus(s.now())
	return doc, nil
}

// ListByRequest returns the collection requests opened for one financing
// request, newest first.
func (s *DocumentRequestService) ListByRequest(ctx context.Context, tenantID, requestID string) ([]models.DocumentRequest, error) {
	docs, err := s.repo.ListByRequest(ctx, tenantID, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list document requests")
	}
	now := s.now()
	for i := range docs {
		docs[i].Status = docs[i].EffectiveStatus(now)
	}
	return docs, nil
}

// Submit appends one uploaded document. Same-type resubmissions append
// rather than replace. The request becomes submitted only once every
// required type has at least one upload.
func (s *DocumentRequestService) Submit(ctx context.Context, tok string, req dto.SubmitDocumentRequest) (*models.DocumentRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document submission")
	}

	doc, err := s.repo.GetByToken(ctx, tok)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document request")
	}

	now := s.now()
	if doc.EffectiveStatus(now) == models.DocumentExpired {
		return nil, appErrors.Clone(appErrors.ErrExpired, "document request has expired")
	}

	if s.docValidate != nil {
		verdict, err := s.docValidate.Validate(ctx, req.URL, req.Type)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrProviderUnavailable.Code, appErrors.ErrProviderUnavailable.Status, "document validation unavailable")
		}
		if !verdict.Valid {
			reason := verdict.Reason
			if reason == "" {
				reason = "document rejected by validator"
			}
			return nil, appErrors.Clone(appErrors.ErrValidation, reason)
		}
	}

	doc.SubmittedDocuments = append(doc.SubmittedDocuments, models.SubmittedDocument{
		Type:        req.Type,
		Name:        req.Name,
		URL:         req.URL,
		SubmittedAt: now,
	})
	if doc.AllRequiredPresent() {
		doc.Status = models.DocumentSubmitted
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		if err == repository.ErrVersionConflict {
			return nil, appErrors.Clone(appErrors.ErrConflict, "document request was modified concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record document submission")
	}

	if s.metrics != nil {
		s.metrics.RecordDocumentSubmission()
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(ctx, models.WorkflowEvent{
			TenantID:     doc.TenantID,
			RequestID:    doc.RequestID,
			Trigger:      models.TriggerDocumentReceived,
			DocumentType: req.Type,
			Actor:        doc.ClientID,
			OccurredAt:   now,
		})
	}

	return doc, nil
}

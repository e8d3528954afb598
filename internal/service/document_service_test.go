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
	"github.com/drivelane/fi-decision-api/pkg/config"
	appErrors "github.com/drivelane/fi-decision-api/pkg/errors"
	"github.com/drivelane/fi-decision-api/pkg/token"
)

type documentRepoStub struct {
	docs    map[string]*models.DocumentRequest
	updates int
}

func newDocumentRepoStub() *documentRepoStub {
	return &documentRepoStub{docs: map[string]*models.DocumentRequest{}}
}

func (s *documentRepoStub) Create(_ context.Context, doc *models.DocumentRequest) error {
	doc.ID = "doc-1"
	doc.Version = 1
	copied := *doc
	s.docs[doc.Token] = &copied
	return nil
}

func (s *documentRepoStub) GetByToken(_ context.Context, tok string) (*models.DocumentRequest, error) {
	doc, ok := s.docs[tok]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *doc
	copied.SubmittedDocuments = append([]models.SubmittedDocument(nil), doc.SubmittedDocuments...)
	return &copied, nil
}

func (s *documentRepoStub) ListByRequest(_ context.Context, tenantID, requestID string) ([]models.DocumentRequest, error) {
	var docs []models.DocumentRequest
	for _, doc := range s.docs {
		if doc.TenantID == tenantID && doc.RequestID == requestID {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (s *documentRepoStub) Update(_ context.Context, doc *models.DocumentRequest) error {
	s.updates++
	doc.Version++
	copied := *doc
	s.docs[doc.Token] = &copied
	return nil
}

type dispatcherStub struct {
	events []models.WorkflowEvent
}

func (d *dispatcherStub) Dispatch(_ context.Context, event models.WorkflowEvent) {
	d.events = append(d.events, event)
}

func newTestDocumentService(repo documentRepository, now time.Time) *DocumentRequestService {
	svc := NewDocumentRequestService(repo, config.DocumentsConfig{DefaultExpiryDays: 7, TokenLength: 64}, nil, nil)
	return svc.WithClock(func() time.Time { return now })
}

func twoRequiredDocs() []models.RequestedDocument {
	return []models.RequestedDocument{
		{Type: "pay_stub", Name: "Recent pay stub", Required: true},
		{Type: "drivers_license", Name: "Driver's license", Required: true},
	}
}

func TestDocumentServiceCreateGeneratesToken(t *testing.T) {
	repo := newDocumentRepoStub()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, now)

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1",
		ClientID:  "client-1",
		Documents: twoRequiredDocs(),
	}, "user-1")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(doc.Token), token.MinLength)
	assert.Equal(t, models.DocumentPending, doc.Status)
	assert.Equal(t, now.AddDate(0, 0, 7), doc.ExpiresAt)
}

func TestDocumentServiceGetByTokenUnknown(t *testing.T) {
	svc := newTestDocumentService(newDocumentRepoStub(), time.Now().UTC())
	_, err := svc.GetByToken(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDocumentServiceGetByTokenReportsExpiredState(t *testing.T) {
	repo := newDocumentRepoStub()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, created)

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1", ClientID: "client-1", Documents: twoRequiredDocs(), ExpiresInDays: 2,
	}, "user-1")
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return created.AddDate(0, 0, 3) })
	loaded, err := svc.GetByToken(context.Background(), doc.Token)
	require.NoError(t, err, "an expired request is a displayable state, not an error")
	assert.Equal(t, models.DocumentExpired, loaded.Status)
}

func TestDocumentServiceSubmitExpiredFailsWithoutMutation(t *testing.T) {
	repo := newDocumentRepoStub()
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, created)

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1", ClientID: "client-1", Documents: twoRequiredDocs(), ExpiresInDays: 1,
	}, "user-1")
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return created.AddDate(0, 0, 2) })
	_, err = svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "pay_stub", URL: "https://uploads.example.com/stub.pdf",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExpired.Code, appErrors.FromError(err).Code)

	stored := repo.docs[doc.Token]
	assert.Empty(t, stored.SubmittedDocuments)
	assert.Zero(t, repo.updates)
}

func TestDocumentServicePartialSubmissionStaysPending(t *testing.T) {
	repo := newDocumentRepoStub()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, now)

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1", ClientID: "client-1", Documents: twoRequiredDocs(),
	}, "user-1")
	require.NoError(t, err)

	updated, err := svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "pay_stub", URL: "https://uploads.example.com/stub.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentPending, updated.Status)
	assert.Len(t, updated.SubmittedDocuments, 1)

	updated, err = svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "drivers_license", URL: "https://uploads.example.com/license.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, models.DocumentSubmitted, updated.Status)
	assert.Len(t, updated.SubmittedDocuments, 2)
}

func TestDocumentServiceResubmissionAppends(t *testing.T) {
	repo := newDocumentRepoStub()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, now)

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1", ClientID: "client-1",
		Documents: []models.RequestedDocument{{Type: "pay_stub", Required: true}},
	}, "user-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "pay_stub", URL: "https://uploads.example.com/v1.pdf",
	})
	require.NoError(t, err)

	updated, err := svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "pay_stub", URL: "https://uploads.example.com/v2.pdf",
	})
	require.NoError(t, err)
	assert.Len(t, updated.SubmittedDocuments, 2, "resubmissions append, never replace")
	assert.Equal(t, models.DocumentSubmitted, updated.Status)
}

type rejectingValidator struct {
	reason string
}

func (v *rejectingValidator) Validate(context.Context, string, string) (*DocumentValidation, error) {
	return &DocumentValidation{Valid: false, Reason: v.reason}, nil
}

func TestDocumentServiceSubmitRejectedByValidator(t *testing.T) {
	repo := newDocumentRepoStub()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, now)
	svc.SetValidator(&rejectingValidator{reason: "file is unreadable"})

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1", ClientID: "client-1",
		Documents: []models.RequestedDocument{{Type: "pay_stub", Required: true}},
	}, "user-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "pay_stub", URL: "https://uploads.example.com/stub.pdf",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "file is unreadable", appErrors.FromError(err).Message)
	assert.Zero(t, repo.updates, "rejected submissions are never recorded")
}

func TestDocumentServiceSubmitDispatchesDocumentReceived(t *testing.T) {
	repo := newDocumentRepoStub()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestDocumentService(repo, now)
	dispatcher := &dispatcherStub{}
	svc.SetDispatcher(dispatcher)

	doc, err := svc.Create(context.Background(), "t1", dto.CreateDocumentRequestRequest{
		RequestID: "req-1", ClientID: "client-1",
		Documents: []models.RequestedDocument{{Type: "pay_stub", Required: true}},
	}, "user-1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), doc.Token, dto.SubmitDocumentRequest{
		Type: "pay_stub", URL: "https://uploads.example.com/stub.pdf",
	})
	require.NoError(t, err)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, models.TriggerDocumentReceived, dispatcher.events[0].Trigger)
	assert.Equal(t, "pay_stub", dispatcher.events[0].DocumentType)
	assert.Equal(t, "req-1", dispatcher.events[0].RequestID)
}

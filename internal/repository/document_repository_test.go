package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/models"
)

func newDocumentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDocumentRepositoryGetByToken(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "request_id", "client_id", "token", "requested_documents", "submitted_documents", "status", "requested_by", "expires_at", "version", "created_at", "updated_at"}).
		AddRow("doc-1", "t1", "req-1", "client-1", "tok-abc",
			[]byte(`[{"type":"pay_stub","name":"Pay stub","required":true}]`),
			[]byte(`[]`), "pending", "user-1", now.AddDate(0, 0, 7), 1, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM document_requests WHERE token = $1")).
		WithArgs("tok-abc").
		WillReturnRows(rows)

	doc, err := repo.GetByToken(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "doc-1", doc.ID)
	require.Len(t, doc.RequestedDocuments, 1)
	require.Equal(t, "pay_stub", doc.RequestedDocuments[0].Type)
	require.Empty(t, doc.SubmittedDocuments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryGetByTokenUnknown(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM document_requests WHERE token = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByToken(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryUpdateGuardsVersion(t *testing.T) {
	db, mock, cleanup := newDocumentRepoMock(t)
	defer cleanup()

	repo := NewDocumentRepository(db)
	doc := &models.DocumentRequest{
		ID:       "doc-1",
		TenantID: "t1",
		Token:    "tok-abc",
		Status:   models.DocumentPending,
		Version:  2,
		RequestedDocuments: []models.RequestedDocument{
			{Type: "pay_stub", Required: true},
		},
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE document_requests SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), doc)
	require.ErrorIs(t, err, ErrVersionConflict)
	require.Equal(t, 2, doc.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

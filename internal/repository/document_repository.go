package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/drivelane/fi-decision-api/internal/models"
)

// DocumentRepository persists tokenized document-collection requests.
// Submissions are version-guarded so two racing uploads cannot both read
// pending and skip the submitted transition.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

type documentRow struct {
	ID                 string                       `db:"id"`
	TenantID           string                       `db:"tenant_id"`
	RequestID          string                       `db:"request_id"`
	ClientID           string                       `db:"client_id"`
	Token              string                       `db:"token"`
	RequestedDocuments []byte                       `db:"requested_documents"`
	SubmittedDocuments []byte                       `db:"submitted_documents"`
	Status             models.DocumentRequestStatus `db:"status"`
	RequestedBy        string                       `db:"requested_by"`
	ExpiresAt          time.Time                    `db:"expires_at"`
	Version            int                          `db:"version"`
	CreatedAt          time.Time                    `db:"created_at"`
	UpdatedAt          time.Time                    `db:"updated_at"`
}

const documentColumns = `id, tenant_id, request_id, client_id, token, requested_documents, submitted_documents,
        status, requested_by, expires_at, version, created_at, updated_at`

func toDocumentRow(doc *models.DocumentRequest) (*documentRow, error) {
	row := &documentRow{
		ID:          doc.ID,
		TenantID:    doc.TenantID,
		RequestID:   doc.RequestID,
		ClientID:    doc.ClientID,
		Token:       doc.Token,
		Status:      doc.Status,
		RequestedBy: doc.RequestedBy,
		ExpiresAt:   doc.ExpiresAt,
		Version:     doc.Version,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	var err error
	if row.RequestedDocuments, err = json.Marshal(doc.RequestedDocuments); err != nil {
		return nil, fmt.Errorf("marshal requested documents: %w", err)
	}
	if doc.SubmittedDocuments == nil {
		row.SubmittedDocuments = []byte("[]")
	} else if row.SubmittedDocuments, err = json.Marshal(doc.SubmittedDocuments); err != nil {
		return nil, fmt.Errorf("marshal submitted documents: %w", err)
	}
	return row, nil
}

func fromDocumentRow(row *documentRow) (*models.DocumentRequest, error) {
	doc := &models.DocumentRequest{
		ID:          row.ID,
		TenantID:    row.TenantID,
		RequestID:   row.RequestID,
		ClientID:    row.ClientID,
		Token:       row.Token,
		Status:      row.Status,
		RequestedBy: row.RequestedBy,
		ExpiresAt:   row.ExpiresAt,
		Version:     row.Version,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if err := json.Unmarshal(row.RequestedDocuments, &doc.RequestedDocuments); err != nil {
		return nil, fmt.Errorf("unmarshal requested documents: %w", err)
	}
	if len(row.SubmittedDocuments) > 0 {
		if err := json.Unmarshal(row.SubmittedDocuments, &doc.SubmittedDocuments); err != nil {
			return nil, fmt.Errorf("unmarshal submitted documents: %w", err)
		}
	}
	return doc, nil
}

// Create inserts a document request at version 1.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.DocumentRequest) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Version = 1

	row, err := toDocumentRow(doc)
	if err != nil {
		return err
	}
	const query = `INSERT INTO document_requests (` + documentColumns + `)
        VALUES (:id, :tenant_id, :request_id, :client_id, :token, :requested_documents, :submitted_documents,
        :status, :requested_by, :expires_at, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert document request: %w", err)
	}
	return nil
}

// GetByToken looks a request up by its opaque token. The token is the
// credential; no tenant scoping applies on this read path.
func (r *DocumentRepository) GetByToken(ctx context.Context, token string) (*models.DocumentRequest, error) {
	const query = `SELECT ` + documentColumns + ` FROM document_requests WHERE token = $1`
	var row documentRow
	if err := r.db.GetContext(ctx, &row, query, token); err != nil {
		return nil, err
	}
	return fromDocumentRow(&row)
}

// ListByRequest returns document requests attached to one FIRequest.
func (r *DocumentRepository) ListByRequest(ctx context.Context, tenantID, requestID string) ([]models.DocumentRequest, error) {
	const query = `SELECT ` + documentColumns + ` FROM document_requests WHERE tenant_id = $1 AND request_id = $2 ORDER BY created_at DESC`
	rows, err := r.db.QueryxContext(ctx, query, tenantID, requestID)
	if err != nil {
		return nil, fmt.Errorf("list document requests: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentRequest
	for rows.Next() {
		var row documentRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan document request: %w", err)
		}
		doc, err := fromDocumentRow(&row)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Update persists submissions guarded by the read version.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.DocumentRequest) error {
	readVersion := doc.Version
	doc.Version = readVersion + 1
	doc.UpdatedAt = time.Now().UTC()

	row, err := toDocumentRow(doc)
	if err != nil {
		doc.Version = readVersion
		return err
	}
	query := fmt.Sprintf(`UPDATE document_requests SET submitted_documents = :submitted_documents, status = :status,
        version = :version, updated_at = :updated_at WHERE id = :id AND version = %d`, readVersion)
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		doc.Version = readVersion
		return fmt.Errorf("update document request: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		doc.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

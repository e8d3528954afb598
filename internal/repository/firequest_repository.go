package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/drivelane/fi-decision-api/internal/models"
)

// ErrVersionConflict signals a stale optimistic version; the service
// layer maps it to the CONFLICT taxonomy.
var ErrVersionConflict = fmt.Errorf("stale request version")

// FIRequestRepository persists the central financing-request aggregate.
// Score, calculation, cosigner and options live in JSONB columns so a
// scoring run overwrites score and calculation in one statement.
type FIRequestRepository struct {
	db *sqlx.DB
}

// NewFIRequestRepository creates a new request repository.
func NewFIRequestRepository(db *sqlx.DB) *FIRequestRepository {
	return &FIRequestRepository{db: db}
}

type fiRequestRow struct {
	ID                   string                 `db:"id"`
	TenantID             string                 `db:"tenant_id"`
	ClientID             string                 `db:"client_id"`
	Version              int                    `db:"version"`
	Employment           []byte                 `db:"employment"`
	CreditInfo           []byte                 `db:"credit_info"`
	PersonalInfo         []byte                 `db:"personal_info"`
	Status               models.FIRequestStatus `db:"status"`
	SubmittedAt          *time.Time             `db:"submitted_at"`
	SubmittedBy          *string                `db:"submitted_by"`
	AssignedTo           *string                `db:"assigned_to"`
	ApprovalScore        []byte                 `db:"approval_score"`
	FinancingCalculation []byte                 `db:"financing_calculation"`
	Cosigner             []byte                 `db:"cosigner"`
	CombinedScore        *int                   `db:"combined_score"`
	FinancingOptions     []byte                 `db:"financing_options"`
	CreatedBy            string                 `db:"created_by"`
	CreatedAt            time.Time              `db:"created_at"`
	UpdatedAt            time.Time              `db:"updated_at"`
}

const fiRequestColumns = `id, tenant_id, client_id, version, employment, credit_info, personal_info, status,
        submitted_at, submitted_by, assigned_to, approval_score, financing_calculation, cosigner, combined_score,
        financing_options, created_by, created_at, updated_at`

func toRow(req *models.FIRequest) (*fiRequestRow, error) {
	row := &fiRequestRow{
		ID:            req.ID,
		TenantID:      req.TenantID,
		ClientID:      req.ClientID,
		Version:       req.Version,
		Status:        req.Status,
		SubmittedAt:   req.SubmittedAt,
		SubmittedBy:   req.SubmittedBy,
		AssignedTo:    req.AssignedTo,
		CombinedScore: req.CombinedScore,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
	var err error
	if row.Employment, err = json.Marshal(req.Employment); err != nil {
		return nil, fmt.Errorf("marshal employment: %w", err)
	}
	if row.CreditInfo, err = json.Marshal(req.CreditInfo); err != nil {
		return nil, fmt.Errorf("marshal credit info: %w", err)
	}
	if row.PersonalInfo, err = json.Marshal(req.PersonalInfo); err != nil {
		return nil, fmt.Errorf("marshal personal info: %w", err)
	}
	if req.ApprovalScore != nil {
		if row.ApprovalScore, err = json.Marshal(req.ApprovalScore); err != nil {
			return nil, fmt.Errorf("marshal approval score: %w", err)
		}
	}
	if req.FinancingCalculation != nil {
		if row.FinancingCalculation, err = json.Marshal(req.FinancingCalculation); err != nil {
			return nil, fmt.Errorf("marshal financing calculation: %w", err)
		}
	}
	if req.Cosigner != nil {
		if row.Cosigner, err = json.Marshal(req.Cosigner); err != nil {
			return nil, fmt.Errorf("marshal cosigner: %w", err)
		}
	}
	if len(req.FinancingOptions) > 0 {
		if row.FinancingOptions, err = json.Marshal(req.FinancingOptions); err != nil {
			return nil, fmt.Errorf("marshal financing options: %w", err)
		}
	}
	return row, nil
}

func fromRow(row *fiRequestRow) (*models.FIRequest, error) {
	req := &models.FIRequest{
		ID:            row.ID,
		TenantID:      row.TenantID,
		ClientID:      row.ClientID,
		Version:       row.Version,
		Status:        row.Status,
		SubmittedAt:   row.SubmittedAt,
		SubmittedBy:   row.SubmittedBy,
		AssignedTo:    row.AssignedTo,
		CombinedScore: row.CombinedScore,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if err := json.Unmarshal(row.Employment, &req.Employment); err != nil {
		return nil, fmt.Errorf("unmarshal employment: %w", err)
	}
	if err := json.Unmarshal(row.CreditInfo, &req.CreditInfo); err != nil {
		return nil, fmt.Errorf("unmarshal credit info: %w", err)
	}
	if err := json.Unmarshal(row.PersonalInfo, &req.PersonalInfo); err != nil {
		return nil, fmt.Errorf("unmarshal personal info: %w", err)
	}
	if len(row.ApprovalScore) > 0 {
		req.ApprovalScore = &models.ApprovalScore{}
		if err := json.Unmarshal(row.ApprovalScore, req.ApprovalScore); err != nil {
			return nil, fmt.Errorf("unmarshal approval score: %w", err)
		}
	}
	if len(row.FinancingCalculation) > 0 {
		req.FinancingCalculation = &models.FinancingCalculationResult{}
		if err := json.Unmarshal(row.FinancingCalculation, req.FinancingCalculation); err != nil {
			return nil, fmt.Errorf("unmarshal financing calculation: %w", err)
		}
	}
	if len(row.Cosigner) > 0 {
		req.Cosigner = &models.Cosigner{}
		if err := json.Unmarshal(row.Cosigner, req.Cosigner); err != nil {
			return nil, fmt.Errorf("unmarshal cosigner: %w", err)
		}
	}
	if len(row.FinancingOptions) > 0 {
		if err := json.Unmarshal(row.FinancingOptions, &req.FinancingOptions); err != nil {
			return nil, fmt.Errorf("unmarshal financing options: %w", err)
		}
	}
	return req, nil
}

// Create inserts a new request at version 1.
func (r *FIRequestRepository) Create(ctx context.Context, req *models.FIRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	req.Version = 1

	row, err := toRow(req)
	if err != nil {
		return err
	}
	const query = `INSERT INTO fi_requests (` + fiRequestColumns + `)
        VALUES (:id, :tenant_id, :client_id, :version, :employment, :credit_info, :personal_info, :status,
        :submitted_at, :submitted_by, :assigned_to, :approval_score, :financing_calculation, :cosigner, :combined_score,
        :financing_options, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert fi request: %w", err)
	}
	return nil
}

// GetByID loads the aggregate including its history.
func (r *FIRequestRepository) GetByID(ctx context.Context, tenantID, id string) (*models.FIRequest, error) {
	const query = `SELECT ` + fiRequestColumns + ` FROM fi_requests WHERE tenant_id = $1 AND id = $2`
	var row fiRequestRow
	if err := r.db.GetContext(ctx, &row, query, tenantID, id); err != nil {
		return nil, err
	}
	req, err := fromRow(&row)
	if err != nil {
		return nil, err
	}
	history, err := r.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	req.History = history
	return req, nil
}

// Update persists the aggregate guarded by the version it was read at,
// appending the supplied history entries in the same transaction. A
// stale version returns ErrVersionConflict and writes nothing.
func (r *FIRequestRepository) Update(ctx context.Context, req *models.FIRequest, history ...models.FIRequestHistory) error {
	readVersion := req.Version
	req.Version = readVersion + 1
	req.UpdatedAt = time.Now().UTC()

	row, err := toRow(req)
	if err != nil {
		req.Version = readVersion
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		req.Version = readVersion
		return err
	}

	query := fmt.Sprintf(`UPDATE fi_requests SET version = :version, employment = :employment, credit_info = :credit_info,
        personal_info = :personal_info, status = :status, submitted_at = :submitted_at, submitted_by = :submitted_by,
        assigned_to = :assigned_to, approval_score = :approval_score, financing_calculation = :financing_calculation,
        cosigner = :cosigner, combined_score = :combined_score, financing_options = :financing_options, updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id AND version = %d`, readVersion)
	res, err := tx.NamedExecContext(ctx, query, row)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		req.Version = readVersion
		return fmt.Errorf("update fi request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		tx.Rollback() //nolint:errcheck
		req.Version = readVersion
		return ErrVersionConflict
	}

	for i := range history {
		entry := history[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = req.UpdatedAt
		}
		entry.RequestID = req.ID
		const historyQuery = `INSERT INTO fi_request_history (id, request_id, action, previous_status, new_status, note, is_internal, actor, created_at)
            VALUES (:id, :request_id, :action, :previous_status, :new_status, :note, :is_internal, :actor, :created_at)`
		if _, err := tx.NamedExecContext(ctx, historyQuery, entry); err != nil {
			tx.Rollback() //nolint:errcheck
			req.Version = readVersion
			return fmt.Errorf("append history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		req.Version = readVersion
		return fmt.Errorf("commit fi request update: %w", err)
	}
	return nil
}

// ListHistory returns the append-only history in insertion order.
func (r *FIRequestRepository) ListHistory(ctx context.Context, requestID string) ([]models.FIRequestHistory, error) {
	const query = `SELECT id, request_id, action, previous_status, new_status, note, is_internal, actor, created_at
        FROM fi_request_history WHERE request_id = $1 ORDER BY created_at ASC, id ASC`
	var history []models.FIRequestHistory
	if err := r.db.SelectContext(ctx, &history, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}

// List returns requests matching the filter plus the unpaginated total.
// History is not loaded for listings.
func (r *FIRequestRepository) List(ctx context.Context, tenantID string, filter models.FIRequestFilter) ([]models.FIRequest, int, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if filter.ClientID != "" {
		where += fmt.Sprintf(" AND client_id = $%d", len(args)+1)
		args = append(args, filter.ClientID)
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		where += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}
	if filter.AssignedTo != "" {
		where += fmt.Sprintf(" AND assigned_to = $%d", len(args)+1)
		args = append(args, filter.AssignedTo)
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at < $%d", len(args)+1)
		args = append(args, *filter.To)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM fi_requests "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count fi requests: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	query := fmt.Sprintf("SELECT "+fiRequestColumns+" FROM fi_requests %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list fi requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FIRequest
	for rows.Next() {
		var row fiRequestRow
		if err := rows.StructScan(&row); err != nil {
			return nil, 0, fmt.Errorf("scan fi request: %w", err)
		}
		req, err := fromRow(&row)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate fi requests: %w", err)
	}
	return requests, total, nil
}

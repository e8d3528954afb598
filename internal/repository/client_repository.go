package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/drivelane/fi-decision-api/internal/models"
)

// ClientRepository handles FIClient persistence.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts a client record.
func (r *ClientRepository) Create(ctx context.Context, client *models.FIClient) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now
	const query = `INSERT INTO fi_clients (id, tenant_id, first_name, last_name, email, phone, vehicle_price, down_payment, trade_in_value, created_by, created_at, updated_at)
        VALUES (:id, :tenant_id, :first_name, :last_name, :email, :phone, :vehicle_price, :down_payment, :trade_in_value, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// FindByID returns a client scoped to the tenant.
func (r *ClientRepository) FindByID(ctx context.Context, tenantID, id string) (*models.FIClient, error) {
	const query = `SELECT id, tenant_id, first_name, last_name, email, phone, vehicle_price, down_payment, trade_in_value, created_by, created_at, updated_at
        FROM fi_clients WHERE tenant_id = $1 AND id = $2`
	var client models.FIClient
	if err := r.db.GetContext(ctx, &client, query, tenantID, id); err != nil {
		return nil, err
	}
	return &client, nil
}

// Update overwrites the mutable client fields.
func (r *ClientRepository) Update(ctx context.Context, client *models.FIClient) error {
	client.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fi_clients SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
        vehicle_price = :vehicle_price, down_payment = :down_payment, trade_in_value = :trade_in_value, updated_at = :updated_at
        WHERE tenant_id = :tenant_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update client %s: no rows affected", client.ID)
	}
	return nil
}

// List returns clients matching the filter plus the unpaginated total.
func (r *ClientRepository) List(ctx context.Context, tenantID string, filter models.FIClientFilter) ([]models.FIClient, int, error) {
	where := "WHERE tenant_id = $1"
	args := []interface{}{tenantID}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM fi_clients "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT id, tenant_id, first_name, last_name, email, phone, vehicle_price, down_payment, trade_in_value, created_by, created_at, updated_at
        FROM fi_clients %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, size, (page-1)*size)

	var clients []models.FIClient
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return clients, total, nil
}

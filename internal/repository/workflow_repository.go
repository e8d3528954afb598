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

// WorkflowRepository persists tenant-scoped decisioning rules.
type WorkflowRepository struct {
	db *sqlx.DB
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sqlx.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

type workflowRow struct {
	ID         string                 `db:"id"`
	TenantID   string                 `db:"tenant_id"`
	Name       string                 `db:"name"`
	Trigger    models.WorkflowTrigger `db:"trigger"`
	Conditions []byte                 `db:"conditions"`
	Actions    []byte                 `db:"actions"`
	Enabled    bool                   `db:"enabled"`
	RunCount   int64                  `db:"run_count"`
	LastRunAt  *time.Time             `db:"last_run_at"`
	CreatedBy  string                 `db:"created_by"`
	CreatedAt  time.Time              `db:"created_at"`
	UpdatedAt  time.Time              `db:"updated_at"`
}

const workflowColumns = `id, tenant_id, name, trigger, conditions, actions, enabled, run_count, last_run_at, created_by, created_at, updated_at`

func toWorkflowRow(wf *models.FIWorkflow) (*workflowRow, error) {
	row := &workflowRow{
		ID:        wf.ID,
		TenantID:  wf.TenantID,
		Name:      wf.Name,
		Trigger:   wf.Trigger,
		Enabled:   wf.Enabled,
		RunCount:  wf.RunCount,
		LastRunAt: wf.LastRunAt,
		CreatedBy: wf.CreatedBy,
		CreatedAt: wf.CreatedAt,
		UpdatedAt: wf.UpdatedAt,
	}
	var err error
	if wf.Conditions == nil {
		row.Conditions = []byte("[]")
	} else if row.Conditions, err = json.Marshal(wf.Conditions); err != nil {
		return nil, fmt.Errorf("marshal conditions: %w", err)
	}
	if row.Actions, err = json.Marshal(wf.Actions); err != nil {
		return nil, fmt.Errorf("marshal actions: %w", err)
	}
	return row, nil
}

func fromWorkflowRow(row *workflowRow) (*models.FIWorkflow, error) {
	wf := &models.FIWorkflow{
		ID:        row.ID,
		TenantID:  row.TenantID,
		Name:      row.Name,
		Trigger:   row.Trigger,
		Enabled:   row.Enabled,
		RunCount:  row.RunCount,
		LastRunAt: row.LastRunAt,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Conditions) > 0 {
		if err := json.Unmarshal(row.Conditions, &wf.Conditions); err != nil {
			return nil, fmt.Errorf("unmarshal conditions: %w", err)
		}
	}
	if len(row.Actions) > 0 {
		if err := json.Unmarshal(row.Actions, &wf.Actions); err != nil {
			return nil, fmt.Errorf("unmarshal actions: %w", err)
		}
	}
	return wf, nil
}

// Create inserts a workflow.
func (r *WorkflowRepository) Create(ctx context.Context, wf *models.FIWorkflow) error {
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	row, err := toWorkflowRow(wf)
	if err != nil {
		return err
	}
	const query = `INSERT INTO fi_workflows (` + workflowColumns + `)
        VALUES (:id, :tenant_id, :name, :trigger, :conditions, :actions, :enabled, :run_count, :last_run_at, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

// GetByID returns one workflow scoped to the tenant.
func (r *WorkflowRepository) GetByID(ctx context.Context, tenantID, id string) (*models.FIWorkflow, error) {
	const query = `SELECT ` + workflowColumns + ` FROM fi_workflows WHERE tenant_id = $1 AND id = $2`
	var row workflowRow
	if err := r.db.GetContext(ctx, &row, query, tenantID, id); err != nil {
		return nil, err
	}
	return fromWorkflowRow(&row)
}

// List returns all workflows for the tenant in definition order.
func (r *WorkflowRepository) List(ctx context.Context, tenantID string) ([]models.FIWorkflow, error) {
	const query = `SELECT ` + workflowColumns + ` FROM fi_workflows WHERE tenant_id = $1 ORDER BY created_at ASC, id ASC`
	return r.selectWorkflows(ctx, query, tenantID)
}

// ListEnabledByTrigger returns enabled workflows for one trigger in
// definition order. The engine relies on this ordering; there is no
// priority column on purpose.
func (r *WorkflowRepository) ListEnabledByTrigger(ctx context.Context, tenantID string, trigger models.WorkflowTrigger) ([]models.FIWorkflow, error) {
	const query = `SELECT ` + workflowColumns + ` FROM fi_workflows WHERE tenant_id = $1 AND trigger = $2 AND enabled = TRUE ORDER BY created_at ASC, id ASC`
	return r.selectWorkflows(ctx, query, tenantID, trigger)
}

func (r *WorkflowRepository) selectWorkflows(ctx context.Context, query string, args ...interface{}) ([]models.FIWorkflow, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []models.FIWorkflow
	for rows.Next() {
		var row workflowRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		wf, err := fromWorkflowRow(&row)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, *wf)
	}
	return workflows, rows.Err()
}

// Update overwrites the rule definition.
func (r *WorkflowRepository) Update(ctx context.Context, wf *models.FIWorkflow) error {
	wf.UpdatedAt = time.Now().UTC()
	row, err := toWorkflowRow(wf)
	if err != nil {
		return err
	}
	const query = `UPDATE fi_workflows SET name = :name, trigger = :trigger, conditions = :conditions, actions = :actions,
        enabled = :enabled, updated_at = :updated_at WHERE tenant_id = :tenant_id AND id = :id`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update workflow %s: no rows affected", wf.ID)
	}
	return nil
}

// Delete removes a workflow.
func (r *WorkflowRepository) Delete(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fi_workflows WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete workflow %s: no rows affected", id)
	}
	return nil
}

// RecordRun increments run_count and stamps last_run_at after the engine
// executed a rule's actions.
func (r *WorkflowRepository) RecordRun(ctx context.Context, tenantID, id string, ranAt time.Time) error {
	const query = `UPDATE fi_workflows SET run_count = run_count + 1, last_run_at = $3 WHERE tenant_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, tenantID, id, ranAt); err != nil {
		return fmt.Errorf("record workflow run: %w", err)
	}
	return nil
}

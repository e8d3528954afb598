package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/drivelane/fi-decision-api/internal/models"
)

func newWorkflowRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestWorkflowRepositoryListEnabledByTrigger(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "trigger", "conditions", "actions", "enabled", "run_count", "last_run_at", "created_by", "created_at", "updated_at"}).
		AddRow("wf-1", "t1", "low score docs", "score_threshold",
			[]byte(`[{"field":"approval_score.score","operator":"less_than","value":450}]`),
			[]byte(`[{"type":"request_documents","documents":[{"type":"pay_stub","required":true}]}]`),
			true, 4, nil, "admin-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("AND trigger = $2 AND enabled = TRUE ORDER BY created_at ASC, id ASC")).
		WithArgs("t1", models.TriggerScoreThreshold).
		WillReturnRows(rows)

	workflows, err := repo.ListEnabledByTrigger(context.Background(), "t1", models.TriggerScoreThreshold)
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	require.Equal(t, "wf-1", workflows[0].ID)
	require.Len(t, workflows[0].Conditions, 1)
	require.Equal(t, models.OpLessThan, workflows[0].Conditions[0].Operator)
	require.Len(t, workflows[0].Actions, 1)
	require.Equal(t, models.ActionRequestDocuments, workflows[0].Actions[0].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryRecordRun(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	ranAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("SET run_count = run_count + 1, last_run_at = $3")).
		WithArgs("t1", "wf-1", ranAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordRun(context.Background(), "t1", "wf-1", ranAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkflowRepositoryCreateMarshalsRule(t *testing.T) {
	db, mock, cleanup := newWorkflowRepoMock(t)
	defer cleanup()

	repo := NewWorkflowRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO fi_workflows")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	wf := &models.FIWorkflow{
		TenantID: "t1",
		Name:     "notify on rejection",
		Trigger:  models.TriggerStatusChange,
		Actions: []models.WorkflowAction{
			{Type: models.ActionNotify, Template: "rejection", Recipient: "fm@example.com"},
		},
		Enabled:   true,
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), wf))
	require.NotEmpty(t, wf.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

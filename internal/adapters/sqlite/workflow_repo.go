package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/warden/internal/ports/secondary"
)

// WorkflowRepository implements secondary.WorkflowRepository using SQLite.
type WorkflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new WorkflowRepository.
func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Upsert inserts or replaces the last-observed row for a workflow.
func (r *WorkflowRepository) Upsert(ctx context.Context, workflow *secondary.WorkflowRecord) error {
	if workflow.LastChecked == "" {
		workflow.LastChecked = time.Now().UTC().Format(time.RFC3339)
	}

	query := `INSERT INTO workflows (workflow_id, directory, state, percent_done, held_tasks, last_checked)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(workflow_id) DO UPDATE SET
			directory = excluded.directory,
			state = excluded.state,
			percent_done = excluded.percent_done,
			held_tasks = excluded.held_tasks,
			last_checked = excluded.last_checked`

	_, err := r.db.ExecContext(ctx, query,
		workflow.WorkflowID,
		workflow.Directory,
		workflow.State,
		workflow.PercentDone,
		workflow.HeldTasks,
		workflow.LastChecked,
	)
	return err
}

// GetByID retrieves a workflow row by workflow ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, workflowID string) (*secondary.WorkflowRecord, error) {
	query := `SELECT workflow_id, directory, state, percent_done, held_tasks, last_checked
		FROM workflows WHERE workflow_id = ?`

	var workflow secondary.WorkflowRecord

	err := r.db.QueryRowContext(ctx, query, workflowID).Scan(
		&workflow.WorkflowID,
		&workflow.Directory,
		&workflow.State,
		&workflow.PercentDone,
		&workflow.HeldTasks,
		&workflow.LastChecked,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow not found: %s", workflowID)
	}
	if err != nil {
		return nil, err
	}

	return &workflow, nil
}

// List retrieves all workflow rows ordered by last check time, newest first.
func (r *WorkflowRepository) List(ctx context.Context) ([]*secondary.WorkflowRecord, error) {
	query := `SELECT workflow_id, directory, state, percent_done, held_tasks, last_checked
		FROM workflows ORDER BY last_checked DESC, workflow_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*secondary.WorkflowRecord
	for rows.Next() {
		var workflow secondary.WorkflowRecord
		if err := rows.Scan(
			&workflow.WorkflowID,
			&workflow.Directory,
			&workflow.State,
			&workflow.PercentDone,
			&workflow.HeldTasks,
			&workflow.LastChecked,
		); err != nil {
			return nil, err
		}
		workflows = append(workflows, &workflow)
	}

	return workflows, rows.Err()
}

// Ensure WorkflowRepository implements the interface.
var _ secondary.WorkflowRepository = (*WorkflowRepository)(nil)

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/warden/internal/ports/secondary"
)

// WorkflowEventRepository implements secondary.WorkflowEventRepository using SQLite.
type WorkflowEventRepository struct {
	db *sql.DB
}

// NewWorkflowEventRepository creates a new WorkflowEventRepository.
func NewWorkflowEventRepository(db *sql.DB) *WorkflowEventRepository {
	return &WorkflowEventRepository{db: db}
}

// Create persists a new workflow event.
func (r *WorkflowEventRepository) Create(ctx context.Context, event *secondary.WorkflowEventRecord) error {
	if event.CreatedAt == "" {
		event.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	query := `INSERT INTO workflow_events (id, workflow_id, from_state, to_state, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var detail any
	if event.Detail != "" {
		detail = event.Detail
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.WorkflowID,
		event.FromState,
		event.ToState,
		detail,
		event.CreatedAt,
	)
	return err
}

// List retrieves workflow events matching the given filters, newest first.
func (r *WorkflowEventRepository) List(ctx context.Context, filters secondary.WorkflowEventFilters) ([]*secondary.WorkflowEventRecord, error) {
	query := `SELECT id, workflow_id, from_state, to_state, detail, created_at
		FROM workflow_events WHERE 1=1`
	args := []any{}

	if filters.WorkflowID != "" {
		query += " AND workflow_id = ?"
		args = append(args, filters.WorkflowID)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*secondary.WorkflowEventRecord
	for rows.Next() {
		var event secondary.WorkflowEventRecord
		var detail sql.NullString

		if err := rows.Scan(
			&event.ID,
			&event.WorkflowID,
			&event.FromState,
			&event.ToState,
			&detail,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}

		event.Detail = detail.String
		events = append(events, &event)
	}

	return events, rows.Err()
}

// GetNextID returns the next available workflow event ID.
func (r *WorkflowEventRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	query := `SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM workflow_events WHERE id LIKE 'WFEV-%'`
	if err := r.db.QueryRowContext(ctx, query).Scan(&maxID); err != nil {
		return "", err
	}
	return fmt.Sprintf("WFEV-%03d", maxID+1), nil
}

// Ensure WorkflowEventRepository implements the interface.
var _ secondary.WorkflowEventRepository = (*WorkflowEventRepository)(nil)

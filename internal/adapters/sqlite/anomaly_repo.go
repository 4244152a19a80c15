// Package sqlite implements the persistence ports using SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/warden/internal/ports/secondary"
)

// AnomalyRepository implements secondary.AnomalyRepository using SQLite.
type AnomalyRepository struct {
	db *sql.DB
}

// NewAnomalyRepository creates a new AnomalyRepository.
func NewAnomalyRepository(db *sql.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

// Create persists a new anomaly event.
func (r *AnomalyRepository) Create(ctx context.Context, event *secondary.AnomalyEventRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if event.CapturedAt == "" {
		event.CapturedAt = now
	}
	if event.CreatedAt == "" {
		event.CreatedAt = now
	}

	query := `INSERT INTO anomaly_events (id, workflow_id, directory, consecutive_polls, anomalies, captured_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.WorkflowID,
		event.Directory,
		event.ConsecutivePolls,
		event.AnomaliesJSON,
		event.CapturedAt,
		event.CreatedAt,
	)
	return err
}

// GetByID retrieves an anomaly event by its ID.
func (r *AnomalyRepository) GetByID(ctx context.Context, id string) (*secondary.AnomalyEventRecord, error) {
	query := `SELECT id, workflow_id, directory, consecutive_polls, anomalies, captured_at, created_at
		FROM anomaly_events WHERE id = ?`

	var event secondary.AnomalyEventRecord

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.WorkflowID,
		&event.Directory,
		&event.ConsecutivePolls,
		&event.AnomaliesJSON,
		&event.CapturedAt,
		&event.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("anomaly event not found: %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &event, nil
}

// List retrieves anomaly events matching the given filters, newest first.
func (r *AnomalyRepository) List(ctx context.Context, filters secondary.AnomalyEventFilters) ([]*secondary.AnomalyEventRecord, error) {
	query := `SELECT id, workflow_id, directory, consecutive_polls, anomalies, captured_at, created_at
		FROM anomaly_events WHERE 1=1`
	args := []any{}

	if filters.WorkflowID != "" {
		query += " AND workflow_id = ?"
		args = append(args, filters.WorkflowID)
	}
	if filters.Since != "" {
		query += " AND captured_at >= ?"
		args = append(args, filters.Since)
	}
	if filters.Until != "" {
		query += " AND captured_at <= ?"
		args = append(args, filters.Until)
	}

	query += " ORDER BY captured_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*secondary.AnomalyEventRecord
	for rows.Next() {
		var event secondary.AnomalyEventRecord
		if err := rows.Scan(
			&event.ID,
			&event.WorkflowID,
			&event.Directory,
			&event.ConsecutivePolls,
			&event.AnomaliesJSON,
			&event.CapturedAt,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// GetNextID returns the next available anomaly event ID.
func (r *AnomalyRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	query := `SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM anomaly_events WHERE id LIKE 'ANOM-%'`
	if err := r.db.QueryRowContext(ctx, query).Scan(&maxID); err != nil {
		return "", err
	}
	return fmt.Sprintf("ANOM-%03d", maxID+1), nil
}

// Ensure AnomalyRepository implements the interface.
var _ secondary.AnomalyRepository = (*AnomalyRepository)(nil)

package secondary

import "context"

// AnomalyRepository defines the secondary port for anomaly event persistence.
// Anomaly events are append-only: no Update or Delete operations.
type AnomalyRepository interface {
	// Create persists a new anomaly event.
	Create(ctx context.Context, event *AnomalyEventRecord) error

	// GetByID retrieves an anomaly event by its ID.
	GetByID(ctx context.Context, id string) (*AnomalyEventRecord, error)

	// List retrieves anomaly events matching the given filters, newest first.
	List(ctx context.Context, filters AnomalyEventFilters) ([]*AnomalyEventRecord, error)

	// GetNextID returns the next available anomaly event ID.
	GetNextID(ctx context.Context) (string, error)
}

// AnomalyEventRecord represents an anomaly event as stored in persistence.
// One row per (workflow id, poll timestamp) with a non-empty anomaly set.
type AnomalyEventRecord struct {
	ID               string
	WorkflowID       string
	Directory        string
	ConsecutivePolls int
	AnomaliesJSON    string // held-task list serialized as JSON
	CapturedAt       string
	CreatedAt        string
}

// AnomalyEventFilters contains filter options for querying anomaly events.
// Since and Until are RFC3339 timestamps; empty means unbounded.
type AnomalyEventFilters struct {
	WorkflowID string
	Since      string
	Until      string
	Limit      int
}

// WorkflowRepository defines the secondary port for last-observed workflow
// state. One row per workflow, overwritten on every poll.
type WorkflowRepository interface {
	// Upsert inserts or replaces the row for a workflow.
	Upsert(ctx context.Context, workflow *WorkflowRecord) error

	// GetByID retrieves a workflow row by workflow ID.
	GetByID(ctx context.Context, workflowID string) (*WorkflowRecord, error)

	// List retrieves all workflow rows ordered by last check time, newest first.
	List(ctx context.Context) ([]*WorkflowRecord, error)
}

// WorkflowRecord represents the last observed state of a workflow.
type WorkflowRecord struct {
	WorkflowID  string
	Directory   string
	State       string
	PercentDone float64
	HeldTasks   int
	LastChecked string
}

// WorkflowEventRepository defines the secondary port for the state-transition
// audit trail. Events are immutable: no Update or Delete operations.
type WorkflowEventRepository interface {
	// Create persists a new workflow event.
	Create(ctx context.Context, event *WorkflowEventRecord) error

	// List retrieves workflow events matching the given filters, newest first.
	List(ctx context.Context, filters WorkflowEventFilters) ([]*WorkflowEventRecord, error)

	// GetNextID returns the next available workflow event ID.
	GetNextID(ctx context.Context) (string, error)
}

// WorkflowEventRecord represents one state transition as stored in persistence.
type WorkflowEventRecord struct {
	ID         string
	WorkflowID string
	FromState  string
	ToState    string
	Detail     string // Empty string means null
	CreatedAt  string
}

// WorkflowEventFilters contains filter options for querying workflow events.
type WorkflowEventFilters struct {
	WorkflowID string
	Limit      int
}

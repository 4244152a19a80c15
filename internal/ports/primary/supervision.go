// Package primary defines the primary ports (driving interfaces) for the
// application. CLI commands talk to the application through these.
package primary

import (
	"context"

	"github.com/example/warden/internal/core/status"
)

// Supervisor drives the supervision engine: workflow discovery plus one
// watcher per registered workflow. Run blocks until ctx is cancelled and all
// watchers have stopped.
type Supervisor interface {
	Run(ctx context.Context) error
}

// WorkflowService exposes the last observed state of supervised workflows.
type WorkflowService interface {
	// ListWorkflows retrieves all known workflows, most recently checked first.
	ListWorkflows(ctx context.Context) ([]*Workflow, error)

	// GetWorkflow retrieves one workflow by ID.
	GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error)
}

// Workflow is the last observed state of one workflow.
type Workflow struct {
	ID          string
	Directory   string
	State       string
	PercentDone float64
	HeldTasks   int
	LastChecked string
}

// AnomalyService exposes the persisted anomaly history for audit.
type AnomalyService interface {
	// ListAnomalies retrieves anomaly events matching the filters, newest first.
	ListAnomalies(ctx context.Context, filters AnomalyFilters) ([]*AnomalyEvent, error)

	// GetAnomaly retrieves one anomaly event by ID.
	GetAnomaly(ctx context.Context, id string) (*AnomalyEvent, error)
}

// AnomalyEvent is one persisted anomaly capture: the held-task set observed
// on a single poll plus the consecutive-poll counter at capture time.
type AnomalyEvent struct {
	ID               string
	WorkflowID       string
	Directory        string
	ConsecutivePolls int
	Anomalies        []status.TaskAnomaly
	CapturedAt       string
}

// AnomalyFilters contains filter options for querying anomaly events.
// Since and Until are RFC3339 timestamps; empty means unbounded.
type AnomalyFilters struct {
	WorkflowID string
	Since      string
	Until      string
	Limit      int
}

// EventService exposes the state-transition audit trail.
type EventService interface {
	// ListEvents retrieves transition events matching the filters, newest first.
	ListEvents(ctx context.Context, filters EventFilters) ([]*WorkflowEvent, error)
}

// WorkflowEvent is one recorded watcher state transition.
type WorkflowEvent struct {
	ID         string
	WorkflowID string
	FromState  string
	ToState    string
	Detail     string
	CreatedAt  string
}

// EventFilters contains filter options for querying transition events.
type EventFilters struct {
	WorkflowID string
	Limit      int
}

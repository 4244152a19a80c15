// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import (
	"context"

	"github.com/example/warden/internal/core/status"
)

// StatusSource defines the secondary port for the external workflow status
// source. Poll failures are classified via status.PollError.
type StatusSource interface {
	// PollAll reports all currently active workflows.
	PollAll(ctx context.Context) ([]status.WorkflowSnapshot, error)

	// PollWorkflow reports one workflow identified by its run directory.
	PollWorkflow(ctx context.Context, id, directory string) (*status.WorkflowSnapshot, error)
}

// WorkflowTerminator defines the secondary port for cancelling a workflow.
// Termination is fire-and-forget: failures are logged by the caller, never
// retried, and rely on the executor's own idempotent cancel semantics.
type WorkflowTerminator interface {
	Terminate(ctx context.Context, directory string) error
}

package app

import (
	"context"
	"fmt"

	"github.com/example/warden/internal/ports/primary"
	"github.com/example/warden/internal/ports/secondary"
)

// WorkflowServiceImpl implements the WorkflowService interface.
type WorkflowServiceImpl struct {
	workflowRepo secondary.WorkflowRepository
}

// NewWorkflowService creates a new WorkflowService with injected dependencies.
func NewWorkflowService(workflowRepo secondary.WorkflowRepository) *WorkflowServiceImpl {
	return &WorkflowServiceImpl{workflowRepo: workflowRepo}
}

// ListWorkflows lists all known workflows, most recently checked first.
func (s *WorkflowServiceImpl) ListWorkflows(ctx context.Context) ([]*primary.Workflow, error) {
	records, err := s.workflowRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*primary.Workflow, len(records))
	for i, r := range records {
		workflows[i] = s.recordToWorkflow(r)
	}
	return workflows, nil
}

// GetWorkflow retrieves one workflow by ID.
func (s *WorkflowServiceImpl) GetWorkflow(ctx context.Context, workflowID string) (*primary.Workflow, error) {
	record, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return s.recordToWorkflow(record), nil
}

func (s *WorkflowServiceImpl) recordToWorkflow(r *secondary.WorkflowRecord) *primary.Workflow {
	return &primary.Workflow{
		ID:          r.WorkflowID,
		Directory:   r.Directory,
		State:       r.State,
		PercentDone: r.PercentDone,
		HeldTasks:   r.HeldTasks,
		LastChecked: r.LastChecked,
	}
}

// Ensure WorkflowServiceImpl implements the interface
var _ primary.WorkflowService = (*WorkflowServiceImpl)(nil)

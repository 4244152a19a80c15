package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/ports/secondary"
)

// pollResult scripts one PollWorkflow answer.
type pollResult struct {
	snapshot *status.WorkflowSnapshot
	err      error
}

// mockStatusSource replays a scripted sequence of poll results. Once the
// script runs out it keeps returning the last entry.
type mockStatusSource struct {
	mu      sync.Mutex
	script  []pollResult
	all     []status.WorkflowSnapshot
	allErr  error
	calls   int
	allCall int
}

func (m *mockStatusSource) PollWorkflow(ctx context.Context, id, directory string) (*status.WorkflowSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.script) == 0 {
		return nil, errors.New("no scripted poll results")
	}
	idx := m.calls
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	m.calls++
	result := m.script[idx]
	return result.snapshot, result.err
}

func (m *mockStatusSource) PollAll(ctx context.Context) ([]status.WorkflowSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allCall++
	return m.all, m.allErr
}

// mockTerminator records Terminate calls.
type mockTerminator struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (m *mockTerminator) Terminate(ctx context.Context, directory string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, directory)
	return m.err
}

func (m *mockTerminator) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockRemedy records Remediate calls.
type mockRemedy struct {
	mu       sync.Mutex
	requests []secondary.RemediationRequest
	outcome  secondary.RemediationOutcome
	err      error
}

func (m *mockRemedy) Remediate(ctx context.Context, req secondary.RemediationRequest) (secondary.RemediationOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.outcome == "" {
		return secondary.RemediationAccepted, m.err
	}
	return m.outcome, m.err
}

func (m *mockRemedy) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// mockAnomalyRepo stores anomaly events in memory.
type mockAnomalyRepo struct {
	mu        sync.Mutex
	events    []*secondary.AnomalyEventRecord
	createErr error
	nextIDErr error
}

func (m *mockAnomalyRepo) Create(ctx context.Context, event *secondary.AnomalyEventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *mockAnomalyRepo) GetByID(ctx context.Context, id string) (*secondary.AnomalyEventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			return event, nil
		}
	}
	return nil, fmt.Errorf("anomaly event not found: %s", id)
}

func (m *mockAnomalyRepo) List(ctx context.Context, filters secondary.AnomalyEventFilters) ([]*secondary.AnomalyEventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*secondary.AnomalyEventRecord(nil), m.events...), nil
}

func (m *mockAnomalyRepo) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nextIDErr != nil {
		return "", m.nextIDErr
	}
	return fmt.Sprintf("ANOM-%03d", len(m.events)+1), nil
}

func (m *mockAnomalyRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// mockEventRepo stores workflow transition events in memory.
type mockEventRepo struct {
	mu     sync.Mutex
	events []*secondary.WorkflowEventRecord
}

func (m *mockEventRepo) Create(ctx context.Context, event *secondary.WorkflowEventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventRepo) List(ctx context.Context, filters secondary.WorkflowEventFilters) ([]*secondary.WorkflowEventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*secondary.WorkflowEventRecord(nil), m.events...), nil
}

func (m *mockEventRepo) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("WFEV-%03d", len(m.events)+1), nil
}

// mockWorkflowRepo stores last-observed workflow rows in memory.
type mockWorkflowRepo struct {
	mu   sync.Mutex
	rows map[string]*secondary.WorkflowRecord
}

func newMockWorkflowRepo() *mockWorkflowRepo {
	return &mockWorkflowRepo{rows: make(map[string]*secondary.WorkflowRecord)}
}

func (m *mockWorkflowRepo) Upsert(ctx context.Context, workflow *secondary.WorkflowRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *workflow
	m.rows[workflow.WorkflowID] = &copied
	return nil
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, workflowID string) (*secondary.WorkflowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[workflowID]
	if !ok {
		return nil, fmt.Errorf("workflow not found: %s", workflowID)
	}
	return row, nil
}

func (m *mockWorkflowRepo) List(ctx context.Context) ([]*secondary.WorkflowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := make([]*secondary.WorkflowRecord, 0, len(m.rows))
	for _, row := range m.rows {
		rows = append(rows, row)
	}
	return rows, nil
}

// Interface checks for the mocks.
var (
	_ secondary.StatusSource            = (*mockStatusSource)(nil)
	_ secondary.WorkflowTerminator      = (*mockTerminator)(nil)
	_ secondary.RemediationClient       = (*mockRemedy)(nil)
	_ secondary.AnomalyRepository       = (*mockAnomalyRepo)(nil)
	_ secondary.WorkflowEventRepository = (*mockEventRepo)(nil)
	_ secondary.WorkflowRepository      = (*mockWorkflowRepo)(nil)
)

func runningSnapshot(held int) *status.WorkflowSnapshot {
	snapshot := &status.WorkflowSnapshot{
		ID:          "wf-1",
		Directory:   "/runs/wf-1",
		State:       status.StateRunning,
		PercentDone: 50,
	}
	for i := 0; i < held; i++ {
		snapshot.Anomalies = append(snapshot.Anomalies, status.TaskAnomaly{
			TaskID:     fmt.Sprintf("task-%d", i+1),
			HeldReason: "Transfer input files failure",
			Site:       "condorpool",
		})
	}
	return snapshot
}

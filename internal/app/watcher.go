package app

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/metrics"
	"github.com/example/warden/internal/ports/secondary"
)

// Watcher states. Completed, Failed, and Terminated are terminal: once
// reached, the watcher unregisters itself and stops polling.
const (
	StatePolling    = "polling"
	StateEscalating = "escalating"
	StateCompleted  = "completed"
	StateFailed     = "failed"
	StateTerminated = "terminated"
)

// Watcher state machine events.
const (
	eventComplete  = "complete"
	eventFail      = "fail"
	eventEscalate  = "escalate"
	eventTerminate = "terminate"
)

// WatcherDeps bundles the collaborators a watcher drives.
type WatcherDeps struct {
	Source       secondary.StatusSource
	Terminator   secondary.WorkflowTerminator
	Remedy       secondary.RemediationClient
	AnomalyRepo  secondary.AnomalyRepository
	EventRepo    secondary.WorkflowEventRepository
	WorkflowRepo secondary.WorkflowRepository
}

// WatcherOptions carries the tuning knobs for a watcher.
type WatcherOptions struct {
	PollInterval  time.Duration
	PollTimeout   time.Duration
	HeldThreshold int
}

// Watcher supervises a single workflow: it polls the status source at a
// fixed interval, counts consecutive polls with held tasks, and escalates
// through termination and remediation handoff once the budget is exhausted.
// All mutable state is owned exclusively by the watcher's own goroutine.
type Watcher struct {
	id        string
	directory string

	deps WatcherDeps
	opts WatcherOptions

	consecutiveHeld int
	machine         *fsm.FSM
	logger          *zap.Logger
}

// NewWatcher creates a watcher for one workflow.
func NewWatcher(id, directory string, deps WatcherDeps, opts WatcherOptions, logger *zap.Logger) *Watcher {
	w := &Watcher{
		id:        id,
		directory: directory,
		deps:      deps,
		opts:      opts,
		logger:    logger.With(zap.String("workflow_id", id)),
	}

	w.machine = fsm.NewFSM(
		StatePolling,
		fsm.Events{
			{Name: eventComplete, Src: []string{StatePolling}, Dst: StateCompleted},
			{Name: eventFail, Src: []string{StatePolling}, Dst: StateFailed},
			{Name: eventEscalate, Src: []string{StatePolling}, Dst: StateEscalating},
			{Name: eventTerminate, Src: []string{StateEscalating}, Dst: StateTerminated},
		},
		fsm.Callbacks{
			"enter_state": func(ctx context.Context, e *fsm.Event) {
				w.recordTransition(ctx, e)
			},
		},
	)

	return w
}

// State returns the watcher's current state.
func (w *Watcher) State() string {
	return w.machine.Current()
}

// Done reports whether the watcher has reached a terminal state.
func (w *Watcher) Done() bool {
	switch w.machine.Current() {
	case StateCompleted, StateFailed, StateTerminated:
		return true
	}
	return false
}

// ConsecutiveHeldPolls returns the current anomaly-retry counter.
func (w *Watcher) ConsecutiveHeldPolls() int {
	return w.consecutiveHeld
}

// Run polls until the workflow reaches a terminal state or ctx is cancelled.
// Polls are strictly sequential; the watcher checks its own liveness after
// every poll/sleep cycle.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("watcher started",
		zap.String("directory", w.directory),
		zap.Duration("poll_interval", w.opts.PollInterval),
		zap.Int("held_threshold", w.opts.HeldThreshold))

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		w.tick(ctx)

		if w.Done() {
			w.logger.Info("watcher stopped", zap.String("state", w.State()))
			return
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher cancelled", zap.String("state", w.State()))
			return
		case <-ticker.C:
		}
	}
}

// tick performs one poll and applies the supervision policy to its result.
func (w *Watcher) tick(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, w.opts.PollTimeout)
	snapshot, err := w.deps.Source.PollWorkflow(pollCtx, w.id, w.directory)
	cancel()

	if err != nil {
		if status.IsSourceUnavailable(err) {
			// Fatal to this watcher only: the condition is about
			// observability, not the workflow itself. The anomaly budget is
			// not consumed and no termination or remediation is issued.
			metrics.PollsTotal.WithLabelValues("unavailable").Inc()
			w.logger.Error("status source unavailable", zap.Error(err))
			w.event(ctx, eventFail, fmt.Sprintf("status source unavailable: %v", err))
			return
		}
		metrics.PollsTotal.WithLabelValues("transient").Inc()
		w.logger.Warn("transient poll failure, retrying next tick", zap.Error(err))
		return
	}

	metrics.PollsTotal.WithLabelValues("ok").Inc()
	w.observe(ctx, snapshot)

	// Terminal aggregate states win over anomaly evaluation: once the source
	// classifies the workflow as finished, escalation is never evaluated.
	switch snapshot.State {
	case status.StateSuccess:
		w.event(ctx, eventComplete, fmt.Sprintf("workflow completed (%.1f%% done)", snapshot.PercentDone))
		return
	case status.StateFailure:
		w.event(ctx, eventFail, "workflow reported failure")
		return
	}

	if len(snapshot.Anomalies) == 0 {
		if w.consecutiveHeld > 0 {
			w.logger.Info("held condition cleared, resetting counter",
				zap.Int("previous_count", w.consecutiveHeld))
		}
		w.consecutiveHeld = 0
		return
	}

	w.consecutiveHeld++
	metrics.AnomalousPollsTotal.Inc()
	w.logger.Warn("held tasks detected",
		zap.Int("held_tasks", len(snapshot.Anomalies)),
		zap.Int("consecutive_polls", w.consecutiveHeld),
		zap.Int("held_threshold", w.opts.HeldThreshold))

	if err := w.recordAnomalies(ctx, snapshot); err != nil {
		// An escalation decision must always be backed by a persisted trail;
		// defer the threshold evaluation to the next tick.
		w.logger.Error("anomaly event not persisted, deferring escalation check", zap.Error(err))
		return
	}

	if w.consecutiveHeld >= w.opts.HeldThreshold {
		w.escalate(ctx, snapshot)
	}
}

// observe upserts the last-observed workflow row. Best effort: a write
// failure never affects the supervision decision.
func (w *Watcher) observe(ctx context.Context, snapshot *status.WorkflowSnapshot) {
	record := &secondary.WorkflowRecord{
		WorkflowID:  w.id,
		Directory:   w.directory,
		State:       string(snapshot.State),
		PercentDone: snapshot.PercentDone,
		HeldTasks:   len(snapshot.Anomalies),
		LastChecked: time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.deps.WorkflowRepo.Upsert(ctx, record); err != nil {
		w.logger.Warn("failed to update workflow row", zap.Error(err))
	}
}

// recordAnomalies persists the held-task snapshot together with the
// consecutive-poll counter at capture time. Must succeed before the
// threshold is evaluated.
func (w *Watcher) recordAnomalies(ctx context.Context, snapshot *status.WorkflowSnapshot) error {
	anomalies, err := json.Marshal(snapshot.Anomalies)
	if err != nil {
		return fmt.Errorf("failed to encode anomalies: %w", err)
	}

	id, err := w.deps.AnomalyRepo.GetNextID(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate anomaly event ID: %w", err)
	}

	event := &secondary.AnomalyEventRecord{
		ID:               id,
		WorkflowID:       w.id,
		Directory:        w.directory,
		ConsecutivePolls: w.consecutiveHeld,
		AnomaliesJSON:    string(anomalies),
		CapturedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.deps.AnomalyRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to persist anomaly event: %w", err)
	}

	w.logger.Info("anomaly event recorded", zap.String("event_id", id))
	return nil
}

// escalate runs the one-shot escalation sequence: terminate the workflow,
// then hand it to the remediation collaborator. Entered at most once per
// workflow; neither a failed termination nor a failed remediation re-arms
// the watcher.
func (w *Watcher) escalate(ctx context.Context, snapshot *status.WorkflowSnapshot) {
	metrics.EscalationsTotal.Inc()
	w.event(ctx, eventEscalate,
		fmt.Sprintf("held tasks on %d consecutive polls, budget exhausted", w.consecutiveHeld))

	termCtx, cancel := context.WithTimeout(ctx, w.opts.PollTimeout)
	err := w.deps.Terminator.Terminate(termCtx, w.directory)
	cancel()

	detail := "termination issued"
	if err != nil {
		// Non-fatal: the workflow may already be gone. Proceed to the
		// remediation handoff so the anomaly signal is not lost.
		w.logger.Error("termination command failed", zap.Error(err))
		detail = fmt.Sprintf("termination failed: %v", err)
	} else {
		w.logger.Info("termination issued", zap.String("directory", w.directory))
	}
	w.event(ctx, eventTerminate, detail)

	outcome, err := w.deps.Remedy.Remediate(ctx, secondary.RemediationRequest{
		WorkflowID: w.id,
		Directory:  w.directory,
		Anomalies:  snapshot.Anomalies,
	})
	metrics.RemediationsTotal.WithLabelValues(string(outcome)).Inc()
	if err != nil {
		w.logger.Error("remediation handoff failed",
			zap.String("outcome", string(outcome)), zap.Error(err))
		return
	}
	w.logger.Info("remediation handoff completed", zap.String("outcome", string(outcome)))
}

// event fires a state machine transition; invalid transitions indicate a
// policy bug and are logged rather than crashing the watcher.
func (w *Watcher) event(ctx context.Context, name, detail string) {
	if err := w.machine.Event(ctx, name, detail); err != nil {
		w.logger.Error("state transition rejected",
			zap.String("event", name),
			zap.String("state", w.machine.Current()),
			zap.Error(err))
	}
}

// recordTransition logs every state change with prior/new state and appends
// it to the durable audit trail.
func (w *Watcher) recordTransition(ctx context.Context, e *fsm.Event) {
	detail := ""
	if len(e.Args) > 0 {
		if s, ok := e.Args[0].(string); ok {
			detail = s
		}
	}

	w.logger.Info("state transition",
		zap.String("from", e.Src),
		zap.String("to", e.Dst),
		zap.String("detail", detail))

	id, err := w.deps.EventRepo.GetNextID(ctx)
	if err != nil {
		w.logger.Warn("failed to generate workflow event ID", zap.Error(err))
		return
	}
	record := &secondary.WorkflowEventRecord{
		ID:         id,
		WorkflowID: w.id,
		FromState:  e.Src,
		ToState:    e.Dst,
		Detail:     detail,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := w.deps.EventRepo.Create(ctx, record); err != nil {
		w.logger.Warn("failed to persist workflow event", zap.Error(err))
	}
}

package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/warden/internal/metrics"
)

// WatchedWorkflow is a point-in-time view of a registry entry.
type WatchedWorkflow struct {
	ID           string
	Directory    string
	RegisteredAt time.Time
}

// Spawner runs the supervision routine for a newly registered workflow.
// Spawn is invoked on its own goroutine and blocks until the workflow's
// watcher stops; the registry retires the entry when it returns.
type Spawner interface {
	Spawn(ctx context.Context, workflow WatchedWorkflow)
}

type registryEntry struct {
	workflow WatchedWorkflow
	cancel   context.CancelFunc
	done     chan struct{}
}

// Registry is the set of currently supervised workflows and the single
// source of truth for entry existence. It serializes register/unregister
// calls; the lock is never held across a poll or any other external call.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	spawner Spawner
	logger  *zap.Logger
}

// NewRegistry creates a Registry that starts watchers via the given spawner.
func NewRegistry(spawner Spawner, logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		spawner: spawner,
		logger:  logger,
	}
}

// Register adds a workflow and spawns its watcher. Registration is
// idempotent: if the id is already present this is a no-op returning false,
// guaranteeing exactly one watcher per id.
func (r *Registry) Register(ctx context.Context, id, directory string) bool {
	r.mu.Lock()
	if _, exists := r.entries[id]; exists {
		r.mu.Unlock()
		return false
	}

	watchCtx, cancel := context.WithCancel(ctx)
	entry := &registryEntry{
		workflow: WatchedWorkflow{
			ID:           id,
			Directory:    directory,
			RegisteredAt: time.Now().UTC(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.entries[id] = entry
	metrics.WatchedWorkflows.Set(float64(len(r.entries)))
	r.mu.Unlock()

	go func() {
		defer close(entry.done)
		r.spawner.Spawn(watchCtx, entry.workflow)
		r.remove(id)
	}()

	return true
}

// Unregister removes a workflow and signals its watcher to stop. The watcher
// notices within at most one poll cycle; no mid-poll preemption happens.
// Safe to call for unknown ids and from the watcher's own goroutine.
func (r *Registry) Unregister(id string) {
	r.remove(id)
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	entry, exists := r.entries[id]
	if exists {
		delete(r.entries, id)
		metrics.WatchedWorkflows.Set(float64(len(r.entries)))
	}
	r.mu.Unlock()

	if exists {
		entry.cancel()
		r.logger.Info("workflow unregistered", zap.String("workflow_id", id))
	}
}

// Snapshot returns a point-in-time copy of the registered workflows, ordered
// by id. Safe for iteration while watchers mutate their own state.
func (r *Registry) Snapshot() []WatchedWorkflow {
	r.mu.Lock()
	workflows := make([]WatchedWorkflow, 0, len(r.entries))
	for _, entry := range r.entries {
		workflows = append(workflows, entry.workflow)
	}
	r.mu.Unlock()

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].ID < workflows[j].ID })
	return workflows
}

// Len returns the number of registered workflows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// StopAll cancels every watcher and waits for all of them to stop.
func (r *Registry) StopAll() {
	r.mu.Lock()
	entries := make([]*registryEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, entry)
	}
	r.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
	}
	for _, entry := range entries {
		<-entry.done
	}
}

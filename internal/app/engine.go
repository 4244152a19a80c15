package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/warden/internal/ports/primary"
)

// EngineOptions carries the engine's tuning knobs.
type EngineOptions struct {
	PollInterval      time.Duration
	DiscoveryInterval time.Duration
	PollTimeout       time.Duration
	HeldThreshold     int
}

// Engine composes the discovery loop, the workflow registry, and one watcher
// per registered workflow into the supervision engine.
type Engine struct {
	deps      WatcherDeps
	opts      EngineOptions
	registry  *Registry
	discovery *Discovery
	logger    *zap.Logger
}

// NewEngine wires a supervision engine from its collaborators.
func NewEngine(deps WatcherDeps, opts EngineOptions, logger *zap.Logger) *Engine {
	e := &Engine{
		deps:   deps,
		opts:   opts,
		logger: logger,
	}
	e.registry = NewRegistry(e, logger)
	e.discovery = NewDiscovery(deps.Source, e.registry, opts.DiscoveryInterval, opts.PollTimeout, logger)
	return e
}

// Registry exposes the engine's workflow registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Spawn runs a watcher for the workflow until it reaches a terminal state or
// its context is cancelled. Implements Spawner for the registry.
func (e *Engine) Spawn(ctx context.Context, workflow WatchedWorkflow) {
	watcher := NewWatcher(workflow.ID, workflow.Directory, e.deps, WatcherOptions{
		PollInterval:  e.opts.PollInterval,
		PollTimeout:   e.opts.PollTimeout,
		HeldThreshold: e.opts.HeldThreshold,
	}, e.logger)
	watcher.Run(ctx)
}

// Run drives discovery until ctx is cancelled, then stops every watcher and
// waits for them to exit.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("supervision engine starting",
		zap.Duration("poll_interval", e.opts.PollInterval),
		zap.Duration("discovery_interval", e.opts.DiscoveryInterval),
		zap.Int("held_threshold", e.opts.HeldThreshold))

	e.discovery.Run(ctx)

	e.logger.Info("supervision engine stopping, waiting for watchers")
	e.registry.StopAll()
	e.logger.Info("supervision engine stopped")
	return nil
}

// Ensure Engine implements the interfaces.
var (
	_ primary.Supervisor = (*Engine)(nil)
	_ Spawner            = (*Engine)(nil)
)

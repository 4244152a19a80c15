package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/warden/internal/ports/secondary"
)

// Discovery periodically asks the status source for all active workflows and
// registers the ones not already supervised. It never unregisters: removal is
// solely the watcher's own responsibility on terminal transition, so a
// transient empty poll cannot tear down a live watcher.
type Discovery struct {
	source   secondary.StatusSource
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDiscovery creates a discovery loop over the given registry.
func NewDiscovery(source secondary.StatusSource, registry *Registry, interval, timeout time.Duration, logger *zap.Logger) *Discovery {
	return &Discovery{
		source:   source,
		registry: registry,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run scans immediately and then at the configured interval until ctx is
// cancelled. Scan failures are logged and never stop the loop.
func (d *Discovery) Run(ctx context.Context) {
	d.logger.Info("discovery started", zap.Duration("interval", d.interval))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		d.scan(ctx)

		select {
		case <-ctx.Done():
			d.logger.Info("discovery stopped")
			return
		case <-ticker.C:
		}
	}
}

func (d *Discovery) scan(ctx context.Context) {
	pollCtx, cancel := context.WithTimeout(ctx, d.timeout)
	snapshots, err := d.source.PollAll(pollCtx)
	cancel()
	if err != nil {
		d.logger.Warn("discovery poll failed", zap.Error(err))
		return
	}

	registered := 0
	for _, snapshot := range snapshots {
		if snapshot.ID == "" || snapshot.Directory == "" {
			d.logger.Debug("skipping workflow with incomplete identity",
				zap.String("workflow_id", snapshot.ID),
				zap.String("directory", snapshot.Directory))
			continue
		}
		if d.registry.Register(ctx, snapshot.ID, snapshot.Directory) {
			registered++
			d.logger.Info("workflow registered",
				zap.String("workflow_id", snapshot.ID),
				zap.String("directory", snapshot.Directory))
		}
	}

	d.logger.Info("discovery scan complete",
		zap.Int("reported", len(snapshots)),
		zap.Int("newly_registered", registered),
		zap.Int("watched", d.registry.Len()))
}

package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/warden/internal/core/status"
)

func newTestDiscovery(source *mockStatusSource, spawner Spawner) (*Discovery, *Registry) {
	registry := NewRegistry(spawner, zap.NewNop())
	discovery := NewDiscovery(source, registry, 10*time.Millisecond, time.Second, zap.NewNop())
	return discovery, registry
}

func TestDiscoveryRegistersActiveWorkflows(t *testing.T) {
	source := &mockStatusSource{
		all: []status.WorkflowSnapshot{
			{ID: "wf-1", Directory: "/runs/wf-1", State: status.StateRunning},
			{ID: "wf-2", Directory: "/runs/wf-2", State: status.StateRunning},
		},
	}
	spawner := newBlockingSpawner()
	discovery, registry := newTestDiscovery(source, spawner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	discovery.scan(ctx)

	if registry.Len() != 2 {
		t.Fatalf("expected 2 registered workflows, got %d", registry.Len())
	}

	// A second scan must not double-register.
	discovery.scan(ctx)
	if registry.Len() != 2 {
		t.Errorf("expected 2 workflows after rescan, got %d", registry.Len())
	}
	spawner.waitStarted(t)
	spawner.waitStarted(t)
	if spawner.count() != 2 {
		t.Errorf("expected 2 spawned watchers, got %d", spawner.count())
	}

	registry.StopAll()
}

func TestDiscoverySkipsIncompleteIdentity(t *testing.T) {
	source := &mockStatusSource{
		all: []status.WorkflowSnapshot{
			{ID: "", Directory: "/runs/orphan"},
			{ID: "wf-nodir", Directory: ""},
			{ID: "wf-1", Directory: "/runs/wf-1"},
		},
	}
	spawner := newBlockingSpawner()
	discovery, registry := newTestDiscovery(source, spawner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	discovery.scan(ctx)

	if registry.Len() != 1 {
		t.Errorf("expected only the complete workflow registered, got %d", registry.Len())
	}

	registry.StopAll()
}

func TestDiscoveryPollFailureDoesNotUnregister(t *testing.T) {
	source := &mockStatusSource{
		all: []status.WorkflowSnapshot{
			{ID: "wf-1", Directory: "/runs/wf-1"},
		},
	}
	spawner := newBlockingSpawner()
	discovery, registry := newTestDiscovery(source, spawner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	discovery.scan(ctx)
	if registry.Len() != 1 {
		t.Fatalf("expected 1 registered workflow, got %d", registry.Len())
	}

	source.mu.Lock()
	source.allErr = status.NewSourceUnavailable(errors.New("pegasus-status failed"))
	source.mu.Unlock()

	discovery.scan(ctx)
	if registry.Len() != 1 {
		t.Errorf("failed scan must not tear down watchers, got %d", registry.Len())
	}

	registry.StopAll()
}

func TestDiscoveryRunStopsOnCancel(t *testing.T) {
	source := &mockStatusSource{}
	spawner := newBlockingSpawner()
	discovery, registry := newTestDiscovery(source, spawner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		discovery.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("discovery did not stop after cancellation")
	}
	registry.StopAll()
}

// Package pegasus adapts the Pegasus command-line tools to the status source
// and terminator ports. Status is read from `pegasus-status -j`, which emits
// one JSON document per invocation; termination shells out to
// `pegasus-remove`.
package pegasus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/ports/secondary"
)

// Source polls workflow status by invoking the status command and decoding
// its JSON output.
type Source struct {
	statusCmd string
	removeCmd string
}

// NewSource creates a Source around the given status and remove commands.
func NewSource(statusCmd, removeCmd string) *Source {
	return &Source{statusCmd: statusCmd, removeCmd: removeCmd}
}

// PollAll reports every workflow the status command currently knows about.
func (s *Source) PollAll(ctx context.Context) ([]status.WorkflowSnapshot, error) {
	out, err := s.run(ctx, s.statusCmd, "-j")
	if err != nil {
		return nil, err
	}

	snapshots, err := status.NormalizeAll(out)
	if err != nil {
		return nil, status.NewTransient(err)
	}
	return snapshots, nil
}

// PollWorkflow reports the workflow running in the given directory.
func (s *Source) PollWorkflow(ctx context.Context, id, directory string) (*status.WorkflowSnapshot, error) {
	out, err := s.run(ctx, s.statusCmd, "-j", directory)
	if err != nil {
		return nil, err
	}

	snapshot, err := status.NormalizeWorkflow(out, id, directory)
	if err != nil {
		return nil, status.NewTransient(err)
	}
	return snapshot, nil
}

// Terminate removes the workflow running in the given directory. The remove
// command is idempotent on the executor side, so failures are reported but
// never retried here.
func (s *Source) Terminate(ctx context.Context, directory string) error {
	cmd := exec.CommandContext(ctx, s.removeCmd, directory)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w%s", s.removeCmd, directory, err, stderrSuffix(&stderr))
	}
	return nil
}

// run executes the status command and classifies failures: a context
// deadline is transient (the next tick retries), anything else that stops
// the command from producing output means the source is unavailable.
func (s *Source) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, status.NewTransient(fmt.Errorf("%s timed out: %w", name, err))
		}
		return nil, status.NewSourceUnavailable(fmt.Errorf("%s failed: %w%s", name, err, stderrSuffix(&stderr)))
	}

	return stdout.Bytes(), nil
}

func stderrSuffix(stderr *bytes.Buffer) string {
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		return ""
	}
	return ": " + msg
}

// Ensure Source implements the interfaces.
var (
	_ secondary.StatusSource       = (*Source)(nil)
	_ secondary.WorkflowTerminator = (*Source)(nil)
)

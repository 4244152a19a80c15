package pegasus_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/warden/internal/adapters/pegasus"
	"github.com/example/warden/internal/core/status"
)

// writeScript writes an executable shell script standing in for the status
// or remove command and returns its path.
func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

const statusPayload = `{
  "dags": {"root": {"state": "Running", "percent_done": 42.5}},
  "condor_jobs": {
    "wf-1": {
      "DAG_NAME": "wf-1",
      "DAG_CONDOR_JOBS": [
        {
          "pegasus_wf_dag_job_id": "stage_in_1",
          "JobStatusName": "Held",
          "HoldReason": "Transfer input files failure",
          "pegasus_site": "condorpool",
          "Iwd": "/runs/wf-1"
        },
        {
          "pegasus_wf_dag_job_id": "compute_1",
          "JobStatusName": "Running",
          "Iwd": "/runs/wf-1"
        }
      ]
    }
  },
  "totals": {"total": 2, "succeeded": 0, "failed": 0, "percent_done": 42.5}
}`

func TestPollAllCommandMissing(t *testing.T) {
	source := pegasus.NewSource("warden-test-no-such-command", "true")

	_, err := source.PollAll(context.Background())
	if err == nil {
		t.Fatal("expected error for missing command")
	}
	if !status.IsSourceUnavailable(err) {
		t.Errorf("expected source unavailable, got: %v", err)
	}
}

func TestPollAllCommandFails(t *testing.T) {
	statusCmd := writeScript(t, "pegasus-status", `echo "no matching workflows" >&2; exit 1`)
	source := pegasus.NewSource(statusCmd, "true")

	_, err := source.PollAll(context.Background())
	if err == nil {
		t.Fatal("expected error for failing command")
	}
	if !status.IsSourceUnavailable(err) {
		t.Errorf("expected source unavailable, got: %v", err)
	}
}

func TestPollAllUndecodableOutput(t *testing.T) {
	statusCmd := writeScript(t, "pegasus-status", `echo "not json"`)
	source := pegasus.NewSource(statusCmd, "true")

	_, err := source.PollAll(context.Background())
	if err == nil {
		t.Fatal("expected error for undecodable output")
	}
	if !status.IsTransient(err) {
		t.Errorf("expected transient, got: %v", err)
	}
}

func TestPollWorkflowTimeout(t *testing.T) {
	statusCmd := writeScript(t, "pegasus-status", `sleep 10`)
	source := pegasus.NewSource(statusCmd, "true")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := source.PollWorkflow(ctx, "wf-1", "/runs/wf-1")
	if err == nil {
		t.Fatal("expected error for timed out command")
	}
	if !status.IsTransient(err) {
		t.Errorf("expected transient, got: %v", err)
	}
}

func TestPollWorkflowDecodesPayload(t *testing.T) {
	statusCmd := writeScript(t, "pegasus-status", `cat <<'PAYLOAD'
`+statusPayload+`
PAYLOAD`)
	source := pegasus.NewSource(statusCmd, "true")

	snapshot, err := source.PollWorkflow(context.Background(), "wf-1", "/runs/wf-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot.ID != "wf-1" {
		t.Errorf("expected id wf-1, got %q", snapshot.ID)
	}
	if snapshot.State != status.StateRunning {
		t.Errorf("expected Running, got %s", snapshot.State)
	}
	if snapshot.PercentDone != 42.5 {
		t.Errorf("expected 42.5 percent, got %v", snapshot.PercentDone)
	}
	if len(snapshot.Anomalies) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(snapshot.Anomalies))
	}
	if snapshot.Anomalies[0].HeldReason != "Transfer input files failure" {
		t.Errorf("unexpected hold reason: %q", snapshot.Anomalies[0].HeldReason)
	}
}

func TestPollAllDecodesPayload(t *testing.T) {
	statusCmd := writeScript(t, "pegasus-status", `cat <<'PAYLOAD'
`+statusPayload+`
PAYLOAD`)
	source := pegasus.NewSource(statusCmd, "true")

	snapshots, err := source.PollAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].ID != "wf-1" {
		t.Errorf("expected id wf-1, got %q", snapshots[0].ID)
	}
	if snapshots[0].Directory != "/runs/wf-1" {
		t.Errorf("expected directory /runs/wf-1, got %q", snapshots[0].Directory)
	}
}

func TestTerminateSuccess(t *testing.T) {
	source := pegasus.NewSource("true", "true")

	if err := source.Terminate(context.Background(), "/runs/wf-1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTerminateFailure(t *testing.T) {
	removeCmd := writeScript(t, "pegasus-remove", `echo "remove failed" >&2; exit 1`)
	source := pegasus.NewSource("true", removeCmd)

	if err := source.Terminate(context.Background(), "/runs/wf-1"); err == nil {
		t.Error("expected error for failing remove command")
	}
}

package remedy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/example/warden/internal/adapters/remedy"
	"github.com/example/warden/internal/core/status"
	"github.com/example/warden/internal/ports/secondary"
)

func testRequest() secondary.RemediationRequest {
	return secondary.RemediationRequest{
		WorkflowID: "wf-1",
		Directory:  "/runs/wf-1",
		Anomalies: []status.TaskAnomaly{
			{TaskID: "stage_in_1", HeldReason: "Transfer input files failure", Site: "condorpool"},
		},
	}
}

func TestRemediateAccepted(t *testing.T) {
	var got secondary.RemediationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected authorization header: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remedy.NewClient(server.URL, "test-key", 5*time.Second)
	outcome, err := client.Remediate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != secondary.RemediationAccepted {
		t.Errorf("expected accepted, got %s", outcome)
	}
	if got.WorkflowID != "wf-1" {
		t.Errorf("expected workflow_id wf-1, got %q", got.WorkflowID)
	}
	if len(got.Anomalies) != 1 {
		t.Errorf("expected 1 held task in payload, got %d", len(got.Anomalies))
	}
}

func TestRemediateRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := remedy.NewClient(server.URL, "", 5*time.Second)
	outcome, err := client.Remediate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != secondary.RemediationRejected {
		t.Errorf("expected rejected, got %s", outcome)
	}
}

func TestRemediateServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := remedy.NewClient(server.URL, "", 5*time.Second)
	outcome, err := client.Remediate(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for server failure")
	}
	if outcome != secondary.RemediationUnavailable {
		t.Errorf("expected unavailable, got %s", outcome)
	}
	// Any HTTP response ends the retry loop: the collaborator saw the request.
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 call, got %d", n)
	}
}

func TestRemediateRetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			// Kill the first connection without a response.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Fatal("server does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				t.Fatalf("hijack failed: %v", err)
			}
			conn.Close()
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := remedy.NewClient(server.URL, "", 10*time.Second)
	outcome, err := client.Remediate(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != secondary.RemediationAccepted {
		t.Errorf("expected accepted after retry, got %s", outcome)
	}
	if n := calls.Load(); n < 2 {
		t.Errorf("expected at least 2 calls, got %d", n)
	}
}

func TestRemediateUnconfigured(t *testing.T) {
	client := remedy.NewClient("", "", time.Second)
	outcome, err := client.Remediate(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for unconfigured endpoint")
	}
	if outcome != secondary.RemediationUnavailable {
		t.Errorf("expected unavailable, got %s", outcome)
	}
}

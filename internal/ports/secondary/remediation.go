package secondary

import (
	"context"

	"github.com/example/warden/internal/core/status"
)

// RemediationOutcome is the remediation collaborator's verdict on a handoff.
type RemediationOutcome string

const (
	RemediationAccepted    RemediationOutcome = "accepted"
	RemediationRejected    RemediationOutcome = "rejected"
	RemediationUnavailable RemediationOutcome = "unavailable"
)

// RemediationRequest hands an escalated workflow to the remediation
// collaborator, together with the anomaly snapshot that triggered escalation
// so the collaborator needs no second poll.
type RemediationRequest struct {
	WorkflowID string               `json:"workflow_id"`
	Directory  string               `json:"directory"`
	Anomalies  []status.TaskAnomaly `json:"held_tasks"`
}

// RemediationClient defines the secondary port for the external remediation
// collaborator. It is invoked at most once per workflow; its outcome is
// logged and never re-arms supervision.
type RemediationClient interface {
	Remediate(ctx context.Context, req RemediationRequest) (RemediationOutcome, error)
}

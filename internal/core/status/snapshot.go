// Package status defines the normalized workflow status model produced at the
// boundary with the external batch system. Every downstream component works
// over these shapes instead of the source's raw JSON payloads.
package status

// AggregateState is the high-level state of a workflow as reported by the
// status source. Held tasks are a separate anomaly signal layered on top of
// this classification, never a substitute for it.
type AggregateState string

const (
	StateUnknown AggregateState = "Unknown"
	StateRunning AggregateState = "Running"
	StateSuccess AggregateState = "Success"
	StateFailure AggregateState = "Failure"
)

// Terminal reports whether the state ends supervision of a workflow.
func (s AggregateState) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// ParseState maps the source's state field onto an AggregateState.
// Anything unrecognized degrades to Unknown.
func ParseState(raw string) AggregateState {
	switch raw {
	case "Success":
		return StateSuccess
	case "Failure", "Failed":
		return StateFailure
	case "Running", "In Progress":
		return StateRunning
	default:
		return StateUnknown
	}
}

// TaskAnomaly describes one sub-task in a held condition at poll time.
// Immutable once captured; each poll produces a fresh set.
type TaskAnomaly struct {
	TaskID       string `json:"task_id"`
	HeldReason   string `json:"held_reason"`
	Site         string `json:"site"`
	Command      string `json:"command"`
	Priority     *int   `json:"priority,omitempty"`
	PlatformInfo string `json:"platform_info,omitempty"`
}

// JobTotals carries the source's aggregate job counts for a poll.
type JobTotals struct {
	Total     int
	Succeeded int
	Failed    int
}

// WorkflowSnapshot is the normalized result of one status poll. It is derived
// fresh every poll and never persisted as-is.
type WorkflowSnapshot struct {
	ID          string
	Directory   string
	State       AggregateState
	PercentDone float64
	Totals      JobTotals
	Anomalies   []TaskAnomaly
}

package status

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// defaultHeldReason stands in when the source omits the hold reason.
const defaultHeldReason = "No reason provided"

// Raw payload shapes emitted by the status source's JSON mode. Fields absent
// from a payload decode to their zero values and degrade to Unknown/0/empty
// in the normalized snapshot.
type rawPayload struct {
	Dags       map[string]rawDag      `json:"dags"`
	CondorJobs map[string]rawWorkflow `json:"condor_jobs"`
	Totals     rawTotals              `json:"totals"`
}

type rawDag struct {
	State       string  `json:"state"`
	PercentDone float64 `json:"percent_done"`
}

type rawTotals struct {
	Total       int     `json:"total"`
	Succeeded   int     `json:"succeeded"`
	Failed      int     `json:"failed"`
	PercentDone float64 `json:"percent_done"`
}

type rawWorkflow struct {
	DagName string   `json:"DAG_NAME"`
	Jobs    []rawJob `json:"DAG_CONDOR_JOBS"`
}

type rawJob struct {
	DagJobID       string `json:"pegasus_wf_dag_job_id"`
	StatusName     string `json:"JobStatusName"`
	HoldReason     string `json:"HoldReason"`
	Site           string `json:"pegasus_site"`
	Command        string `json:"Cmd"`
	Priority       *int   `json:"JobPrio"`
	CondorPlatform string `json:"CondorPlatform"`
	CondorVersion  string `json:"CondorVersion"`
	Directory      string `json:"Iwd"`
}

func decode(data []byte) (*rawPayload, error) {
	var payload rawPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode status payload: %w", err)
	}
	return &payload, nil
}

// NormalizeWorkflow converts a single-workflow status payload into a
// snapshot. The caller supplies the workflow id and directory it polled for;
// the payload's dags.root entry carries the aggregate classification.
func NormalizeWorkflow(data []byte, id, directory string) (*WorkflowSnapshot, error) {
	payload, err := decode(data)
	if err != nil {
		return nil, err
	}

	snapshot := &WorkflowSnapshot{
		ID:          id,
		Directory:   directory,
		State:       StateUnknown,
		Totals:      normalizeTotals(payload.Totals),
		PercentDone: clampPercent(payload.Totals.PercentDone),
	}

	if root, ok := payload.Dags["root"]; ok {
		snapshot.State = ParseState(root.State)
		snapshot.PercentDone = clampPercent(root.PercentDone)
	}

	for _, workflow := range payload.CondorJobs {
		snapshot.Anomalies = append(snapshot.Anomalies, heldAnomalies(workflow.Jobs)...)
	}

	return snapshot, nil
}

// NormalizeAll converts an unfiltered status payload into one snapshot per
// reported workflow. The per-workflow directory is taken from the first job's
// working directory; the aggregate classification is derived from the
// payload's totals since the source reports only one totals block.
func NormalizeAll(data []byte) ([]WorkflowSnapshot, error) {
	payload, err := decode(data)
	if err != nil {
		return nil, err
	}

	totals := normalizeTotals(payload.Totals)
	state := stateFromTotals(payload.Totals)
	percent := clampPercent(payload.Totals.PercentDone)

	snapshots := make([]WorkflowSnapshot, 0, len(payload.CondorJobs))
	for id, workflow := range payload.CondorJobs {
		snapshot := WorkflowSnapshot{
			ID:          id,
			State:       state,
			PercentDone: percent,
			Totals:      totals,
			Anomalies:   heldAnomalies(workflow.Jobs),
		}
		for _, job := range workflow.Jobs {
			if job.Directory != "" {
				snapshot.Directory = job.Directory
				break
			}
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func heldAnomalies(jobs []rawJob) []TaskAnomaly {
	var anomalies []TaskAnomaly
	for _, job := range jobs {
		if job.StatusName != "Held" {
			continue
		}
		reason := job.HoldReason
		if reason == "" {
			reason = defaultHeldReason
		}
		anomalies = append(anomalies, TaskAnomaly{
			TaskID:       job.DagJobID,
			HeldReason:   reason,
			Site:         job.Site,
			Command:      job.Command,
			Priority:     job.Priority,
			PlatformInfo: platformInfo(job.CondorPlatform, job.CondorVersion),
		})
	}
	return anomalies
}

func platformInfo(platform, version string) string {
	switch {
	case platform != "" && version != "":
		return platform + "; " + version
	case platform != "":
		return platform
	default:
		return version
	}
}

func normalizeTotals(raw rawTotals) JobTotals {
	return JobTotals{
		Total:     raw.Total,
		Succeeded: raw.Succeeded,
		Failed:    raw.Failed,
	}
}

// stateFromTotals derives an aggregate classification for the unfiltered
// scope, where the source exposes no per-workflow state field.
func stateFromTotals(totals rawTotals) AggregateState {
	switch {
	case totals.Failed > 0:
		return StateFailure
	case totals.Total > 0 && totals.PercentDone >= 100.0:
		return StateSuccess
	case totals.Total > 0:
		return StateRunning
	default:
		return StateUnknown
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollsTotal counts per-workflow status polls by result
	// (ok, transient, unavailable).
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_polls_total",
		Help: "Per-workflow status polls by result.",
	}, []string{"result"})

	// AnomalousPollsTotal counts polls that observed at least one held task.
	AnomalousPollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warden_anomalous_polls_total",
		Help: "Polls that observed at least one held task.",
	})

	// EscalationsTotal counts workflows that exhausted the held-poll budget.
	EscalationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warden_escalations_total",
		Help: "Workflows escalated after exhausting the held-poll budget.",
	})

	// RemediationsTotal counts remediation handoffs by outcome
	// (accepted, rejected, unavailable).
	RemediationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_remediations_total",
		Help: "Remediation handoffs by outcome.",
	}, []string{"outcome"})

	// WatchedWorkflows tracks the number of currently registered workflows.
	WatchedWorkflows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "warden_watched_workflows",
		Help: "Number of currently registered workflows.",
	})
)

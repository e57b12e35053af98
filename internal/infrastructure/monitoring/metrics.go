// Package monitoring holds business-level Prometheus metrics. HTTP metrics
// live in the API middleware; these count domain events.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EligibilityReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eligibility_reports_total",
		Help: "Total number of eligibility reports computed.",
	})

	SimulationsRun = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simulations_run_total",
		Help: "Total number of what-if simulations run.",
	})

	AgentCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_completions_total",
		Help: "Total number of specialist agent completions.",
	}, []string{"agent", "outcome"})

	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_created_total",
		Help: "Total number of alerts created.",
	}, []string{"type"})

	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbound_messages_total",
		Help: "Total number of outbound WhatsApp messages by result.",
	}, []string{"result"})
)

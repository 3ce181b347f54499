package lookup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Flow labels.
const (
	flowDevice       = "device"
	flowSubscription = "subscription"
)

// Run outcome labels.
const (
	outcomeDone      = "done"
	outcomeAuthError = "auth_error"
	outcomeCancelled = "cancelled"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glp_lookup_runs_total",
		Help: "Lookup runs by flow and outcome",
	}, []string{"flow", "outcome"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glp_lookup_run_duration_seconds",
		Help:    "Lookup run duration in seconds by flow",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"flow"})

	unitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glp_lookup_units_total",
		Help: "Device batches and subscription keys fetched by flow and transport status",
	}, []string{"flow", "status"})

	identifiersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glp_lookup_identifiers_total",
		Help: "Identifiers classified by flow and result",
	}, []string{"flow", "result"})
)

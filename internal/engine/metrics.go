package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sirsim_runs_total",
			Help: "Total number of runs finished, by engine and final status.",
		},
		[]string{"engine", "status"},
	)

	activeRuns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sirsim_active_runs",
			Help: "Number of runs currently being simulated.",
		},
	)

	simulatedDaysTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sirsim_simulated_days_total",
			Help: "Total number of days advanced across all runs.",
		},
		[]string{"engine"},
	)

	batchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sirsim_batch_duration_seconds",
			Help:    "Time spent advancing the engine for one batch, in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"engine"},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(activeRuns)
	prometheus.MustRegister(simulatedDaysTotal)
	prometheus.MustRegister(batchDuration)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playground_runs_total",
			Help: "Total number of snippet runs",
		},
		[]string{"dialect", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playground_run_duration_ms",
			Help:    "Run duration in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 1500, 3000},
		},
		[]string{"dialect", "phase"}, // phase: "transpile", "total"
	)

	ActiveRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playground_active_runs",
			Help: "Number of runs currently evaluating",
		},
	)

	TranspilerAcquisitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playground_transpiler_acquisitions_total",
			Help: "Transpiler acquisition attempts by backend and result",
		},
		[]string{"backend", "result"},
	)

	OutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "playground_output_bytes",
			Help:    "Bytes printed by successful runs",
			Buckets: []float64{0, 64, 256, 1024, 4096, 16384, 65536, 1048576},
		},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "playground_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiter",
		},
	)
)

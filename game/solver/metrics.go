package solver

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	// solveTotal counts solver runs by outcome
	// Labels: "solved", "unsolvable", "budget_exhausted", "canceled"
	solveTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stromrallye_solver_runs_total",
		Help: "Total solver runs by outcome",
	}, []string{"outcome"})

	solveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stromrallye_solver_duration_seconds",
		Help:    "Solver run duration",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10, 60},
	})

	nodesExpanded = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stromrallye_solver_nodes_expanded",
		Help:    "Workers popped from the queue per solver run",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})

	graphBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stromrallye_solver_graph_build_seconds",
		Help:    "Time spent building the path graph and tour",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
	})
)

var (
	tracerOnce   sync.Once
	solverTracer trace.Tracer
)

// getTracer returns the OTel tracer, initializing it lazily if needed.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		solverTracer = otel.Tracer("github.com/wricardo/mcp-training/stromrallye/game/solver")
	})
	return solverTracer
}

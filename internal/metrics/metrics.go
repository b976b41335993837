package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/curve"
)

// Outcome labels for the solves counter.
const (
	OutcomeConverged   = "converged"
	OutcomeFlagged     = "flagged"
	OutcomeComposition = "invalid_composition"
	OutcomeNoConverge  = "convergence_failure"
	OutcomeOther       = "error"
)

// Metrics provides observability for bubble-point solves and curve sweeps.
type Metrics struct {
	Solves        *prometheus.CounterVec
	Iterations    prometheus.Histogram
	CurveDuration prometheus.Histogram
	CurvePoints   prometheus.Histogram
}

// New creates a Metrics instance registered on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Solves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bubblepoint_solves_total",
			Help: "Bubble-point solves by outcome",
		}, []string{"outcome"}),
		Iterations: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bubblepoint_solve_iterations",
			Help:    "Root-finder iterations per converged solve",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34, 55, 100},
		}),
		CurveDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bubblepoint_curve_duration_seconds",
			Help:    "Duration of a full equilibrium curve sweep",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		CurvePoints: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bubblepoint_curve_points",
			Help:    "Number of compositions per curve sweep",
			Buckets: prometheus.ExponentialBuckets(2, 2, 10),
		}),
	}
}

// ObserveSolve records the outcome of a single solve.
func (m *Metrics) ObserveSolve(p bubble.Point, err error) {
	if err != nil {
		m.Solves.WithLabelValues(outcome(err)).Inc()
		return
	}
	m.Solves.WithLabelValues(OutcomeConverged).Inc()
	m.Iterations.Observe(float64(p.Iterations))
}

// ObserveCurve records a finished sweep. Call with time.Now() taken before
// the sweep started.
func (m *Metrics) ObserveCurve(start time.Time, c *curve.Curve) {
	m.CurveDuration.Observe(time.Since(start).Seconds())
	if c == nil {
		return
	}
	m.CurvePoints.Observe(float64(len(c.Entries)))
	for _, e := range c.Entries {
		if e.Flagged {
			m.Solves.WithLabelValues(OutcomeFlagged).Inc()
			continue
		}
		m.ObserveSolve(e.Point, nil)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, bubble.ErrInvalidComposition):
		return OutcomeComposition
	case errors.Is(err, bubble.ErrConvergenceFailure):
		return OutcomeNoConverge
	default:
		return OutcomeOther
	}
}

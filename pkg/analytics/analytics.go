package analytics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/curve"
	"github.com/ChicagoDave/bubblepoint/pkg/spec"
	"github.com/ChicagoDave/bubblepoint/pkg/validation"
)

// ResolvedParameters holds the computed values for one project.
type ResolvedParameters struct {
	SystemName     string           `json:"system_name"`
	PressureMMHg   float64          `json:"pressure_mmhg"`
	Components     [2]ComponentData `json:"components"`
	MoreVolatile   string           `json:"more_volatile"`
	BoilingSpreadC float64          `json:"boiling_spread_c"`
	Volatility     Volatility       `json:"relative_volatility"`
	Summary        CurveSummary     `json:"summary"`

	Curve *curve.Curve `json:"curve"`
}

// Resolve builds the system described by s, sweeps the bubble-point solver
// over the configured compositions, and runs analytical validation on the
// result. Parameters are nil when the curve could not be produced; the
// report then says why.
func Resolve(s *spec.ProjectSpec) (*ResolvedParameters, *validation.Report) {
	report := validation.NewReport()

	sys, err := s.BuildSystem()
	if err != nil {
		report.AddError(validation.Result{
			Level:    validation.LevelAnalytical,
			Message:  fmt.Sprintf("cannot build system: %v", err),
			SpecPath: "system",
		})
		return nil, report
	}

	t1, t2, err := sys.BoilingPoints()
	if err != nil {
		report.AddError(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("pure-component boiling point undefined: %v", err),
			SpecPath:    "system.pressure",
			ActualValue: sys.Pressure,
			Suggestions: []string{"Lower the system pressure below 10^A mmHg of both components"},
		})
		return nil, report
	}

	xs, err := s.Fractions()
	if err != nil {
		report.AddError(validation.Result{Level: validation.LevelAnalytical, Message: err.Error(), SpecPath: "sweep"})
		return nil, report
	}
	opts, err := s.CurveOptions()
	if err != nil {
		report.AddError(validation.Result{Level: validation.LevelAnalytical, Message: err.Error(), SpecPath: "sweep"})
		return nil, report
	}

	c, err := curve.Generate(xs, sys, opts...)
	if err != nil {
		report.AddError(validation.Result{
			Level:    validation.LevelSolver,
			Message:  err.Error(),
			SpecPath: "sweep",
			Suggestions: []string{
				"Move sweep.initial_guess between the pure-component boiling points",
				"Raise solver.max_iterations or use failure_policy flag to keep the rest of the curve",
			},
		})
		return nil, report
	}

	params := &ResolvedParameters{
		SystemName:   s.System.Name,
		PressureMMHg: sys.Pressure,
		Components: [2]ComponentData{
			{Name: sys.First.Name, Coefficients: sys.First.Coefficients, BoilingPoint: t1, Range: sys.First.Range},
			{Name: sys.Second.Name, Coefficients: sys.Second.Coefficients, BoilingPoint: t2, Range: sys.Second.Range},
		},
		BoilingSpreadC: math.Abs(t1 - t2),
		Volatility:     relativeVolatility(sys, t1, t2),
		Summary:        summarize(c),
		Curve:          c,
	}
	params.MoreVolatile = sys.First.Name
	if t2 < t1 {
		params.MoreVolatile = sys.Second.Name
	}

	validateAnalytical(s, params, report)

	return params, report
}

func relativeVolatility(sys bubble.System, t1, t2 float64) Volatility {
	alpha := func(t float64) float64 {
		return sys.First.Coefficients.Pressure(t) / sys.Second.Coefficients.Pressure(t)
	}
	a1, a2 := alpha(t1), alpha(t2)
	return Volatility{
		AtFirstBoiling:  a1,
		AtSecondBoiling: a2,
		Geometric:       math.Sqrt(a1 * a2),
	}
}

func summarize(c *curve.Curve) CurveSummary {
	sum := CurveSummary{
		Points:     len(c.Entries),
		Flagged:    c.Flagged(),
		Iterations: c.Iterations(),
	}
	pts := c.Solved()
	sum.Solved = len(pts)
	if len(pts) == 0 {
		return sum
	}

	ts := c.T()
	sum.TMin, sum.TMax = floats.Min(ts), floats.Max(ts)

	residuals := make([]float64, len(pts))
	enrichment := make([]float64, len(pts))
	for i, p := range pts {
		residuals[i] = math.Abs(p.Residual)
		enrichment[i] = math.Abs(p.Y - p.X)
	}
	sum.MaxResidual = floats.Max(residuals)
	i := floats.MaxIdx(enrichment)
	sum.MaxEnrichment, sum.MaxEnrichmentAt = enrichment[i], pts[i].X
	return sum
}

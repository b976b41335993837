package spec

import (
	"fmt"
	"strings"

	"github.com/ChicagoDave/bubblepoint/pkg/antoine"
	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/curve"
)

// mmHg per unit of each accepted pressure unit.
var pressureUnits = map[string]float64{
	"mmhg": 1,
	"torr": 1,
	"kpa":  7.500616827,
	"pa":   0.007500616827,
	"bar":  750.0616827,
	"atm":  760,
	"psi":  51.71493257,
}

// PressureMMHg converts the configured pressure to mmHg. An empty unit means
// mmHg.
func (d SystemDef) PressureMMHg() (float64, error) {
	unit := strings.ToLower(strings.TrimSpace(d.PressureUnit))
	if unit == "" {
		unit = "mmhg"
	}
	factor, ok := pressureUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown pressure unit %q", d.PressureUnit)
	}
	return d.Pressure * factor, nil
}

// Component resolves the definition to a correlation.
func (c ComponentDef) Component() (antoine.Component, error) {
	var comp antoine.Component
	if c.Ref != "" {
		lib, err := antoine.Lookup(c.Ref)
		if err != nil {
			return antoine.Component{}, err
		}
		comp = lib
	}
	if c.Antoine != nil {
		comp.Coefficients = *c.Antoine
	} else if c.Ref == "" {
		return antoine.Component{}, fmt.Errorf("component %q needs either ref or antoine coefficients", c.Name)
	}
	if c.Name != "" {
		comp.Name = c.Name
	}
	if c.ValidRange != nil {
		r := *c.ValidRange
		comp.Range = &r
	}
	return comp, nil
}

// BuildSystem resolves the spec into a validated solver system.
func (s *ProjectSpec) BuildSystem() (bubble.System, error) {
	if n := len(s.System.Components); n != 2 {
		return bubble.System{}, fmt.Errorf("system needs exactly 2 components (got %d)", n)
	}
	first, err := s.System.Components[0].Component()
	if err != nil {
		return bubble.System{}, fmt.Errorf("system.components[0]: %w", err)
	}
	second, err := s.System.Components[1].Component()
	if err != nil {
		return bubble.System{}, fmt.Errorf("system.components[1]: %w", err)
	}
	p, err := s.System.PressureMMHg()
	if err != nil {
		return bubble.System{}, err
	}
	return bubble.NewSystem(first, second, p)
}

// Fractions returns the explicit sweep fractions, or a uniform grid of
// sweep.points (DefaultPoints when unset).
func (s *ProjectSpec) Fractions() ([]float64, error) {
	if len(s.Sweep.Fractions) > 0 {
		return append([]float64(nil), s.Sweep.Fractions...), nil
	}
	n := s.Sweep.Points
	if n == 0 {
		n = DefaultPoints
	}
	return curve.Uniform(n)
}

// SolverSettings returns bubble.DefaultSolver with the spec's overrides.
func (s *ProjectSpec) SolverSettings() bubble.Solver {
	solver := bubble.DefaultSolver
	if s.Solver.Tolerance > 0 {
		solver.Tolerance = s.Solver.Tolerance
	}
	if s.Solver.MaxIterations > 0 {
		solver.MaxIterations = s.Solver.MaxIterations
	}
	return solver
}

// CurveOptions translates the sweep section into generator options.
func (s *ProjectSpec) CurveOptions() ([]curve.Option, error) {
	mode, err := curve.ParseGuessMode(s.Sweep.GuessMode)
	if err != nil {
		return nil, err
	}
	policy, err := curve.ParseFailurePolicy(s.Sweep.FailurePolicy)
	if err != nil {
		return nil, err
	}
	opts := []curve.Option{
		curve.WithSolver(s.SolverSettings()),
		curve.WithGuessMode(mode),
		curve.WithFailurePolicy(policy),
	}
	if s.Sweep.InitialGuess != nil {
		opts = append(opts, curve.WithInitialGuess(*s.Sweep.InitialGuess))
	}
	if s.Sweep.Parallelism > 1 {
		opts = append(opts, curve.WithParallelism(s.Sweep.Parallelism))
	}
	return opts, nil
}

package validation

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChicagoDave/bubblepoint/pkg/antoine"
	"github.com/ChicagoDave/bubblepoint/pkg/curve"
	"github.com/ChicagoDave/bubblepoint/pkg/spec"
)

// ValidateSchema performs Level 1 (schema) validation on a parsed ProjectSpec.
// It checks structural correctness before any computation.
func ValidateSchema(s *spec.ProjectSpec) *Report {
	r := NewReport()

	validateVersion(s, r)
	validatePressure(s, r)
	comps := validateComponents(s, r)
	validateFractions(s, r)
	validateGuess(s, comps, r)
	validateSweepModes(s, r)
	validateSolver(s, r)

	return r
}

func validateVersion(s *spec.ProjectSpec, r *Report) {
	if s.SpecVersion == "" {
		r.AddWarning(Result{
			Level:    LevelSchema,
			Message:  "spec_version is not set",
			SpecPath: "spec_version",
			Expected: "0.1.0",
		})
	}
}

func validatePressure(s *spec.ProjectSpec, r *Report) {
	p := s.System.Pressure
	if !(p > 0) || math.IsInf(p, 0) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "system pressure must be positive and finite",
			SpecPath:    "system.pressure",
			ActualValue: p,
			Expected:    "> 0",
		})
	}
	if _, err := s.System.PressureMMHg(); err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     err.Error(),
			SpecPath:    "system.pressure_unit",
			ActualValue: s.System.PressureUnit,
			Expected:    "mmHg, torr, Pa, kPa, bar, atm or psi",
		})
	}
}

// validateComponents returns the resolvable components, indexed like the spec.
func validateComponents(s *spec.ProjectSpec, r *Report) []*antoine.Component {
	defs := s.System.Components
	if len(defs) != 2 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     fmt.Sprintf("system.components must list exactly 2 components (got %d)", len(defs)),
			SpecPath:    "system.components",
			ActualValue: len(defs),
			Expected:    "2",
			Suggestions: []string{"Mixtures of three or more components are not supported"},
		})
	}

	comps := make([]*antoine.Component, len(defs))
	for i, d := range defs {
		path := fmt.Sprintf("system.components[%d]", i)
		c, err := d.Component()
		if err != nil {
			res := Result{
				Level:    LevelSchema,
				Message:  err.Error(),
				SpecPath: path,
			}
			if d.Ref != "" {
				res.SpecPath = path + ".ref"
				res.ActualValue = d.Ref
				res.Suggestions = []string{fmt.Sprintf("Known components: %v", antoine.Names())}
			}
			r.AddError(res)
			continue
		}
		if err := c.Coefficients.Validate(); err != nil {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): %v", path, d.Label(), err),
				SpecPath:    path + ".antoine",
				ActualValue: c.Coefficients,
				Expected:    "finite A, B, C with B > 0",
			})
			continue
		}
		if c.Range != nil && c.Range.TMin >= c.Range.TMax {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("%s (%s): t_min (%g) must be less than t_max (%g)", path, d.Label(), c.Range.TMin, c.Range.TMax),
				SpecPath:    path + ".valid_range",
				ActualValue: fmt.Sprintf("%g-%g", c.Range.TMin, c.Range.TMax),
			})
		}
		comps[i] = &c
	}

	if len(comps) == 2 && comps[0] != nil && comps[1] != nil && comps[0].Coefficients == comps[1].Coefficients {
		r.AddWarning(Result{
			Level:        LevelSchema,
			Message:      "both components use identical coefficients; the curve degenerates to y = x at constant T",
			SpecPath:     "system.components[1]",
			ConflictWith: "system.components[0]",
		})
	}
	return comps
}

func validateFractions(s *spec.ProjectSpec, r *Report) {
	xs := s.Sweep.Fractions
	if len(xs) == 0 {
		if s.Sweep.Points != 0 && s.Sweep.Points < 2 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("sweep.points must be at least 2 (got %d)", s.Sweep.Points),
				SpecPath:    "sweep.points",
				ActualValue: s.Sweep.Points,
				Expected:    ">= 2",
			})
		}
		return
	}

	for i, x := range xs {
		if math.IsNaN(x) || x < 0 || x > 1 {
			r.AddError(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("sweep.fractions[%d] = %g is outside [0, 1]", i, x),
				SpecPath:    fmt.Sprintf("sweep.fractions[%d]", i),
				ActualValue: x,
				Expected:    "0 <= x <= 1",
			})
		}
	}
	if !sort.Float64sAreSorted(xs) {
		r.AddWarning(Result{
			Level:    LevelSchema,
			Message:  "sweep.fractions are not in increasing order; warm starts and interpolation assume they are",
			SpecPath: "sweep.fractions",
		})
	}
}

func validateGuess(s *spec.ProjectSpec, comps []*antoine.Component, r *Report) {
	g := s.Sweep.InitialGuess
	if g == nil {
		return
	}
	if math.IsNaN(*g) || math.IsInf(*g, 0) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "sweep.initial_guess must be finite",
			SpecPath:    "sweep.initial_guess",
			ActualValue: *g,
		})
		return
	}
	for i, c := range comps {
		if c == nil || c.Coefficients.InDomain(*g) {
			continue
		}
		r.AddError(Result{
			Level:        LevelSchema,
			Message:      fmt.Sprintf("initial guess %g °C is at or below the %s correlation singularity (C + T <= 0)", *g, c.Name),
			SpecPath:     "sweep.initial_guess",
			ActualValue:  *g,
			Expected:     fmt.Sprintf("> %g", c.Coefficients.Domain()),
			ConflictWith: fmt.Sprintf("system.components[%d].antoine.c", i),
		})
	}
}

func validateSweepModes(s *spec.ProjectSpec, r *Report) {
	mode, err := curve.ParseGuessMode(s.Sweep.GuessMode)
	if err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     err.Error(),
			SpecPath:    "sweep.guess_mode",
			ActualValue: s.Sweep.GuessMode,
		})
	} else if mode == curve.GuessFixed && s.Sweep.InitialGuess == nil {
		r.AddError(Result{
			Level:    LevelSchema,
			Message:  "guess_mode fixed requires sweep.initial_guess",
			SpecPath: "sweep.initial_guess",
		})
	}
	if _, err := curve.ParseFailurePolicy(s.Sweep.FailurePolicy); err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     err.Error(),
			SpecPath:    "sweep.failure_policy",
			ActualValue: s.Sweep.FailurePolicy,
		})
	}
	if s.Sweep.Parallelism < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "sweep.parallelism must not be negative",
			SpecPath:    "sweep.parallelism",
			ActualValue: s.Sweep.Parallelism,
			Expected:    ">= 0",
		})
	}
	if s.Sweep.Parallelism > 1 && (err == nil && mode == curve.GuessWarm) {
		r.AddInfo(Result{
			Level:    LevelSchema,
			Message:  "sweep.parallelism is ignored with warm starts; use guess_mode interpolated to solve points concurrently",
			SpecPath: "sweep.parallelism",
		})
	}
}

func validateSolver(s *spec.ProjectSpec, r *Report) {
	if s.Solver.Tolerance < 0 || math.IsNaN(s.Solver.Tolerance) || math.IsInf(s.Solver.Tolerance, 0) {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "solver.tolerance must be finite and not negative",
			SpecPath:    "solver.tolerance",
			ActualValue: s.Solver.Tolerance,
			Expected:    "> 0 (0 keeps the default 1e-6 mmHg)",
		})
	}
	if s.Solver.MaxIterations < 0 {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     "solver.max_iterations must not be negative",
			SpecPath:    "solver.max_iterations",
			ActualValue: s.Solver.MaxIterations,
			Expected:    "> 0 (0 keeps the default 100)",
		})
	}
}

package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/spec"
	"github.com/ChicagoDave/bubblepoint/pkg/validation"
)

// roundoffSlack absorbs floating-point noise in temperatures, in °C.
const roundoffSlack = 1e-9

// validateAnalytical runs analytical validation checks on a resolved curve.
func validateAnalytical(s *spec.ProjectSpec, p *ResolvedParameters, report *validation.Report) {
	tol := s.SolverSettings().Tolerance

	report.RecordCurve(p.Summary.Points, p.Summary.Solved, p.Summary.Flagged)

	validateFlagged(p, report)
	validateResiduals(p, tol, report)
	validateVaporRange(p, report)
	validateEnvelope(p, tol, report)
	validateMonotonic(p, tol, report)
	validateFittedRanges(p, report)
	validateVolatility(p, report)
}

func validateFlagged(p *ResolvedParameters, report *validation.Report) {
	for i, e := range p.Curve.Entries {
		if !e.Flagged {
			continue
		}
		report.AddWarning(validation.Result{
			Level:       validation.LevelSolver,
			Message:     fmt.Sprintf("point %d (x=%g) was not solved: %s", i, e.X, e.Error),
			SpecPath:    "sweep",
			Point:       &validation.PointRef{X: e.X},
			ActualValue: e.X,
		})
	}
}

func validateResiduals(p *ResolvedParameters, tol float64, report *validation.Report) {
	for _, pt := range p.Curve.Solved() {
		if math.Abs(pt.Residual) <= tol {
			continue
		}
		report.AddError(validation.Result{
			Level:       validation.LevelSolver,
			Message:     fmt.Sprintf("x=%g: residual %g mmHg exceeds tolerance %g", pt.X, pt.Residual, tol),
			SpecPath:    "solver.tolerance",
			Point:       pointRef(pt),
			ActualValue: pt.Residual,
			Expected:    fmt.Sprintf("|residual| <= %g", tol),
		})
	}
}

// validateVaporRange has no slack: the solver derives y from normalized
// partial pressures, so anything outside [0, 1] is a real fault.
func validateVaporRange(p *ResolvedParameters, report *validation.Report) {
	for _, pt := range p.Curve.Solved() {
		if pt.Y >= 0 && pt.Y <= 1 {
			continue
		}
		report.AddError(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("x=%g: vapor fraction %g is outside [0, 1]; the correlation or the solver is faulty", pt.X, pt.Y),
			SpecPath:    "system.components",
			Point:       pointRef(pt),
			ActualValue: pt.Y,
			Expected:    "0 <= y <= 1",
			Suggestions: []string{"Check the Antoine coefficients and their pressure/temperature units"},
		})
	}
}

// validateEnvelope checks that mixture bubble points lie between the two
// pure-component boiling points, as they must for an ideal mixture. Each
// point is allowed the temperature error its residual tolerance implies.
func validateEnvelope(p *ResolvedParameters, tol float64, report *validation.Report) {
	lo := math.Min(p.Components[0].BoilingPoint, p.Components[1].BoilingPoint)
	hi := math.Max(p.Components[0].BoilingPoint, p.Components[1].BoilingPoint)

	for _, pt := range p.Curve.Solved() {
		slack := temperatureSlack(p, tol, pt)
		if pt.T >= lo-slack && pt.T <= hi+slack {
			continue
		}
		report.AddError(validation.Result{
			Level:        validation.LevelAnalytical,
			Message:      fmt.Sprintf("x=%g: bubble point %.4f °C lies outside the pure-component envelope [%.4f, %.4f]", pt.X, pt.T, lo, hi),
			SpecPath:     "system.components",
			Point:        pointRef(pt),
			ActualValue:  pt.T,
			Expected:     fmt.Sprintf("%.4f-%.4f °C", lo, hi),
			ConflictWith: "ideal mixing (Raoult's Law)",
		})
	}
}

func validateMonotonic(p *ResolvedParameters, tol float64, report *validation.Report) {
	pts := p.Curve.Solved()
	if len(pts) < 3 || !sort.SliceIsSorted(pts, func(i, j int) bool { return pts[i].X < pts[j].X }) {
		return
	}
	falling := p.Components[0].BoilingPoint < p.Components[1].BoilingPoint
	for i := 1; i < len(pts); i++ {
		dT := pts[i].T - pts[i-1].T
		slack := temperatureSlack(p, tol, pts[i-1]) + temperatureSlack(p, tol, pts[i])
		if (falling && dT > slack) || (!falling && dT < -slack) {
			report.AddWarning(validation.Result{
				Level:       validation.LevelAnalytical,
				Message:     fmt.Sprintf("bubble-point curve is not monotonic between x=%g and x=%g", pts[i-1].X, pts[i].X),
				SpecPath:    "system.components",
				Point:       pointRef(pts[i]),
				ActualValue: dT,
			})
			return
		}
	}
}

func validateFittedRanges(p *ResolvedParameters, report *validation.Report) {
	for i, c := range p.Components {
		if c.Range == nil {
			continue
		}
		outside := 0
		for _, pt := range p.Curve.Solved() {
			if !c.Range.Contains(pt.T) {
				outside++
			}
		}
		if outside == 0 {
			continue
		}
		report.AddWarning(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("%d of %d bubble points fall outside the fitted range of %s (%g to %g °C)", outside, p.Summary.Solved, c.Name, c.Range.TMin, c.Range.TMax),
			SpecPath:    fmt.Sprintf("system.components[%d].valid_range", i),
			ActualValue: fmt.Sprintf("%.1f-%.1f", p.Summary.TMin, p.Summary.TMax),
			Suggestions: []string{"Extrapolated saturation pressures may be inaccurate"},
		})
	}
}

func validateVolatility(p *ResolvedParameters, report *validation.Report) {
	a := p.Volatility.Geometric
	if a >= 1 {
		a = 1 / a
	}
	if a > 0.95 {
		report.AddWarning(validation.Result{
			Level:       validation.LevelAnalytical,
			Message:     fmt.Sprintf("relative volatility %.3f is close to 1; the components are hard to separate", p.Volatility.Geometric),
			SpecPath:    "system.components",
			ActualValue: p.Volatility.Geometric,
			Expected:    "outside 0.95-1.05",
		})
	}
	report.AddInfo(validation.Result{
		Level:   validation.LevelAnalytical,
		Message: fmt.Sprintf("%s is the more volatile component (boiling points %.2f / %.2f °C)", p.MoreVolatile, p.Components[0].BoilingPoint, p.Components[1].BoilingPoint),
	})
}

// temperatureSlack converts the residual tolerance into the temperature
// error it allows at pt: tol divided by the mixture's dP/dT there, doubled
// to cover the change in slope between pt.T and the exact root.
func temperatureSlack(p *ResolvedParameters, tol float64, pt bubble.Point) float64 {
	slope := pt.X*p.Components[0].Coefficients.Slope(pt.T) + (1-pt.X)*p.Components[1].Coefficients.Slope(pt.T)
	if !(slope > 0) || math.IsInf(slope, 0) {
		return roundoffSlack
	}
	return 2*tol/slope + roundoffSlack
}

func pointRef(pt bubble.Point) *validation.PointRef {
	return &validation.PointRef{X: pt.X, T: pt.T, Converged: true}
}

package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Level names the stage that raised a finding: schema checks on the project
// file, analytical checks on the resolved curve, or the root-finder itself.
type Level string

const (
	LevelSchema     Level = "schema"
	LevelAnalytical Level = "analytical"
	LevelSolver     Level = "solver"
)

// Severity ranks a finding. Only errors make a project invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// PointRef ties a finding to one composition on the curve. T is zero for
// points that never converged.
type PointRef struct {
	X         float64 `json:"x"`
	T         float64 `json:"t,omitempty"`
	Converged bool    `json:"converged"`
}

// Result is a single validation finding.
type Result struct {
	Level        Level     `json:"level"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	SpecPath     string    `json:"spec_path"`
	Point        *PointRef `json:"point,omitempty"`
	ActualValue  any       `json:"actual_value,omitempty"`
	Expected     string    `json:"expected,omitempty"`
	ConflictWith string    `json:"conflict_with,omitempty"`
	Suggestions  []string  `json:"suggestions,omitempty"`
}

// CurveStats counts how a sweep went. It is nil until a curve is recorded.
type CurveStats struct {
	Points    int `json:"points"`
	Converged int `json:"converged"`
	Flagged   int `json:"flagged"`
}

// Report collects findings for one project. Summary is kept current by
// every mutating method.
type Report struct {
	Valid    bool        `json:"valid"`
	Errors   []Result    `json:"errors"`
	Warnings []Result    `json:"warnings"`
	Info     []Result    `json:"info"`
	Curve    *CurveStats `json:"curve,omitempty"`
	Summary  string      `json:"summary"`
}

// NewReport creates an empty valid report.
func NewReport() *Report {
	r := &Report{
		Valid:    true,
		Errors:   []Result{},
		Warnings: []Result{},
		Info:     []Result{},
	}
	r.summarize()
	return r
}

// AddError records a finding that makes the project invalid.
func (r *Report) AddError(result Result) { r.add(SeverityError, result) }

// AddWarning records a finding that leaves the project valid.
func (r *Report) AddWarning(result Result) { r.add(SeverityWarning, result) }

// AddInfo records a note.
func (r *Report) AddInfo(result Result) { r.add(SeverityInfo, result) }

func (r *Report) add(sev Severity, result Result) {
	result.Severity = sev
	switch sev {
	case SeverityError:
		r.Errors = append(r.Errors, result)
		r.Valid = false
	case SeverityWarning:
		r.Warnings = append(r.Warnings, result)
	default:
		r.Info = append(r.Info, result)
	}
	r.summarize()
}

// RecordCurve stores the outcome of a sweep.
func (r *Report) RecordCurve(points, converged, flagged int) {
	r.Curve = &CurveStats{Points: points, Converged: converged, Flagged: flagged}
	r.summarize()
}

// Merge appends other's findings. Curve stats from other replace ours when
// present, since a later stage has seen the newer sweep.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Info = append(r.Info, other.Info...)
	r.Valid = r.Valid && other.Valid
	if other.Curve != nil {
		c := *other.Curve
		r.Curve = &c
	}
	r.summarize()
}

// AtPoint returns errors and warnings attached to composition x.
func (r *Report) AtPoint(x float64) []Result {
	var out []Result
	for _, list := range [][]Result{r.Errors, r.Warnings} {
		for _, res := range list {
			if res.Point != nil && res.Point.X == x {
				out = append(out, res)
			}
		}
	}
	return out
}

// HasPath reports whether any error was recorded against specPath.
func (r *Report) HasPath(specPath string) bool {
	for _, e := range r.Errors {
		if e.SpecPath == specPath {
			return true
		}
	}
	return false
}

// Err returns nil for a valid report, otherwise one error listing every
// error result.
func (r *Report) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msg := e.Message
		if e.SpecPath != "" {
			msg = e.SpecPath + ": " + msg
		}
		msgs = append(msgs, msg)
	}
	return errors.New("invalid spec: " + strings.Join(msgs, "; "))
}

func (r *Report) summarize() {
	s := fmt.Sprintf("%s, %s, %d info",
		plural(len(r.Errors), "error"), plural(len(r.Warnings), "warning"), len(r.Info))
	if c := r.Curve; c != nil {
		s += fmt.Sprintf("; %d of %d points converged", c.Converged, c.Points)
		if c.Flagged > 0 {
			s += fmt.Sprintf(", %d flagged", c.Flagged)
		}
	}
	r.Summary = s
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChicagoDave/bubblepoint/pkg/analytics"
	"github.com/ChicagoDave/bubblepoint/pkg/antoine"
	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/curve"
	"github.com/ChicagoDave/bubblepoint/pkg/validation"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFE66D"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

func printValidationReport(w io.Writer, r *validation.Report) {
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("ERRORS (%d):", len(r.Errors))))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  [%s] %s\n", e.Level, e.Message)
			if e.SpecPath != "" {
				fmt.Fprintf(w, "    -> %s = %v\n", e.SpecPath, e.ActualValue)
			}
			if e.Expected != "" {
				fmt.Fprintf(w, "    expected: %s\n", e.Expected)
			}
			if e.ConflictWith != "" {
				fmt.Fprintf(w, "    conflicts with: %s\n", e.ConflictWith)
			}
			for _, s := range e.Suggestions {
				fmt.Fprintf(w, "    * %s\n", s)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("WARNINGS (%d):", len(r.Warnings))))
		for _, wr := range r.Warnings {
			fmt.Fprintf(w, "  [%s] %s\n", wr.Level, wr.Message)
			if wr.SpecPath != "" {
				fmt.Fprintf(w, "    -> %s = %v\n", wr.SpecPath, wr.ActualValue)
			}
			if wr.Expected != "" {
				fmt.Fprintf(w, "    expected: %s\n", wr.Expected)
			}
			for _, s := range wr.Suggestions {
				fmt.Fprintf(w, "    * %s\n", s)
			}
		}
		fmt.Fprintln(w)
	}

	if len(r.Info) > 0 {
		fmt.Fprintf(w, "INFO (%d):\n", len(r.Info))
		for _, i := range r.Info {
			fmt.Fprintf(w, "  [%s] %s\n", i.Level, i.Message)
		}
		fmt.Fprintln(w)
	}

	if r.Valid {
		fmt.Fprintln(w, successStyle.Render(fmt.Sprintf("Result: VALID (%s)", r.Summary)))
	} else {
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Result: INVALID (%s)", r.Summary)))
	}
}

func printPoint(w io.Writer, sys bubble.System, p bubble.Point) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Bubble point: %s / %s at %.2f mmHg", sys.First.Name, sys.Second.Name, sys.Pressure)))
	fmt.Fprintf(w, "  x (%s):   %.4f\n", sys.First.Name, p.X)
	fmt.Fprintf(w, "  y (%s):   %.4f\n", sys.First.Name, p.Y)
	fmt.Fprintf(w, "  T:          %.4f °C\n", p.T)
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("  residual %.3g mmHg after %d iterations", p.Residual, p.Iterations)))
}

// printCurveTable renders the sweep. Solved rows that carry errors or
// warnings in r are marked with "*".
func printCurveTable(w io.Writer, p *analytics.ResolvedParameters, r *validation.Report) {
	title := "T-x-y curve"
	if p.SystemName != "" {
		title += ": " + p.SystemName
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	fmt.Fprintf(w, "P = %.2f mmHg, x and y refer to %s\n", p.PressureMMHg, p.Components[0].Name)
	fmt.Fprintf(w, "Boiling points: %s %.2f °C, %s %.2f °C\n",
		p.Components[0].Name, p.Components[0].BoilingPoint,
		p.Components[1].Name, p.Components[1].BoilingPoint)
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%8s %8s %12s %12s %6s", "x", "y", "T (°C)", "residual", "iter")))
	fmt.Fprintf(w, "%8s %8s %12s %12s %6s\n", "--------", "--------", "------------", "------------", "------")
	marked := 0
	for _, e := range p.Curve.Entries {
		if e.Flagged {
			fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%8.4f %8s %12s %12s %6s  %s", e.X, "-", "-", "-", "-", e.Error)))
			continue
		}
		row := fmt.Sprintf("%8.4f %8.4f %12.4f %12.3g %6d", e.X, e.Y, e.T, e.Residual, e.Iterations)
		if r != nil && len(r.AtPoint(e.X)) > 0 {
			fmt.Fprintln(w, warningStyle.Render(row+"  *"))
			marked++
			continue
		}
		fmt.Fprintln(w, row)
	}
	if marked > 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("* %d %s with findings, see below", marked, pluralRows(marked))))
	}

	s := p.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("Summary"))
	fmt.Fprintf(w, "  Points solved:        %d of %d\n", s.Solved, s.Points)
	fmt.Fprintf(w, "  Total iterations:     %d\n", s.Iterations)
	fmt.Fprintf(w, "  Temperature span:     %.2f to %.2f °C\n", s.TMin, s.TMax)
	fmt.Fprintf(w, "  Max |residual|:       %.3g mmHg\n", s.MaxResidual)
	fmt.Fprintf(w, "  Max |y - x|:          %.4f at x = %.4f\n", s.MaxEnrichment, s.MaxEnrichmentAt)
	fmt.Fprintf(w, "  Relative volatility:  %.3f (geometric mean)\n", p.Volatility.Geometric)
}

var csvHeader = []string{"x", "y", "t_c", "residual_mmhg", "iterations", "flagged", "error"}

func writeCurveCSV(w io.Writer, c *curve.Curve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range c.Entries {
		row := []string{formatFloat(e.X), "", "", "", "", strconv.FormatBool(e.Flagged), e.Error}
		if !e.Flagged {
			row[1] = formatFloat(e.Y)
			row[2] = formatFloat(e.T)
			row[3] = formatFloat(e.Residual)
			row[4] = strconv.Itoa(e.Iterations)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func printComponents(w io.Writer) error {
	fmt.Fprintln(w, titleStyle.Render("Built-in components (Antoine, mmHg and °C)"))
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-12s %10s %10s %10s %10s %16s", "Name", "A", "B", "C", "Tb (°C)", "Fitted range")))
	for _, name := range antoine.Names() {
		c, err := antoine.Lookup(name)
		if err != nil {
			return err
		}
		tb := "-"
		if t, err := c.Coefficients.BoilingPoint(760); err == nil {
			tb = fmt.Sprintf("%.2f", t)
		}
		rng := dimStyle.Render("unspecified")
		if c.Range != nil {
			rng = fmt.Sprintf("%g to %g", c.Range.TMin, c.Range.TMax)
		}
		fmt.Fprintf(w, "%-12s %10.5g %10.6g %10.6g %10s %16s\n",
			c.Name, c.Coefficients.A, c.Coefficients.B, c.Coefficients.C, tb, rng)
	}
	return nil
}

func pluralRows(n int) string {
	if n == 1 {
		return "row"
	}
	return "rows"
}

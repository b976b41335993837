package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ChicagoDave/bubblepoint/internal/config"
	"github.com/ChicagoDave/bubblepoint/pkg/analytics"
	"github.com/ChicagoDave/bubblepoint/pkg/spec"
	"github.com/ChicagoDave/bubblepoint/pkg/validation"
)

// app carries what every command needs: process config, a logger and the
// writer for command output.
type app struct {
	cfg config.Server
	log *slog.Logger
	out io.Writer
}

// loadAndValidate loads the spec and runs schema validation.
func loadAndValidate(projectPath string) (*spec.ProjectSpec, *validation.Report, error) {
	s, err := spec.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading spec: %w", err)
	}
	schemaReport := validation.ValidateSchema(s)
	return s, schemaReport, nil
}

// runValidate prints the merged schema and analytical report and says
// whether the project is valid.
func (a *app) runValidate(projectPath string) (bool, error) {
	s, schemaReport, err := loadAndValidate(projectPath)
	if err != nil {
		return false, err
	}

	// Analytical checks need a buildable system.
	if schemaReport.Valid {
		_, analyticsReport := analytics.Resolve(s)
		schemaReport.Merge(analyticsReport)
	}

	printValidationReport(a.out, schemaReport)
	return schemaReport.Valid, nil
}

func (a *app) runSolve(projectPath string, x float64, guess *float64, asJSON bool) error {
	s, schemaReport, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !schemaReport.Valid {
		printValidationReport(a.out, schemaReport)
		return schemaReport.Err()
	}

	sys, err := s.BuildSystem()
	if err != nil {
		return err
	}

	var g float64
	switch {
	case guess != nil:
		g = *guess
	case s.Sweep.InitialGuess != nil:
		g = *s.Sweep.InitialGuess
	default:
		if g, err = sys.InterpolatedGuess(x); err != nil {
			return err
		}
	}

	p, err := s.SolverSettings().Solve(x, sys, g)
	if err != nil {
		return err
	}
	a.logger().Debug("solved", "x", x, "guess", g, "t", p.T, "iterations", p.Iterations)

	if asJSON {
		return encodeJSON(a.out, p)
	}
	printPoint(a.out, sys, p)
	return nil
}

func (a *app) runCurve(projectPath, format string, points int) error {
	s, schemaReport, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	switch format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", format)
	}
	if points > 0 {
		s.Sweep.Points = points
		s.Sweep.Fractions = nil
		schemaReport = validation.ValidateSchema(s)
	}
	if !schemaReport.Valid {
		printValidationReport(a.out, schemaReport)
		return schemaReport.Err()
	}

	start := time.Now()
	params, analyticsReport := analytics.Resolve(s)
	if params == nil {
		printValidationReport(a.out, analyticsReport)
		return analyticsReport.Err()
	}
	a.logger().Debug("curve generated",
		"points", params.Summary.Points,
		"iterations", params.Summary.Iterations,
		"duration", time.Since(start),
	)

	switch format {
	case "json":
		return encodeJSON(a.out, map[string]any{
			"parameters": params,
			"validation": analyticsReport,
		})
	case "csv":
		return writeCurveCSV(a.out, params.Curve)
	}

	printCurveTable(a.out, params, analyticsReport)
	if len(analyticsReport.Errors) > 0 || len(analyticsReport.Warnings) > 0 {
		fmt.Fprintln(a.out)
		printValidationReport(a.out, analyticsReport)
	}
	return nil
}

func (a *app) runComponents() error {
	return printComponents(a.out)
}

func (a *app) logger() *slog.Logger {
	if a.log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a.log
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

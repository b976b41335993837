package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/bubblepoint/pkg/analytics"
	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
	"github.com/ChicagoDave/bubblepoint/pkg/spec"
	"github.com/ChicagoDave/bubblepoint/pkg/validation"
)

const referenceProject = "../../examples/acetylene-heptane"

func testApp() (*app, *bytes.Buffer) {
	var buf bytes.Buffer
	return &app{out: &buf}, &buf
}

func TestRunValidateReference(t *testing.T) {
	a, out := testApp()
	valid, err := a.runValidate(referenceProject)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Contains(t, out.String(), "Result: VALID")
	assert.Contains(t, out.String(), "acetylene is the more volatile component")
}

func TestRunValidateInvalid(t *testing.T) {
	dir := writeProject(t, `spec_version: "0.1.0"
system:
  pressure: 760
  components:
    - ref: benzene
    - ref: unobtainium
`)
	a, out := testApp()
	valid, err := a.runValidate(dir)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.Contains(t, out.String(), "system.components[1].ref")
	assert.Contains(t, out.String(), "Result: INVALID")
}

func TestRunValidateMissingProject(t *testing.T) {
	a, _ := testApp()
	_, err := a.runValidate(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunSolve(t *testing.T) {
	a, out := testApp()
	require.NoError(t, a.runSolve(referenceProject, 0.5, nil, true))

	var p bubble.Point
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, 0.5, p.X)
	assert.Greater(t, p.Y, 0.5)
	assert.Greater(t, p.T, -95.86)
	assert.Less(t, p.T, 98.04)
}

func TestRunSolveTableAndGuess(t *testing.T) {
	a, out := testApp()
	guess := -50.0
	require.NoError(t, a.runSolve(referenceProject, 0.25, &guess, false))
	assert.Contains(t, out.String(), "Bubble point: acetylene / n-heptane")
	assert.Contains(t, out.String(), "0.2500")
}

func TestRunSolveErrors(t *testing.T) {
	a, _ := testApp()
	err := a.runSolve(referenceProject, 1.5, nil, false)
	assert.ErrorIs(t, err, bubble.ErrInvalidComposition)

	below := -230.0
	err = a.runSolve(referenceProject, 0.5, &below, false)
	assert.ErrorIs(t, err, bubble.ErrInvalidCoefficients)
}

func TestRunCurveTable(t *testing.T) {
	a, out := testApp()
	require.NoError(t, a.runCurve(referenceProject, "table", 0))
	s := out.String()
	assert.Contains(t, s, "T-x-y curve: acetylene + n-heptane")
	assert.Contains(t, s, "Points solved:        21 of 21")
}

func TestRunCurveCSV(t *testing.T) {
	a, out := testApp()
	require.NoError(t, a.runCurve(referenceProject, "csv", 11))

	rows, err := csv.NewReader(out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 12)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "0", rows[1][1])
	assert.Equal(t, "1", rows[11][0])
	assert.Equal(t, "1", rows[11][1])
	assert.Equal(t, "false", rows[6][5])
}

func TestRunCurveJSON(t *testing.T) {
	a, out := testApp()
	require.NoError(t, a.runCurve(referenceProject, "json", 5))

	var body struct {
		Parameters struct {
			MoreVolatile string `json:"more_volatile"`
			Curve        struct {
				Points []bubble.Point `json:"points"`
			} `json:"curve"`
		} `json:"parameters"`
		Validation struct {
			Valid bool `json:"valid"`
		} `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "acetylene", body.Parameters.MoreVolatile)
	assert.Len(t, body.Parameters.Curve.Points, 5)
	assert.True(t, body.Validation.Valid)
}

func TestRunCurveErrors(t *testing.T) {
	a, _ := testApp()
	assert.Error(t, a.runCurve(referenceProject, "xml", 0))

	a, out := testApp()
	assert.Error(t, a.runCurve(referenceProject, "table", 1))
	assert.Contains(t, out.String(), "sweep.points")
}

func TestCurveTableMarksRowsWithFindings(t *testing.T) {
	s, err := spec.LoadProject(referenceProject)
	require.NoError(t, err)
	params, report := analytics.Resolve(s)
	require.NotNil(t, params)

	var clean bytes.Buffer
	printCurveTable(&clean, params, report)
	assert.NotContains(t, clean.String(), "with findings")

	e := params.Curve.Entries[3]
	report.AddWarning(validation.Result{
		Level:   validation.LevelAnalytical,
		Message: "suspicious point",
		Point:   &validation.PointRef{X: e.X, T: e.T, Converged: true},
	})
	var marked bytes.Buffer
	printCurveTable(&marked, params, report)
	assert.Contains(t, marked.String(), "  *")
	assert.Contains(t, marked.String(), "1 row with findings")
}

func TestRunCurveFlaggedPoints(t *testing.T) {
	dir := writeProject(t, `spec_version: "0.1.0"
system:
  pressure: 760
  components:
    - ref: acetylene
    - ref: n-heptane
sweep:
  points: 5
  initial_guess: 60
  guess_mode: fixed
  failure_policy: flag
solver:
  max_iterations: 3
`)
	a, out := testApp()
	require.NoError(t, a.runCurve(dir, "table", 0))
	assert.Contains(t, out.String(), "convergence failure")
	assert.Contains(t, out.String(), "WARNINGS")
}

func TestRunComponents(t *testing.T) {
	a, out := testApp()
	require.NoError(t, a.runComponents())
	for _, name := range []string{"acetylene", "n-heptane", "benzene", "water"} {
		assert.Contains(t, out.String(), name)
	}
	assert.Contains(t, out.String(), "98.04")
}

func writeProject(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "system.yaml"), []byte(yaml), 0o644))
	return dir
}

package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/bubblepoint/pkg/antoine"
)

func TestLoadProject(t *testing.T) {
	s, err := LoadProject("../../examples/acetylene-heptane")
	require.NoError(t, err)

	assert.Equal(t, "0.1.0", s.SpecVersion)
	assert.Equal(t, 760.0, s.System.Pressure)
	require.Len(t, s.System.Components, 2)

	first := s.System.Components[0]
	assert.Equal(t, "acetylene", first.Name)
	require.NotNil(t, first.Antoine)
	assert.Equal(t, antoine.Coefficients{A: 6.81228, B: 625.64, C: 255.0}, *first.Antoine)

	// Sweep
	assert.Equal(t, 21, s.Sweep.Points)
	require.NotNil(t, s.Sweep.InitialGuess)
	assert.Equal(t, 60.0, *s.Sweep.InitialGuess)

	// Solver
	assert.Equal(t, 1e-6, s.Solver.Tolerance)
	assert.Equal(t, 100, s.Solver.MaxIterations)
}

func TestLoadProjectMissing(t *testing.T) {
	_, err := LoadProject("/nonexistent/path")
	assert.Error(t, err)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
spec_version: "0.1.0"
system:
  pressure: 760
  presure_unit: mmHg
`))
	assert.Error(t, err, "misspelled key should be rejected")
}

func TestBuildSystemFromLibraryRefs(t *testing.T) {
	s, err := LoadProject("../../examples/benzene-toluene")
	require.NoError(t, err)
	sys, err := s.BuildSystem()
	require.NoError(t, err)

	assert.Equal(t, "benzene", sys.First.Name)
	assert.Equal(t, "toluene", sys.Second.Name)
	assert.Equal(t, 760.0, sys.Pressure)
	assert.NotNil(t, sys.First.Range, "library component should carry its fitted range")
}

func TestBuildSystemInlineOverridesRef(t *testing.T) {
	s := &ProjectSpec{System: SystemDef{
		Pressure:     101.325,
		PressureUnit: "kPa",
		Components: []ComponentDef{
			{Ref: "water", Name: "steam condensate"},
			{Ref: "ethanol", Antoine: &antoine.Coefficients{A: 8.1122, B: 1592.864, C: 226.184}},
		},
	}}
	sys, err := s.BuildSystem()
	require.NoError(t, err)

	assert.Equal(t, "steam condensate", sys.First.Name)
	assert.Equal(t, "ethanol", sys.Second.Name)
	assert.Equal(t, 1592.864, sys.Second.Coefficients.B)
	assert.InDelta(t, 760, sys.Pressure, 1e-3)
}

func TestBuildSystemErrors(t *testing.T) {
	tests := []struct {
		name string
		def  SystemDef
	}{
		{"one component", SystemDef{Pressure: 760, Components: []ComponentDef{{Ref: "water"}}}},
		{"unknown ref", SystemDef{Pressure: 760, Components: []ComponentDef{{Ref: "water"}, {Ref: "kryptonite"}}}},
		{"no coefficients", SystemDef{Pressure: 760, Components: []ComponentDef{{Ref: "water"}, {Name: "mystery"}}}},
		{"bad unit", SystemDef{Pressure: 760, PressureUnit: "furlongs", Components: []ComponentDef{{Ref: "water"}, {Ref: "ethanol"}}}},
		{"zero pressure", SystemDef{Pressure: 0, Components: []ComponentDef{{Ref: "water"}, {Ref: "ethanol"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &ProjectSpec{System: tt.def}
			_, err := s.BuildSystem()
			assert.Error(t, err)
		})
	}
}

func TestPressureUnits(t *testing.T) {
	tests := []struct {
		unit  string
		value float64
		want  float64
	}{
		{"", 760, 760},
		{"mmHg", 760, 760},
		{"Torr", 500, 500},
		{"atm", 2, 1520},
		{"bar", 1.01325, 760},
		{"kPa", 101.325, 760},
		{"psi", 14.6959, 760},
	}
	for _, tt := range tests {
		got, err := SystemDef{Pressure: tt.value, PressureUnit: tt.unit}.PressureMMHg()
		if assert.NoError(t, err, tt.unit) {
			assert.InDelta(t, tt.want, got, 1e-2, "%v %s", tt.value, tt.unit)
		}
	}
}

func TestFractions(t *testing.T) {
	s := &ProjectSpec{}
	xs, err := s.Fractions()
	require.NoError(t, err)
	assert.Len(t, xs, DefaultPoints)

	s.Sweep.Fractions = []float64{0.1, 0.2}
	xs, err = s.Fractions()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, xs)
	xs[0] = 9
	assert.Equal(t, 0.1, s.Sweep.Fractions[0], "Fractions must not alias the spec slice")

	s.Sweep.Fractions = nil
	s.Sweep.Points = 1
	_, err = s.Fractions()
	assert.Error(t, err, "a 1-point grid has no interior")
}

func TestSolverSettings(t *testing.T) {
	s := &ProjectSpec{Solver: SolverDef{MaxIterations: 25}}
	got := s.SolverSettings()
	assert.Equal(t, 25, got.MaxIterations)
	assert.Equal(t, 1e-6, got.Tolerance, "tolerance falls back to the default")
}

func TestCurveOptions(t *testing.T) {
	s := &ProjectSpec{Sweep: SweepDef{GuessMode: "fixed", FailurePolicy: "skip"}}
	_, err := s.CurveOptions()
	assert.NoError(t, err)

	s.Sweep.GuessMode = "psychic"
	_, err = s.CurveOptions()
	assert.Error(t, err)
}

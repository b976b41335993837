package spec

import "github.com/ChicagoDave/bubblepoint/pkg/antoine"

// ProjectSpec is the top-level specification of one equilibrium study.
type ProjectSpec struct {
	SpecVersion string    `yaml:"spec_version" json:"spec_version"`
	System      SystemDef `yaml:"system" json:"system"`
	Sweep       SweepDef  `yaml:"sweep" json:"sweep"`
	Solver      SolverDef `yaml:"solver" json:"solver"`
}

// SystemDef is the binary mixture and its total pressure. The first
// component is the one liquid and vapor fractions refer to.
type SystemDef struct {
	Name         string         `yaml:"name" json:"name"`
	Pressure     float64        `yaml:"pressure" json:"pressure"`
	PressureUnit string         `yaml:"pressure_unit" json:"pressure_unit"`
	Components   []ComponentDef `yaml:"components" json:"components"`
}

// ComponentDef names a species either by reference to the built-in library,
// inline coefficients, or both (inline values win).
type ComponentDef struct {
	Name       string                `yaml:"name" json:"name"`
	Ref        string                `yaml:"ref,omitempty" json:"ref,omitempty"`
	Antoine    *antoine.Coefficients `yaml:"antoine,omitempty" json:"antoine,omitempty"`
	ValidRange *antoine.Range        `yaml:"valid_range,omitempty" json:"valid_range,omitempty"`
}

// Label returns the display name of the component.
func (c ComponentDef) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Ref
}

// SweepDef controls which compositions are solved and how.
type SweepDef struct {
	Points        int       `yaml:"points" json:"points"`
	Fractions     []float64 `yaml:"fractions,omitempty" json:"fractions,omitempty"`
	InitialGuess  *float64  `yaml:"initial_guess,omitempty" json:"initial_guess,omitempty"`
	GuessMode     string    `yaml:"guess_mode" json:"guess_mode"`
	FailurePolicy string    `yaml:"failure_policy" json:"failure_policy"`
	Parallelism   int       `yaml:"parallelism" json:"parallelism"`
}

// SolverDef overrides the root-finder defaults. Zero values keep defaults.
type SolverDef struct {
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
}

// DefaultPoints matches the classic 21-point T-x-y table.
const DefaultPoints = 21

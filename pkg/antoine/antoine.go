// Package antoine evaluates pure-component saturation pressures from the
// three-parameter Antoine correlation, log10(P) = A - B/(C + T).
//
// Pressures are in mmHg and temperatures in °C, the units the bundled
// coefficient table is fitted in. All functions are pure and safe for
// concurrent use.
package antoine

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoefficients is returned when a correlation cannot be evaluated:
// non-finite coefficients, or a temperature at or below the -C singularity.
var ErrInvalidCoefficients = errors.New("antoine: invalid coefficients")

// Coefficients are the fitted Antoine constants for one species.
type Coefficients struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
	C float64 `yaml:"c" json:"c"`
}

// Range is the temperature interval a correlation was fitted over.
type Range struct {
	TMin float64 `yaml:"t_min" json:"t_min"`
	TMax float64 `yaml:"t_max" json:"t_max"`
}

// Contains reports whether t lies inside the range, bounds included.
func (r Range) Contains(t float64) bool {
	return t >= r.TMin && t <= r.TMax
}

// Component is a named species with its correlation. Values are never
// mutated after construction.
type Component struct {
	Name         string       `yaml:"name" json:"name"`
	Coefficients Coefficients `yaml:"antoine" json:"antoine"`
	Range        *Range       `yaml:"valid_range,omitempty" json:"valid_range,omitempty"`
}

// Validate checks that the coefficients are finite and describe a pressure
// that increases with temperature.
func (c Coefficients) Validate() error {
	for _, v := range []float64{c.A, c.B, c.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite coefficient in (A=%g, B=%g, C=%g)", ErrInvalidCoefficients, c.A, c.B, c.C)
		}
	}
	if c.B <= 0 {
		return fmt.Errorf("%w: B must be > 0 (got %g)", ErrInvalidCoefficients, c.B)
	}
	return nil
}

// Domain returns the exclusive lower temperature bound -C. The correlation
// is undefined at or below it.
func (c Coefficients) Domain() float64 {
	return -c.C
}

// InDomain reports whether C + t is strictly positive.
func (c Coefficients) InDomain(t float64) bool {
	return c.C+t > 0
}

// Pressure returns 10^(A - B/(C + t)) without any checks. Callers that cannot
// guarantee C + t > 0 should use EvaluateSaturationPressure.
func (c Coefficients) Pressure(t float64) float64 {
	return math.Pow(10, c.A-c.B/(c.C+t))
}

// EvaluateSaturationPressure returns the saturation pressure at temperature t.
func EvaluateSaturationPressure(t float64, c Coefficients) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, fmt.Errorf("%w: temperature %g is not finite", ErrInvalidCoefficients, t)
	}
	if !c.InDomain(t) {
		return 0, fmt.Errorf("%w: C + T = %g must be > 0 at T = %g", ErrInvalidCoefficients, c.C+t, t)
	}
	return c.Pressure(t), nil
}

// BoilingPoint inverts the correlation and returns the temperature at which
// the saturation pressure equals p.
func (c Coefficients) BoilingPoint(p float64) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("antoine: pressure must be positive and finite (got %g)", p)
	}
	denom := c.A - math.Log10(p)
	if denom <= 0 {
		return 0, fmt.Errorf("%w: pressure %g mmHg is at or above the correlation limit 10^A = %g", ErrInvalidCoefficients, p, math.Pow(10, c.A))
	}
	return c.B/denom - c.C, nil
}

// Slope returns dP/dT at t.
func (c Coefficients) Slope(t float64) float64 {
	d := c.C + t
	return c.Pressure(t) * math.Ln10 * c.B / (d * d)
}

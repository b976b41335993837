// Package bubble solves for the bubble-point temperature of an ideal binary
// liquid at fixed total pressure (Raoult's Law with Antoine saturation
// pressures) and derives the equilibrium vapor composition.
package bubble

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/bubblepoint/pkg/antoine"
)

// System is a binary mixture at a fixed total pressure. Liquid and vapor
// mole fractions always refer to First. Pressure is in mmHg.
type System struct {
	First    antoine.Component `json:"first"`
	Second   antoine.Component `json:"second"`
	Pressure float64           `json:"pressure_mmhg"`
}

// NewSystem builds a validated System.
func NewSystem(first, second antoine.Component, pressure float64) (System, error) {
	s := System{First: first, Second: second, Pressure: pressure}
	if err := s.Validate(); err != nil {
		return System{}, err
	}
	return s, nil
}

// Validate checks both correlations and the total pressure.
func (s System) Validate() error {
	if err := s.First.Coefficients.Validate(); err != nil {
		return fmt.Errorf("component %q: %w", s.First.Name, err)
	}
	if err := s.Second.Coefficients.Validate(); err != nil {
		return fmt.Errorf("component %q: %w", s.Second.Name, err)
	}
	if !(s.Pressure > 0) || math.IsInf(s.Pressure, 0) {
		return fmt.Errorf("bubble: total pressure must be positive and finite (got %g)", s.Pressure)
	}
	return nil
}

// Floor is the temperature at or below which either correlation is
// undefined. Every iterate must stay strictly above it.
func (s System) Floor() float64 {
	return math.Max(s.First.Coefficients.Domain(), s.Second.Coefficients.Domain())
}

// BoilingPoints returns the pure-component boiling temperatures at the
// system pressure.
func (s System) BoilingPoints() (first, second float64, err error) {
	first, err = s.First.Coefficients.BoilingPoint(s.Pressure)
	if err != nil {
		return 0, 0, fmt.Errorf("component %q: %w", s.First.Name, err)
	}
	second, err = s.Second.Coefficients.BoilingPoint(s.Pressure)
	if err != nil {
		return 0, 0, fmt.Errorf("component %q: %w", s.Second.Name, err)
	}
	return first, second, nil
}

// InterpolatedGuess returns a starting temperature for composition x by
// linear interpolation between the pure-component boiling points.
func (s System) InterpolatedGuess(x float64) (float64, error) {
	t1, t2, err := s.BoilingPoints()
	if err != nil {
		return 0, err
	}
	return x*t1 + (1-x)*t2, nil
}

// PartialPressures returns the Raoult's-Law partial pressures at t.
func (s System) PartialPressures(x, t float64) (p1, p2 float64) {
	return x * s.First.Coefficients.Pressure(t), (1 - x) * s.Second.Coefficients.Pressure(t)
}

// Residual is x·Psat1(t) + (1−x)·Psat2(t) − P. It is zero at the bubble point
// and increases with t.
func Residual(x float64, s System, t float64) float64 {
	p1, p2 := s.PartialPressures(x, t)
	return p1 + p2 - s.Pressure
}

package bubble

import (
	"errors"
	"fmt"

	"github.com/ChicagoDave/bubblepoint/pkg/antoine"
)

var (
	// ErrInvalidComposition indicates a liquid mole fraction outside [0, 1].
	ErrInvalidComposition = errors.New("bubble: invalid composition")

	// ErrInvalidCoefficients indicates a correlation that cannot be evaluated
	// where the solver needs it. It is the same value antoine returns so
	// callers only need one errors.Is check.
	ErrInvalidCoefficients = antoine.ErrInvalidCoefficients

	// ErrConvergenceFailure indicates the root-finder ran out of iterations
	// without meeting the residual tolerance.
	ErrConvergenceFailure = errors.New("bubble: convergence failure")
)

// ConvergenceError carries the state of a solve that did not converge.
type ConvergenceError struct {
	X            float64
	Iterations   int
	LastIterate  float64
	LastResidual float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v: x=%g after %d iterations (last T=%g, residual=%g mmHg)",
		ErrConvergenceFailure, e.X, e.Iterations, e.LastIterate, e.LastResidual)
}

func (e *ConvergenceError) Unwrap() error {
	return ErrConvergenceFailure
}

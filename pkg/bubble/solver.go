package bubble

import (
	"fmt"
	"math"
)

// Point is one solved equilibrium state.
type Point struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	T          float64 `json:"t"`
	Residual   float64 `json:"residual"`
	Iterations int     `json:"iterations"`
}

// Solver holds the root-finder settings. The zero value is not usable; start
// from DefaultSolver.
type Solver struct {
	// Tolerance is the largest accepted |residual|, in mmHg.
	Tolerance float64
	// MaxIterations bounds the number of residual evaluations after the guess.
	MaxIterations int
	// Step is the offset of the second secant iterate from the guess, in °C.
	Step float64
}

// DefaultSolver converges to 1e-6 mmHg within 100 iterations.
var DefaultSolver = Solver{
	Tolerance:     1e-6,
	MaxIterations: 100,
	Step:          1,
}

// Solve finds the bubble point of composition x with DefaultSolver.
func Solve(x float64, sys System, guess float64) (Point, error) {
	return DefaultSolver.Solve(x, sys, guess)
}

// Solve finds the temperature at which x·Psat1(T) + (1−x)·Psat2(T) equals the
// system pressure, starting the search from guess, and returns the
// equilibrium point.
//
// The iteration is a secant method guarded by a bracket [lo, hi] built from
// the residual signs, which is valid because the residual increases with T
// for any coefficients that pass validation. A secant step that leaves the
// bracket, or lands on or below the correlation singularity, is replaced by
// bisection or by halving the distance to the singularity.
func (s Solver) Solve(x float64, sys System, guess float64) (Point, error) {
	if math.IsNaN(x) || x < 0 || x > 1 {
		return Point{}, fmt.Errorf("%w: liquid fraction %g is outside [0, 1]", ErrInvalidComposition, x)
	}
	if err := sys.Validate(); err != nil {
		return Point{}, err
	}
	if math.IsNaN(guess) || math.IsInf(guess, 0) {
		return Point{}, fmt.Errorf("%w: initial guess %g is not finite", ErrInvalidCoefficients, guess)
	}
	floor := sys.Floor()
	if guess <= floor {
		return Point{}, fmt.Errorf("%w: C + T <= 0 at initial guess T=%g (correlations defined above %g)",
			ErrInvalidCoefficients, guess, floor)
	}
	if !(s.Tolerance > 0) || math.IsInf(s.Tolerance, 0) || s.MaxIterations <= 0 {
		return Point{}, fmt.Errorf("bubble: solver needs a finite positive tolerance and iteration budget (got %g, %d)",
			s.Tolerance, s.MaxIterations)
	}

	f := func(t float64) float64 { return Residual(x, sys, t) }

	var b bracket
	tPrev, fPrev := guess, f(guess)
	b.observe(tPrev, fPrev)
	if math.Abs(fPrev) <= s.Tolerance {
		return s.point(x, sys, tPrev, fPrev, 0), nil
	}

	step := s.Step
	if step <= 0 {
		step = DefaultSolver.Step
	}
	tCur := tPrev + step
	if fPrev > 0 {
		tCur = tPrev - step
	}
	if tCur <= floor {
		tCur = (tPrev + floor) / 2
	}

	lastT, lastF := tPrev, fPrev
	n := 0
	for n < s.MaxIterations {
		n++
		fCur := f(tCur)
		if math.IsNaN(fCur) || math.IsInf(fCur, 0) {
			break
		}
		lastT, lastF = tCur, fCur
		if math.Abs(fCur) <= s.Tolerance {
			return s.point(x, sys, tCur, fCur, n), nil
		}
		b.observe(tCur, fCur)

		next := b.next(tPrev, fPrev, tCur, fCur, floor, step)
		tPrev, fPrev, tCur = tCur, fCur, next
	}

	return Point{}, &ConvergenceError{
		X:            x,
		Iterations:   n,
		LastIterate:  lastT,
		LastResidual: lastF,
	}
}

func (s Solver) point(x float64, sys System, t, residual float64, iterations int) Point {
	// Normalizing by the converged total keeps y inside [0, 1] when the
	// residual is within tolerance but not zero.
	p1, p2 := sys.PartialPressures(x, t)
	y := p1 / (p1 + p2)
	switch x {
	case 0:
		y = 0
	case 1:
		y = 1
	}
	return Point{X: x, Y: y, T: t, Residual: residual, Iterations: iterations}
}

// bracket tracks the tightest temperatures known to lie below (lo) and
// above (hi) the root.
type bracket struct {
	lo, hi       float64
	hasLo, hasHi bool
}

func (b *bracket) observe(t, f float64) {
	switch {
	case f < 0 && (!b.hasLo || t > b.lo):
		b.lo, b.hasLo = t, true
	case f > 0 && (!b.hasHi || t < b.hi):
		b.hi, b.hasHi = t, true
	}
}

func (b *bracket) closed() bool {
	return b.hasLo && b.hasHi
}

// next picks the following iterate from the last two.
func (b *bracket) next(tPrev, fPrev, tCur, fCur, floor, minStep float64) float64 {
	cand := math.NaN()
	if fCur != fPrev {
		cand = tCur - fCur*(tCur-tPrev)/(fCur-fPrev)
	}

	if b.closed() {
		mid := b.lo + (b.hi-b.lo)/2
		if math.IsNaN(cand) || cand <= b.lo || cand >= b.hi || math.Abs(cand-tCur) > (b.hi-b.lo)/2 {
			return mid
		}
		return cand
	}

	// Open bracket: the root lies above lo, or below hi, but not both.
	expand := math.Max(2*math.Abs(tCur-tPrev), minStep)
	if math.IsNaN(cand) || math.IsInf(cand, 0) {
		if fCur < 0 {
			cand = tCur + expand
		} else {
			cand = tCur - expand
		}
	}
	if b.hasLo && cand <= b.lo {
		cand = b.lo + expand
	}
	if b.hasHi && cand >= b.hi {
		cand = b.hi - expand
	}
	if cand <= floor {
		upper := tCur
		if b.hasHi {
			upper = math.Min(upper, b.hi)
		}
		cand = floor + (upper-floor)/2
	}
	return cand
}

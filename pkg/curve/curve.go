// Package curve sweeps the bubble-point solver over a sequence of liquid
// compositions and collects the resulting T-x-y equilibrium curve.
package curve

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
)

// GuessMode selects where each point's starting temperature comes from.
type GuessMode int

const (
	// GuessWarm starts each point from the previous point's solution.
	GuessWarm GuessMode = iota
	// GuessFixed starts every point from the same initial guess.
	GuessFixed
	// GuessInterpolated starts each point between the pure-component
	// boiling points, weighted by composition.
	GuessInterpolated
)

func (m GuessMode) String() string {
	switch m {
	case GuessWarm:
		return "warm"
	case GuessFixed:
		return "fixed"
	case GuessInterpolated:
		return "interpolated"
	}
	return fmt.Sprintf("GuessMode(%d)", int(m))
}

// ParseGuessMode maps a config string to a GuessMode.
func ParseGuessMode(s string) (GuessMode, error) {
	switch s {
	case "", "warm":
		return GuessWarm, nil
	case "fixed":
		return GuessFixed, nil
	case "interpolated":
		return GuessInterpolated, nil
	}
	return 0, fmt.Errorf("unknown guess mode %q (want warm, fixed or interpolated)", s)
}

// FailurePolicy decides what happens to a composition the solver rejects.
type FailurePolicy int

const (
	// Abort stops the sweep and returns the error.
	Abort FailurePolicy = iota
	// Skip drops the composition from the curve.
	Skip
	// Flag keeps a placeholder entry carrying the error.
	Flag
)

func (p FailurePolicy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Skip:
		return "skip"
	case Flag:
		return "flag"
	}
	return fmt.Sprintf("FailurePolicy(%d)", int(p))
}

// ParseFailurePolicy maps a config string to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	case "flag":
		return Flag, nil
	}
	return 0, fmt.Errorf("unknown failure policy %q (want abort, skip or flag)", s)
}

// Entry is one composition on the curve. Flagged entries hold only X and
// the solver error.
type Entry struct {
	bubble.Point
	Flagged bool   `json:"flagged,omitempty"`
	Error   string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

// Curve is an ordered equilibrium curve for one system.
type Curve struct {
	System  bubble.System `json:"system"`
	Entries []Entry       `json:"points"`
}

type options struct {
	solver      bubble.Solver
	guess       *float64
	mode        GuessMode
	policy      FailurePolicy
	parallelism int
}

// Option configures Generate.
type Option func(*options)

// WithSolver overrides bubble.DefaultSolver.
func WithSolver(s bubble.Solver) Option {
	return func(o *options) { o.solver = s }
}

// WithInitialGuess sets the starting temperature of the first point (warm
// mode) or of every point (fixed mode).
func WithInitialGuess(t float64) Option {
	return func(o *options) { o.guess = &t }
}

// WithGuessMode selects the per-point starting temperature.
func WithGuessMode(m GuessMode) Option {
	return func(o *options) { o.mode = m }
}

// WithFailurePolicy selects how rejected compositions are handled.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithParallelism solves up to n points at once. It only applies to the
// fixed and interpolated guess modes; warm starts are inherently sequential.
func WithParallelism(n int) Option {
	return func(o *options) { o.parallelism = n }
}

// Generate solves every composition in fractions and returns the curve in
// input order.
func Generate(fractions []float64, sys bubble.System, opts ...Option) (*Curve, error) {
	return GenerateContext(context.Background(), fractions, sys, opts...)
}

// GenerateContext is Generate with cancellation between points.
func GenerateContext(ctx context.Context, fractions []float64, sys bubble.System, opts ...Option) (*Curve, error) {
	o := options{solver: bubble.DefaultSolver, parallelism: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	first, err := o.startGuess(sys, fractions)
	if err != nil {
		return nil, err
	}

	if o.mode != GuessWarm && o.parallelism > 1 {
		return o.sweepParallel(ctx, fractions, sys, first)
	}
	return o.sweep(ctx, fractions, sys, first)
}

func (o *options) startGuess(sys bubble.System, fractions []float64) (float64, error) {
	if o.guess != nil {
		return *o.guess, nil
	}
	if o.mode == GuessFixed {
		return 0, fmt.Errorf("fixed guess mode requires an initial guess")
	}
	x := 0.0
	if len(fractions) > 0 {
		x = fractions[0]
	}
	g, err := sys.InterpolatedGuess(clamp01(x))
	if err != nil {
		return 0, fmt.Errorf("deriving initial guess: %w", err)
	}
	return g, nil
}

func (o *options) guessFor(sys bubble.System, x, fallback float64) float64 {
	if o.mode != GuessInterpolated {
		return fallback
	}
	g, err := sys.InterpolatedGuess(clamp01(x))
	if err != nil {
		return fallback
	}
	return g
}

func (o *options) sweep(ctx context.Context, fractions []float64, sys bubble.System, first float64) (*Curve, error) {
	c := &Curve{System: sys, Entries: make([]Entry, 0, len(fractions))}
	guess := first
	for i, x := range fractions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := o.solver.Solve(x, sys, o.guessFor(sys, x, guess))
		if err != nil {
			e, keep, abort := o.fail(i, x, err)
			if abort != nil {
				return nil, abort
			}
			if keep {
				c.Entries = append(c.Entries, e)
			}
			continue
		}
		if o.mode == GuessWarm {
			guess = p.T
		}
		c.Entries = append(c.Entries, Entry{Point: p})
	}
	return c, nil
}

func (o *options) sweepParallel(ctx context.Context, fractions []float64, sys bubble.System, first float64) (*Curve, error) {
	entries := make([]Entry, len(fractions))
	keep := make([]bool, len(fractions))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for i, x := range fractions {
		i, x := i, x
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := o.solver.Solve(x, sys, o.guessFor(sys, x, first))
			if err != nil {
				e, k, abort := o.fail(i, x, err)
				if abort != nil {
					return abort
				}
				entries[i], keep[i] = e, k
				return nil
			}
			entries[i], keep[i] = Entry{Point: p}, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Curve{System: sys, Entries: make([]Entry, 0, len(fractions))}
	for i := range entries {
		if keep[i] {
			c.Entries = append(c.Entries, entries[i])
		}
	}
	return c, nil
}

// fail applies the failure policy to a rejected composition.
func (o *options) fail(i int, x float64, err error) (e Entry, keep bool, abort error) {
	switch o.policy {
	case Skip:
		return Entry{}, false, nil
	case Flag:
		return Entry{Point: bubble.Point{X: x}, Flagged: true, Error: err.Error(), Err: err}, true, nil
	default:
		return Entry{}, false, fmt.Errorf("point %d (x=%g): %w", i, x, err)
	}
}

// X returns the liquid fractions of the solved entries.
func (c *Curve) X() []float64 {
	return c.column(func(p bubble.Point) float64 { return p.X })
}

// Y returns the vapor fractions of the solved entries.
func (c *Curve) Y() []float64 {
	return c.column(func(p bubble.Point) float64 { return p.Y })
}

// T returns the bubble-point temperatures of the solved entries.
func (c *Curve) T() []float64 {
	return c.column(func(p bubble.Point) float64 { return p.T })
}

func (c *Curve) column(get func(bubble.Point) float64) []float64 {
	out := make([]float64, 0, len(c.Entries))
	for _, e := range c.Entries {
		if !e.Flagged {
			out = append(out, get(e.Point))
		}
	}
	return out
}

// Solved returns the entries that hold a converged point.
func (c *Curve) Solved() []bubble.Point {
	out := make([]bubble.Point, 0, len(c.Entries))
	for _, e := range c.Entries {
		if !e.Flagged {
			out = append(out, e.Point)
		}
	}
	return out
}

// Iterations is the total solver iteration count across the curve.
func (c *Curve) Iterations() int {
	n := 0
	for _, e := range c.Entries {
		n += e.Iterations
	}
	return n
}

// Flagged returns the number of placeholder entries.
func (c *Curve) Flagged() int {
	n := 0
	for _, e := range c.Entries {
		if e.Flagged {
			n++
		}
	}
	return n
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

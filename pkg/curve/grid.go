package curve

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
)

// Uniform returns n evenly spaced liquid fractions from 0 to 1 inclusive.
func Uniform(n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("uniform grid needs at least 2 points (got %d)", n)
	}
	xs := floats.Span(make([]float64, n), 0, 1)
	// Pin the ends so rounding never pushes a fraction outside [0, 1].
	xs[0], xs[n-1] = 0, 1
	return xs, nil
}

// At interpolates the curve linearly at liquid fraction x. The solved
// entries must be ordered by increasing x.
func (c *Curve) At(x float64) (bubble.Point, error) {
	pts := c.Solved()
	if len(pts) == 0 {
		return bubble.Point{}, fmt.Errorf("curve has no solved points")
	}
	if math.IsNaN(x) {
		return bubble.Point{}, fmt.Errorf("%w: x is NaN", bubble.ErrInvalidComposition)
	}
	if !sort.SliceIsSorted(pts, func(i, j int) bool { return pts[i].X < pts[j].X }) {
		return bubble.Point{}, fmt.Errorf("curve is not ordered by liquid fraction")
	}
	lo, hi := pts[0].X, pts[len(pts)-1].X
	if x < lo || x > hi {
		return bubble.Point{}, fmt.Errorf("x=%g is outside the curve range [%g, %g]", x, lo, hi)
	}

	i := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	if pts[i].X == x || i == 0 {
		return pts[i], nil
	}
	a, b := pts[i-1], pts[i]
	frac := (x - a.X) / (b.X - a.X)
	return bubble.Point{
		X: x,
		Y: a.Y + frac*(b.Y-a.Y),
		T: a.T + frac*(b.T-a.T),
	}, nil
}

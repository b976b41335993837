package curve

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ChicagoDave/bubblepoint/pkg/bubble"
)

// Job is one independent curve computation.
type Job struct {
	Name      string
	System    bubble.System
	Fractions []float64
	Options   []Option
}

// Result pairs a job with its curve or its error.
type Result struct {
	Name  string
	Curve *Curve
	Err   error
}

// GenerateAll computes the curves for jobs concurrently, at most limit at a
// time (limit <= 0 means unbounded). Results are in job order. A failing
// job does not stop the others; the returned error is only set when ctx is
// cancelled.
func GenerateAll(ctx context.Context, jobs []Job, limit int) ([]Result, error) {
	results := make([]Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			c, err := GenerateContext(ctx, job.Fractions, job.System, job.Options...)
			results[i] = Result{Name: job.Name, Curve: c, Err: err}
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

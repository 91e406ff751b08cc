package vib

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/aiqm/nnp"
)

// BatchHessian computes the Hessian of every system concurrently. Results
// are returned in input order. The first error cancels the remaining work;
// ctx cancellation does the same. The potential must be safe for concurrent
// use, which holds for any stateless potential.
func BatchHessian(ctx context.Context, p nnp.Potential, systems []nnp.System, settings *Settings) ([]*mat.SymDense, error) {
	results := make([]*mat.SymDense, len(systems))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, sys := range systems {
		i, sys := i, sys
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := Hessian(p, sys, settings)
			if err != nil {
				return err
			}
			results[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BatchAnalyze runs a vibrational analysis for every Hessian with a shared
// masses slice, for batches of isomers that all have the same composition.
func BatchAnalyze(masses []float64, hessians []*mat.SymDense) ([]FreqsModes, error) {
	out := make([]FreqsModes, len(hessians))
	for i, h := range hessians {
		fm, err := Analyze(masses, h)
		if err != nil {
			return nil, err
		}
		out[i] = fm
	}
	return out, nil
}

// Package dispatch runs one task per chunk either sequentially on the
// calling goroutine or concurrently over a bounded worker pool, per
// spec's query dispatcher component.
package dispatch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sequential runs task(i) for every i in [0, n) on the calling
// goroutine, in file order, stopping at the first error.
func Sequential[T any](n int, task func(i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	for i := 0; i < n; i++ {
		r, err := task(i)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

// Parallel runs task(i) for every i in [0, n) over a worker pool capped
// at workers goroutines (runtime.GOMAXPROCS(0) when workers <= 0).
// Results are returned in index order — chunk order — which is the
// deterministic concatenation the spec's dispatcher promises a caller
// that needs stable ordering. The first task error cancels a shared
// context so that chunks not yet dispatched are skipped best-effort;
// chunks already running are never interrupted mid-search, matching the
// "no suspension points, tasks run to completion" concurrency model.
func Parallel[T any](n, workers int, task func(i int) (T, error)) ([]T, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]T, n)

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

loop:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break loop
		default:
		}

		g.Go(func() error {
			r, err := task(i)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

package auth

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Runner bounds the number of CPU-bound crypto computations running at once.
//
// A computation that has started always runs to completion. If the caller's
// context ends first the caller gets ctx.Err() and the result is dropped.
type Runner struct {
	sem *semaphore.Weighted
}

// NewRunner returns a Runner allowing up to workers concurrent computations
// (at least one).
func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{sem: semaphore.NewWeighted(int64(workers))}
}

// run executes fn on r. A nil Runner executes fn inline.
func run[T any](ctx context.Context, r *Runner, fn func() (T, error)) (T, error) {
	var zero T

	if r == nil {
		return fn()
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer r.sem.Release(1)
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case res := <-done:
		return res.val, res.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

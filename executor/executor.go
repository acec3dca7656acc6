package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned when work is submitted to a closed Pool.
var ErrPoolClosed = errors.New("executor: pool closed")

// Executor runs n independent tasks.
type Executor interface {
	// Run calls fn(ctx, i) for every i in [0, n) and returns one error slot
	// per task, nil on success.
	Run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error
}

// PanicError wraps a panic raised by a task.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("task panicked: %v", e.Value) }

// call runs one task, turning a panic into a *PanicError.
func call(ctx context.Context, i int, fn func(context.Context, int) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx, i)
}

// Sequential runs tasks one after another on the calling goroutine.
type Sequential struct{}

// Run implements Executor.
func (Sequential) Run(ctx context.Context, n int, fn func(context.Context, int) error) []error {
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		errs[i] = call(ctx, i, fn)
	}
	return errs
}

// Group runs each call's tasks on at most Limit goroutines. A Limit <= 0
// uses GOMAXPROCS.
type Group struct {
	Limit int
}

// Run implements Executor.
func (g Group) Run(ctx context.Context, n int, fn func(context.Context, int) error) []error {
	limit := g.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	errs := make([]error, n)
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			errs[i] = call(ctx, i, fn)
			return nil
		})
	}
	_ = eg.Wait()
	return errs
}

// Map applies fn to every item through ex. Results and errors are indexed
// like items; a failed item leaves the zero value in its result slot.
func Map[T, R any](ctx context.Context, ex Executor, items []T, fn func(context.Context, T) (R, error)) ([]R, []error) {
	results := make([]R, len(items))
	errs := ex.Run(ctx, len(items), func(ctx context.Context, i int) error {
		r, err := fn(ctx, items[i])
		if err != nil {
			return err
		}
		results[i] = r
		return nil
	})
	return results, errs
}

// Failed returns the indices of non-nil errors.
func Failed(errs []error) []int {
	var out []int
	for i, err := range errs {
		if err != nil {
			out = append(out, i)
		}
	}
	return out
}

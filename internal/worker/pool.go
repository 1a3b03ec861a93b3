// Package worker drives a bounded-concurrency pool across a list of named
// units of work (region file names), delivering results as an unordered
// stream so a progress UI or an early-terminating caller can drive it
// directly. A single unit's failure is captured and delivered as data
// rather than aborting the rest of the pool.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// batchSize mirrors the dispatch chunk size of a process-pool imap_unordered
// call: work is handed out in groups of this many names at a time.
const batchSize = 10

// CommandError wraps a failure (returned error or recovered panic)
// encountered while processing one named unit of work.
type CommandError struct {
	Name  string
	Err   error
	Stack string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("[E] processing %s: %v\n%s", e.Name, e.Err, e.Stack)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Result is one item of the stream Run produces: either a value or a
// CommandError, never both.
type Result[T any] struct {
	Name  string
	Value T
	Err   *CommandError
}

// Run maps fn across names using up to threads concurrent workers and
// streams results back on the returned channel in completion order, not
// input order. threads < 1 is treated as 1 (sequential). Each worker call
// processes one batch of up to batchSize names in order. The channel is
// closed once every dispatched call has finished. Cancelling ctx stops
// dispatch of further work; in-flight calls are still allowed to finish,
// but results the caller has not yet received are dropped, so a caller may
// cancel ctx and stop reading without leaving workers blocked.
func Run[T any](ctx context.Context, threads int, names []string, fn func(context.Context, string) (T, error)) <-chan Result[T] {
	if threads < 1 {
		threads = 1
	}
	out := make(chan Result[T])

	go func() {
		defer close(out)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(threads)

		for start := 0; start < len(names) && gctx.Err() == nil; start += batchSize {
			batch := names[start:min(start+batchSize, len(names))]
			g.Go(func() error {
				for _, name := range batch {
					if gctx.Err() != nil {
						return nil
					}
					select {
					case out <- runOne(gctx, name, fn):
					case <-gctx.Done():
						return nil
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return out
}

// runOne invokes fn for name, translating a returned error or a recovered
// panic into a CommandError so the caller never needs to catch across the
// pool boundary itself.
func runOne[T any](ctx context.Context, name string, fn func(context.Context, string) (T, error)) (res Result[T]) {
	res.Name = name
	defer func() {
		if r := recover(); r != nil {
			res.Err = &CommandError{Name: name, Err: fmt.Errorf("panic: %v", r), Stack: string(debug.Stack())}
		}
	}()
	v, err := fn(ctx, name)
	if err != nil {
		res.Err = &CommandError{Name: name, Err: err, Stack: string(debug.Stack())}
		return res
	}
	res.Value = v
	return res
}

package task

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vaelang/vael/internal/diagnostics"
)

// Join runs two futures concurrently and returns both results once both
// complete, in input order (spec.md §4.3: "join(f1, f2) ... result
// orderings match inputs"). If AggregateErrors is off, the first error
// cancels the other branch's context, aborts the Manager, and is returned
// once both branches have returned; if on, both branches run to completion,
// their errors are reported to the Manager, and the Manager's aggregated
// Collected error is returned.
func Join[A, B any](m *Manager, f1 func(ctx context.Context) (A, *diagnostics.Error), f2 func(ctx context.Context) (B, *diagnostics.Error)) (A, B, *diagnostics.Error) {
	var a A
	var b B
	g, gctx := errgroup.WithContext(m.rootCtx)
	g.Go(func() error {
		v, err := f1(gctx)
		a = v
		if err != nil && m.aggregateErrors && !diagnostics.IsCancelled(err) {
			m.report(err)
			return nil
		}
		return goErr(err)
	})
	g.Go(func() error {
		v, err := f2(gctx)
		b = v
		if err != nil && m.aggregateErrors && !diagnostics.IsCancelled(err) {
			m.report(err)
			return nil
		}
		return goErr(err)
	})

	waitErr := g.Wait()

	if m.aggregateErrors {
		return a, b, m.Collected()
	}
	if waitErr != nil {
		m.Abort()
		if de, ok := waitErr.(*wrappedErr); ok {
			return a, b, de.err
		}
		return a, b, diagnostics.New(diagnostics.KindValue, waitErr.Error())
	}
	return a, b, nil
}

// JoinAll runs every future concurrently, collecting results in input
// order (spec.md §4.3: "join_all([f])").
func JoinAll[T any](m *Manager, fns []func(ctx context.Context) (T, *diagnostics.Error)) ([]T, *diagnostics.Error) {
	results := make([]T, len(fns))
	g, gctx := errgroup.WithContext(m.rootCtx)

	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			// Respect the worker-pool bound: acquire a slot before running.
			if err := m.sem.Acquire(gctx, 1); err != nil {
				return goErr(diagnostics.Cancelled())
			}
			defer m.sem.Release(1)

			v, err := fn(gctx)
			results[i] = v
			if err != nil && m.aggregateErrors && !diagnostics.IsCancelled(err) {
				m.report(err)
				return nil // keep going; don't cancel sibling tasks
			}
			return goErr(err)
		})
	}

	waitErr := g.Wait()

	if m.aggregateErrors {
		return results, m.Collected()
	}
	if waitErr != nil {
		if de, ok := waitErr.(*wrappedErr); ok {
			return results, de.err
		}
		return results, diagnostics.New(diagnostics.KindValue, waitErr.Error())
	}
	return results, nil
}

// wrappedErr lets a *diagnostics.Error travel through errgroup's `error`
// return without losing its structure.
type wrappedErr struct {
	err *diagnostics.Error
}

func (w *wrappedErr) Error() string { return w.err.Error() }

func goErr(err *diagnostics.Error) error {
	if err == nil {
		return nil
	}
	return &wrappedErr{err: err}
}

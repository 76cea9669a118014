// Package task implements the cooperative worker pool, structured
// cancellation, and error aggregation described in spec.md §4.3, §5.
//
// Grounded on two things observed in the teacher: its go.mod already
// requires golang.org/x/sync (used there to gate concurrent async VM
// clones via AcquirePoolSlot/ReleasePoolSlot, internal/vm/vm.go), and its
// async-spawn code references an evaluator.NewTask()/task.Complete(...)
// future type (internal/vm/vm.go:1593-1683) whose definition was not part
// of the retrieved pack. Manager and Handle below are the concrete
// implementation that reference implies, built with x/sync's errgroup (for
// join/join_all) and semaphore (for the fixed worker pool) instead of the
// teacher's bespoke goroutine-per-async-clone approach, since x/sync's
// primitives are a direct, idiomatic fit for spec.md's contract.
package task

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/vlog"
)

// Options configures a Manager (spec.md §4.3).
type Options struct {
	Threads         int
	AggregateErrors bool
	OnError         func(*diagnostics.Error)
	Logger          *vlog.Logger
}

// Manager is a fixed-size worker pool driving cooperative futures
// (spec.md §4.3).
type Manager struct {
	sem    *semaphore.Weighted
	logger *vlog.Logger

	aggregateErrors bool
	onError         func(*diagnostics.Error)

	rootCtx context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	reported  map[string]struct{} // dedupes on_error callbacks per distinct error
	collected []*diagnostics.Error
}

// New creates a Manager. If opts.Threads <= 0, it defaults to the CPU
// count (runtime.NumCPU; this package stays independent of config).
func New(ctx context.Context, opts Options) *Manager {
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	rootCtx, cancel := context.WithCancel(ctx)
	return &Manager{
		sem:             semaphore.NewWeighted(int64(threads)),
		logger:          opts.Logger,
		aggregateErrors: opts.AggregateErrors,
		onError:         opts.OnError,
		rootCtx:         rootCtx,
		cancel:          cancel,
		reported:        make(map[string]struct{}),
	}
}

// Context returns the Manager's root context, cancelled by Abort.
func (m *Manager) Context() context.Context {
	return m.rootCtx
}

// Abort signals cancellation to every running task (spec.md §4.3, §5): the
// Manager transitions to the cancelled state and any subsequent poll on a
// managed task observes a Cancelled error at its next suspension.
func (m *Manager) Abort() {
	m.cancel()
}

// Aborted reports whether Abort has been called.
func (m *Manager) Aborted() bool {
	select {
	case <-m.rootCtx.Done():
		return true
	default:
		return false
	}
}

// OnError registers a callback invoked exactly once per distinct error at
// its origin (spec.md §4.3). "Distinct" is judged by rendered message,
// which is sufficient for the engine's own diagnostics.
func (m *Manager) OnError(cb func(*diagnostics.Error)) {
	m.mu.Lock()
	m.onError = cb
	m.mu.Unlock()
}

func (m *Manager) report(err *diagnostics.Error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	key := err.Error()
	_, already := m.reported[key]
	if !already {
		m.reported[key] = struct{}{}
	}
	m.collected = append(m.collected, err)
	cb := m.onError
	m.mu.Unlock()
	if !already && cb != nil {
		cb(err)
	}
}

// Collected returns every error reported through this Manager so far,
// repeats of the same message included, aggregated into one (spec.md §7,
// §8 property 7). Returns nil if none were reported.
func (m *Manager) Collected() *diagnostics.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return diagnostics.Aggregate(m.collected)
}

// Handle is returned by Spawn; Await blocks until the spawned function
// completes (spec.md §4.3: "spawn(future) -> handle: ... handle yields its
// result when awaited").
type Handle[T any] struct {
	done chan struct{}
	val  T
	err  *diagnostics.Error
}

// Await blocks until the handle's task completes, or ctx is cancelled.
func (h *Handle[T]) Await(ctx context.Context) (T, *diagnostics.Error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, diagnostics.Cancelled()
	}
}

// Spawn acquires a worker slot, blocking until one is free or the Manager
// is aborted, then runs fn on its own goroutine and returns a Handle
// without waiting for fn (spec.md §4.3). If the Manager is aborted before
// a slot is acquired, fn is never run and the Handle observes Cancelled.
func Spawn[T any](m *Manager, fn func(ctx context.Context) (T, *diagnostics.Error)) *Handle[T] {
	h := &Handle[T]{done: make(chan struct{})}

	if m.Aborted() {
		h.err = diagnostics.Cancelled()
		close(h.done)
		return h
	}

	if err := m.sem.Acquire(m.rootCtx, 1); err != nil {
		h.err = diagnostics.Cancelled()
		close(h.done)
		return h
	}

	if m.logger != nil {
		m.logger.TaskRunning("spawn")
	}

	go func() {
		defer m.sem.Release(1)
		defer close(h.done)

		if m.Aborted() {
			h.err = diagnostics.Cancelled()
			return
		}
		val, err := fn(m.rootCtx)
		if diagnostics.IsCancelled(err) {
			h.err = err
			return
		}
		if err != nil {
			m.report(err)
			if m.aggregateErrors {
				h.err = err
				return
			}
			m.Abort()
			h.err = err
			return
		}
		h.val = val
	}()

	return h
}

// BlockOn drives a future to completion from a non-worker thread (spec.md
// §4.3: "block_on(future)"), used at the top level (e.g. the CLI's main
// entry point).
func BlockOn[T any](m *Manager, fn func(ctx context.Context) (T, *diagnostics.Error)) (T, *diagnostics.Error) {
	return fn(m.rootCtx)
}

// Package value implements the lazy, content-addressed Value graph that is
// the heart of the engine (spec.md §3, §4.1). A Value knows its identity
// without being evaluated (unless eval-for-id is set), evaluates its
// evaluator future at most once no matter how many goroutines await it,
// and carries sibling metadata that does not participate in identity.
package value

import (
	"context"
	"sync"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/identity"
)

// Evaluator is the one-shot future body of a Value. It must be
// cancellation-safe at every suspension point (spec.md §4.1): if ctx is
// cancelled while the evaluator is running, the evaluator should return
// promptly once it notices, but does not have to poll ctx continuously.
type Evaluator func(ctx context.Context) (Data, *diagnostics.Error)

// Value is a node in the lazy evaluation graph (spec.md §3). It is
// immutable once built except for metadata mutation and identity override.
type Value struct {
	typ     identity.Type
	hasType bool
	deps    []identity.Dep

	evalForID bool
	evaluator Evaluator

	idMu    sync.Mutex
	id      identity.ID
	idSet   bool
	idEager bool // true once eval-for-id has forced evaluation for identity

	once    sync.Once
	done    chan struct{}
	mu      sync.Mutex
	result  Data
	err     *diagnostics.Error
	settled bool

	metaMu sync.RWMutex
	meta   map[identity.ID]*Value
}

// New constructs a typed lazy value (spec.md §4.1: "value(type, deps,
// evaluator) -> Value").
func New(typ identity.Type, deps []identity.Dep, eval Evaluator) *Value {
	return &Value{
		typ:       typ,
		hasType:   true,
		deps:      append([]identity.Dep(nil), deps...),
		evaluator: eval,
		done:      make(chan struct{}),
	}
}

// Dyn constructs a value whose type is revealed upon evaluation (spec.md
// §4.1: "dyn_value(deps, evaluator) -> Value"). HasType reports !ok for a
// Dyn value, both before and after Await: the type of the evaluated data is
// not recorded on the Value.
func Dyn(deps []identity.Dep, eval Evaluator) *Value {
	return &Value{
		deps:      append([]identity.Dep(nil), deps...),
		evaluator: eval,
		done:      make(chan struct{}),
	}
}

// Const constructs an evaluated-on-construction value (spec.md §4.1:
// "constant(type, data) -> Value"). Identity is derived from (type, data)
// via a content hash, matching the ValueByContent contract for constants:
// two constants with equal type and byte-identical content share identity
// regardless of how they were produced (spec.md §8 S2).
func Const(typ identity.Type, data Data, contentBytes []byte) *Value {
	v := &Value{
		typ:       typ,
		hasType:   true,
		evaluator: func(context.Context) (Data, *diagnostics.Error) { return data, nil },
		done:      make(chan struct{}),
	}
	v.idMu.Lock()
	v.id = identity.ByContent(typ, contentBytes)
	v.idSet = true
	v.idMu.Unlock()
	// A constant's evaluator is trivial; settle it eagerly so Await never
	// blocks and concurrent identity reads never race the once.
	v.once.Do(func() {
		v.mu.Lock()
		v.result, v.err, v.settled = data, nil, true
		v.mu.Unlock()
		close(v.done)
	})
	return v
}

// HasType reports whether the Value's type is known ahead of evaluation.
func (v *Value) HasType() (identity.Type, bool) {
	return v.typ, v.hasType
}

// Deps returns the Value's ordered dependency fingerprints.
func (v *Value) Deps() []identity.Dep {
	return append([]identity.Dep(nil), v.deps...)
}

// SetEvalForID marks the Value so that Identity forces evaluation before
// returning (spec.md §3: "used when identity depends on
// dynamically-discovered data"). Must be called before Identity is first
// read.
func (v *Value) SetEvalForID() {
	v.idMu.Lock()
	v.evalForID = true
	v.idMu.Unlock()
}

// Identity returns the Value's 128-bit content identity, computing and
// memoising it from Deps if not already set or overridden (spec.md §4.1:
// "Identity algorithm"). If eval-for-id is set, Identity blocks on a full
// evaluation using a background context — callers needing cancellation
// should prefer IdentityContext.
func (v *Value) Identity() identity.ID {
	id, _ := v.IdentityContext(context.Background())
	return id
}

// IdentityContext is Identity with explicit cancellation for the
// eval-for-id case.
func (v *Value) IdentityContext(ctx context.Context) (identity.ID, *diagnostics.Error) {
	v.idMu.Lock()
	if v.idSet {
		id := v.id
		v.idMu.Unlock()
		return id, nil
	}
	forceEval := v.evalForID
	v.idMu.Unlock()

	if forceEval {
		_, err := v.Await(ctx)
		if err != nil {
			return identity.ID{}, err
		}
		// Await does not itself set identity for eval-for-id values unless
		// the evaluator called SetIdentity; fall through to the default
		// derivation over deps so identity is still well-defined.
	}

	v.idMu.Lock()
	defer v.idMu.Unlock()
	if v.idSet {
		return v.id, nil
	}
	v.id = identity.Derive(v.typ, v.deps)
	v.idSet = true
	return v.id, nil
}

// SetIdentity overrides the memoised identity (spec.md §4.1:
// "set_identity"), used for dependency injection.
func (v *Value) SetIdentity(id identity.ID) {
	v.idMu.Lock()
	v.id = id
	v.idSet = true
	v.idMu.Unlock()
}

// Await drives the evaluator to completion, idempotently and
// concurrency-safely (spec.md §4.1: "await(v) -> data | error"). The first
// call starts the evaluator body on its own goroutine, exactly once across
// all callers; every caller, including this one on repeat calls, waits on
// the done channel and observes the memoised result. If ctx is cancelled
// before the Value settles, this particular call returns a Cancelled error
// while the evaluator keeps running for other awaiters (spec.md §4.1, §5).
// The evaluator receives the first caller's ctx, so an evaluator that stops
// when that ctx is cancelled settles the Value with the error it returns.
func (v *Value) Await(ctx context.Context) (Data, *diagnostics.Error) {
	v.once.Do(func() {
		go func() {
			data, err := v.evaluator(ctx)
			v.mu.Lock()
			v.result, v.err, v.settled = data, err, true
			v.mu.Unlock()
			close(v.done)
		}()
	})

	select {
	case <-v.done:
	case <-ctx.Done():
		if !v.Settled() {
			return nil, diagnostics.Cancelled()
		}
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result, v.err
}

// Settled reports whether the Value's evaluator has already run to
// completion (ok or error), without blocking.
func (v *Value) Settled() bool {
	select {
	case <-v.done:
		return true
	default:
		return false
	}
}

// SetMetadata attaches a sibling Value under a metadata key (spec.md
// §4.1). Metadata is not part of identity.
func (v *Value) SetMetadata(key identity.ID, meta *Value) {
	v.metaMu.Lock()
	if v.meta == nil {
		v.meta = make(map[identity.ID]*Value)
	}
	v.meta[key] = meta
	v.metaMu.Unlock()
}

// ClearMetadata removes a metadata entry.
func (v *Value) ClearMetadata(key identity.ID) {
	v.metaMu.Lock()
	delete(v.meta, key)
	v.metaMu.Unlock()
}

// Metadata reads a metadata entry by key.
func (v *Value) Metadata(key identity.ID) (*Value, bool) {
	v.metaMu.RLock()
	defer v.metaMu.RUnlock()
	m, ok := v.meta[key]
	return m, ok
}

// Package rtctx implements the Runtime Context that is threaded through
// every evaluation (spec.md §4.6): the Trait Registry, Task Manager,
// Store, Logger, and the dynamic-scope stack.
//
// Lexical scope (a function's captured environment) deliberately has no
// representation here — spec.md §4.6 calls it out as "not a runtime
// concern" — and lives instead in internal/evaluator's Environment,
// generalized from the teacher's internal/evaluator/environment.go.
package rtctx

import (
	"context"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/store"
	"github.com/vaelang/vael/internal/task"
	"github.com/vaelang/vael/internal/traits"
	"github.com/vaelang/vael/internal/value"
	"github.com/vaelang/vael/internal/vlog"
)

// Context bundles the four long-lived subsystems plus the current dynamic
// scope. A Context value is shared by reference for the subsystems but
// each Fork produces a Context carrying its own Scope pointer, so sibling
// tasks that fork independently never observe each other's bindings
// (spec.md §4.6: "concurrent forks in sibling tasks are isolated").
type Context struct {
	Traits *traits.Registry
	Tasks  *task.Manager
	Store  *store.Store
	Logger *vlog.Logger

	scope *Scope
}

// New builds a root Context with an empty dynamic scope.
func New(traitsReg *traits.Registry, tasks *task.Manager, st *store.Store, logger *vlog.Logger) *Context {
	return &Context{Traits: traitsReg, Tasks: tasks, Store: st, Logger: logger, scope: EmptyScope()}
}

// Get reads a dynamic-scope binding, walking only this Context's own Scope
// chain — the HAMT itself already represents the full chain of enclosing
// forks via structural sharing, so there is no separate "outer" pointer to
// walk (spec.md §4.6: "get(key) reads the innermost match").
func (c *Context) Get(key [16]byte) (*value.Value, bool) {
	return c.scope.Get(key)
}

// Mutator derives a new Scope from the current one, e.g. binding one more
// key before a nested future runs.
type Mutator func(*Scope) *Scope

// child returns a copy of c with its scope replaced, leaving c itself
// untouched — the basis for Fork's push/pop-by-construction discipline.
func (c *Context) child(s *Scope) *Context {
	cp := *c
	cp.scope = s
	return &cp
}

// Fork pushes a derived scope, runs future with a Context scoped to it,
// then returns — the pop is implicit because the mutated scope only ever
// lived on the temporary child Context (spec.md §4.6: "fork(mutator,
// future) pushes a derived scope, runs future, then pops").
func Fork[T any](ctx context.Context, c *Context, mutate Mutator, future func(context.Context, *Context) (T, *diagnostics.Error)) (T, *diagnostics.Error) {
	child := c.child(mutate(c.scope))
	return future(ctx, child)
}

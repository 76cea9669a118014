// Package evaluator translates a parsed vael.Program into the lazy Value
// graph described in SPEC_FULL.md §3/§4.1: every AST node becomes a Value
// whose dependencies are its subnodes' Values and whose evaluator closure
// performs the node's operation, dispatched through the Trait Registry.
//
// Grounded on the teacher's internal/evaluator tree-walking shape (an
// Environment-threaded Eval(node, env) function operating by type switch
// over ast.Node), but building lazy Values instead of eagerly-computed
// Objects: each case here constructs a *value.Value with content-addressed
// identity rather than returning a final result directly.
package evaluator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vaelang/vael/internal/ast"
	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/identity"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/task"
	"github.com/vaelang/vael/internal/traits"
	"github.com/vaelang/vael/internal/value"
)

// Loader is the subset of internal/loader.Loader the evaluator needs for
// `load(name)` calls. Declared as an interface here (rather than importing
// internal/loader directly) so the two packages can depend on each other's
// behavior without an import cycle: internal/loader depends on an injected
// ScriptEvaluator function, and internal/evaluator depends on an injected
// Loader.
type Loader interface {
	Load(ctx context.Context, rc *rtctx.Context, workDir, name string) (*value.Value, *diagnostics.Error)
}

// Evaluator binds AST nodes to Values given a runtime Context. A single
// Evaluator evaluates one program at a time; the entry point constructs a
// fresh one per loaded file (internal/loader.Load rejects a second load of
// a path that is already in progress, so this is never shared concurrently
// for a single file).
type Evaluator struct {
	Loader  Loader
	WorkDir string
	file    string
}

func New(l Loader, workDir string) *Evaluator {
	return &Evaluator{Loader: l, WorkDir: workDir}
}

// EvalProgram binds every top-level expression of prog in order within a
// fresh top-level Environment, returning the last expression's Value (or a
// Unit Value for an empty program), matching Do's "sequence, last value
// wins" semantics (SPEC_FULL.md §1).
func (ev *Evaluator) EvalProgram(rc *rtctx.Context, prog *ast.Program) *value.Value {
	ev.file = prog.File
	env := NewEnvironment()
	if len(prog.Exprs) == 0 {
		return constUnit()
	}
	var last *value.Value
	for _, e := range prog.Exprs {
		last = ev.eval(rc, env, e)
	}
	return last
}

func (ev *Evaluator) eval(rc *rtctx.Context, env *Environment, node ast.Expr) *value.Value {
	switch n := node.(type) {
	case *ast.IntLit:
		return constInt(n.Value)
	case *ast.FloatLit:
		return constFloat(n.Value)
	case *ast.StringLit:
		return constString(n.Value)
	case *ast.BoolLit:
		return constBool(n.Value)
	case *ast.UnitLit:
		return constUnit()
	case *ast.Ident:
		if v, ok := env.Get(n.Name); ok {
			return v
		}
		tok := n.Tok()
		loc := diagnostics.Location{File: ev.file, Line: tok.Line, Col: tok.Column}
		return errValue(diagnostics.New(diagnostics.KindResolution, "undefined name: "+n.Name).WithLocation(loc))
	case *ast.Let:
		v := ev.eval(rc, env, n.Value)
		env.Set(n.Name, v)
		return v
	case *ast.Do:
		return ev.evalDo(rc, env, n)
	case *ast.Lambda:
		return ev.evalLambda(rc, env, n)
	case *ast.Call:
		return ev.evalCall(rc, env, n)
	case *ast.ArrayLit:
		return ev.evalArray(rc, env, n)
	case *ast.MapLit:
		return ev.evalMap(rc, env, n)
	case *ast.Index:
		return ev.evalIndex(rc, env, n)
	default:
		return errValue(diagnostics.New(diagnostics.KindValue, fmt.Sprintf("evaluator: unhandled node %T", node)))
	}
}

func (ev *Evaluator) evalDo(rc *rtctx.Context, env *Environment, n *ast.Do) *value.Value {
	child := NewEnclosedEnvironment(env)
	if len(n.Body) == 0 {
		return constUnit()
	}
	var last *value.Value
	for _, e := range n.Body {
		last = ev.eval(rc, child, e)
	}
	return last
}

func (ev *Evaluator) evalLambda(rc *rtctx.Context, env *Environment, n *ast.Lambda) *value.Value {
	params := append([]string(nil), n.Params...)
	body := n.Body
	closureEnv := env

	apply := func(args []*value.Value) *value.Value {
		callEnv := NewEnclosedEnvironment(closureEnv)
		for i, p := range params {
			if i < len(args) {
				callEnv.Set(p, args[i])
			}
		}
		return ev.eval(rc, callEnv, body)
	}

	deps := make([]identity.Dep, 0, len(params)+1)
	deps = append(deps, identity.DepConst(0x10, []byte(fmt.Sprintf("lambda/%d", len(params)))))
	for _, p := range params {
		deps = append(deps, identity.DepConst(0x11, []byte(p)))
	}

	return value.New(TFunction, deps, func(context.Context) (value.Data, *diagnostics.Error) {
		return value.Function{Name: "", Params: params, Apply: apply}, nil
	})
}

func (ev *Evaluator) evalCall(rc *rtctx.Context, env *Environment, n *ast.Call) *value.Value {
	calleeV := ev.eval(rc, env, n.Callee)
	argVs := make([]*value.Value, len(n.Args))
	deps := make([]identity.Dep, 0, len(n.Args)+1)
	calleeID, _ := calleeV.HasType()
	deps = append(deps, identity.DepValue(calleeV.Identity(), calleeID))
	for i, a := range n.Args {
		argVs[i] = ev.eval(rc, env, a)
		t, _ := argVs[i].HasType()
		deps = append(deps, identity.DepValue(argVs[i].Identity(), t))
	}

	return value.Dyn(deps, func(ctx context.Context) (value.Data, *diagnostics.Error) {
		impl, ok := rc.Traits.GetImpl(calleeID, traits.Bind)
		if !ok {
			return nil, diagnostics.New(diagnostics.KindType, "call target has no Bind implementation")
		}
		bind, ok := impl.(traits.BindFunc)
		if !ok {
			return nil, diagnostics.New(diagnostics.KindType, "malformed Bind implementation")
		}
		argList := value.New(TArray, nil, func(context.Context) (value.Data, *diagnostics.Error) {
			return value.Array{Items: argVs}, nil
		})
		result, err := bind(ctx, calleeV, argList)
		if err != nil {
			return nil, err
		}
		return result.Await(ctx)
	})
}

// evalArray builds an Array Value whose items are awaited concurrently
// through the Task Manager when one is available on the Context, matching
// spec.md §4.3's worker pool rather than a hand-rolled goroutine fan-out.
func (ev *Evaluator) evalArray(rc *rtctx.Context, env *Environment, n *ast.ArrayLit) *value.Value {
	items := make([]*value.Value, len(n.Items))
	deps := make([]identity.Dep, 0, len(items))
	for i, it := range n.Items {
		items[i] = ev.eval(rc, env, it)
		t, _ := items[i].HasType()
		deps = append(deps, identity.DepValue(items[i].Identity(), t))
	}

	return value.New(TArray, deps, func(ctx context.Context) (value.Data, *diagnostics.Error) {
		if rc.Tasks != nil && len(items) > 1 {
			fns := make([]func(context.Context) (*value.Value, *diagnostics.Error), len(items))
			for i, it := range items {
				it := it
				fns[i] = func(ctx context.Context) (*value.Value, *diagnostics.Error) {
					if _, err := it.Await(ctx); err != nil {
						return nil, err
					}
					return it, nil
				}
			}
			_, err := task.JoinAll(rc.Tasks, fns)
			if err != nil {
				return nil, err
			}
		} else {
			for _, it := range items {
				if _, err := it.Await(ctx); err != nil {
					return nil, err
				}
			}
		}
		return value.Array{Items: items}, nil
	})
}

func (ev *Evaluator) evalMap(rc *rtctx.Context, env *Environment, n *ast.MapLit) *value.Value {
	entries := make([]value.MapEntry, len(n.Entries))
	deps := make([]identity.Dep, 0, len(entries)*2)
	for i, e := range n.Entries {
		k := ev.eval(rc, env, e.Key)
		v := ev.eval(rc, env, e.Value)
		entries[i] = value.MapEntry{Key: k, Val: v}
		kt, _ := k.HasType()
		vt, _ := v.HasType()
		deps = append(deps, identity.DepValue(k.Identity(), kt), identity.DepValue(v.Identity(), vt))
	}

	return value.New(TMap, deps, func(ctx context.Context) (value.Data, *diagnostics.Error) {
		for _, e := range entries {
			if _, err := e.Key.Await(ctx); err != nil {
				return nil, err
			}
			if _, err := e.Val.Await(ctx); err != nil {
				return nil, err
			}
		}
		return value.Map{Entries: entries}, nil
	})
}

func (ev *Evaluator) evalIndex(rc *rtctx.Context, env *Environment, n *ast.Index) *value.Value {
	target := ev.eval(rc, env, n.Target)
	key := ev.eval(rc, env, n.Key)
	targetT, _ := target.HasType()
	keyT, _ := key.HasType()
	deps := []identity.Dep{
		identity.DepValue(target.Identity(), targetT),
		identity.DepValue(key.Identity(), keyT),
	}

	return value.Dyn(deps, func(ctx context.Context) (value.Data, *diagnostics.Error) {
		tdata, err := target.Await(ctx)
		if err != nil {
			return nil, err
		}
		kdata, err := key.Await(ctx)
		if err != nil {
			return nil, err
		}
		switch t := tdata.(type) {
		case value.Array:
			idx, ok := kdata.(value.Int)
			if !ok {
				return nil, diagnostics.New(diagnostics.KindType, "array index must be an Int")
			}
			if int(idx) < 0 || int(idx) >= len(t.Items) {
				return nil, diagnostics.New(diagnostics.KindValue, fmt.Sprintf("array index %d out of range (len %d)", idx, len(t.Items)))
			}
			return t.Items[idx].Await(ctx)
		case value.Map:
			v, ok := t.Get(key.Identity())
			if !ok {
				return nil, diagnostics.New(diagnostics.KindValue, "key not found in map")
			}
			return v.Await(ctx)
		default:
			return nil, diagnostics.New(diagnostics.KindType, "indexing is only defined for Array and Map")
		}
	})
}

func constInt(v int64) *value.Value {
	return value.Const(TInt, value.Int(v), []byte(strconv.FormatInt(v, 10)))
}

func constFloat(v float64) *value.Value {
	return value.Const(TFloat, value.Float(v), []byte(strconv.FormatFloat(v, 'g', -1, 64)))
}

func constString(v string) *value.Value {
	return value.Const(TString, value.String(v), []byte(v))
}

func constBool(v bool) *value.Value {
	b := byte(0)
	if v {
		b = 1
	}
	return value.Const(TBool, value.Bool(v), []byte{b})
}

func constUnit() *value.Value {
	return value.Const(TUnit, value.Unit{}, nil)
}

func errValue(err *diagnostics.Error) *value.Value {
	return value.Const(TError, value.ErrorData{Err: err}, []byte(err.Error()))
}

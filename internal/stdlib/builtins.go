package stdlib

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/evaluator"
	"github.com/vaelang/vael/internal/identity"
	"github.com/vaelang/vael/internal/value"
)

// Builtins returns the name -> Value table seeded into every top-level
// Environment (evaluator.Entry), grounded on the teacher's flat
// evaluator.Builtins map (internal/evaluator/builtins.go) but holding
// Values instead of Objects so a builtin participates in the identity
// graph like any other function.
func Builtins() evaluator.Builtins {
	return evaluator.Builtins{
		"print":   fn1("print", printImpl),
		"typeOf":  fn1("typeOf", typeOfImpl),
		"add":     fn2("add", arith(func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })),
		"sub":     fn2("sub", arith(func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })),
		"mul":     fn2("mul", arith(func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })),
		"eq":      fn2("eq", eqImpl),
		"len":     fn1("len", lenImpl),
		"display": fn1("display", displayImpl),
	}
}

func fn1(name string, impl func(ctx context.Context, a *value.Value) (value.Data, *diagnostics.Error)) *value.Value {
	apply := func(args []*value.Value) *value.Value {
		if len(args) != 1 {
			return errValue(diagnostics.New(diagnostics.KindValue, name+"() expects exactly one argument"))
		}
		a := args[0]
		deps := []identity.Dep{depOf(a)}
		return value.Dyn(deps, func(ctx context.Context) (value.Data, *diagnostics.Error) {
			return impl(ctx, a)
		})
	}
	return builtinValue(name, []string{"a"}, apply)
}

func fn2(name string, impl func(ctx context.Context, a, b *value.Value) (value.Data, *diagnostics.Error)) *value.Value {
	apply := func(args []*value.Value) *value.Value {
		if len(args) != 2 {
			return errValue(diagnostics.New(diagnostics.KindValue, name+"() expects exactly two arguments"))
		}
		a, b := args[0], args[1]
		deps := []identity.Dep{depOf(a), depOf(b)}
		return value.Dyn(deps, func(ctx context.Context) (value.Data, *diagnostics.Error) {
			return impl(ctx, a, b)
		})
	}
	return builtinValue(name, []string{"a", "b"}, apply)
}

func builtinValue(name string, params []string, apply func([]*value.Value) *value.Value) *value.Value {
	deps := []identity.Dep{identity.DepConst(0x12, []byte("builtin/"+name))}
	return value.New(evaluator.TFunction, deps, func(context.Context) (value.Data, *diagnostics.Error) {
		return value.Function{Name: name, Params: params, Apply: apply}, nil
	})
}

func depOf(v *value.Value) identity.Dep {
	t, _ := v.HasType()
	return identity.DepValue(v.Identity(), t)
}

func errValue(err *diagnostics.Error) *value.Value {
	return value.Const(evaluator.TError, value.ErrorData{Err: err}, []byte(err.Error()))
}

func printImpl(ctx context.Context, a *value.Value) (value.Data, *diagnostics.Error) {
	data, err := a.Await(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(os.Stdout, value.Inspect(data))
	return value.Unit{}, nil
}

func displayImpl(ctx context.Context, a *value.Value) (value.Data, *diagnostics.Error) {
	data, err := a.Await(ctx)
	if err != nil {
		return nil, err
	}
	return value.String(value.Inspect(data)), nil
}

func typeOfImpl(ctx context.Context, a *value.Value) (value.Data, *diagnostics.Error) {
	if _, err := a.Await(ctx); err != nil {
		return nil, err
	}
	t, ok := a.HasType()
	if !ok {
		return nil, diagnostics.New(diagnostics.KindType, "typeOf: value has no known type")
	}
	return value.TypeData{T: t}, nil
}

func lenImpl(ctx context.Context, a *value.Value) (value.Data, *diagnostics.Error) {
	data, err := a.Await(ctx)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case value.Array:
		return value.Int(len(v.Items)), nil
	case value.Map:
		return value.Int(len(v.Entries)), nil
	case value.String:
		return value.Int(len(v)), nil
	default:
		return nil, diagnostics.New(diagnostics.KindType, fmt.Sprintf("len() is not defined for %s", data.Kind()))
	}
}

func eqImpl(ctx context.Context, a, b *value.Value) (value.Data, *diagnostics.Error) {
	if _, err := a.Await(ctx); err != nil {
		return nil, err
	}
	if _, err := b.Await(ctx); err != nil {
		return nil, err
	}
	return value.Bool(a.Identity() == b.Identity()), nil
}

// arith builds a two-argument numeric builtin that promotes to Float if
// either operand is a Float, matching how a small dynamically-typed
// language's arithmetic usually unifies.
func arith(iop func(a, b int64) int64, fop func(a, b float64) float64) func(context.Context, *value.Value, *value.Value) (value.Data, *diagnostics.Error) {
	return func(ctx context.Context, av, bv *value.Value) (value.Data, *diagnostics.Error) {
		a, err := av.Await(ctx)
		if err != nil {
			return nil, err
		}
		b, err := bv.Await(ctx)
		if err != nil {
			return nil, err
		}
		af, aIsFloat, aOk := numeric(a)
		bf, bIsFloat, bOk := numeric(b)
		if !aOk || !bOk {
			return nil, diagnostics.New(diagnostics.KindType, "arithmetic requires Int or Float operands")
		}
		if aIsFloat || bIsFloat {
			return value.Float(fop(af, bf)), nil
		}
		return value.Int(iop(int64(af), int64(bf))), nil
	}
}

func numeric(d value.Data) (f float64, isFloat bool, ok bool) {
	switch v := d.(type) {
	case value.Int:
		return float64(v), false, true
	case value.Float:
		return float64(v), true, true
	default:
		return 0, false, false
	}
}

// docEntries backs the CLI's -doc flag (SPEC_FULL.md §6, grounded on the
// teacher's modules.GetDocPackage/FormatDocPackage doc surface, shrunk from
// a package tree down to a flat table since this standard library has no
// package hierarchy of its own).
var docEntries = map[string]string{
	"print":   "print(x) -- awaits x and writes its Display rendering to stdout, then returns Unit.",
	"typeOf":  "typeOf(x) -- awaits x and returns its Type as a Value.",
	"add":     "add(a, b) -- numeric addition; promotes to Float if either operand is a Float.",
	"sub":     "sub(a, b) -- numeric subtraction; promotes to Float if either operand is a Float.",
	"mul":     "mul(a, b) -- numeric multiplication; promotes to Float if either operand is a Float.",
	"eq":      "eq(a, b) -- Bool, true iff a and b share the same content identity.",
	"len":     "len(x) -- element count for an Array or Map, byte length for a String.",
	"display": "display(x) -- awaits x and returns its Display rendering as a String.",
	"load":    "load(name) -- resolves name against the loader's search path and returns its cached Value.",
}

// Doc looks up a builtin's one-line description for the CLI's -doc flag.
func Doc(name string) (string, bool) {
	d, ok := docEntries[name]
	return d, ok
}

// DocNames returns every documented builtin name, sorted, for -doc with no
// argument.
func DocNames() []string {
	names := make([]string, 0, len(docEntries))
	for name := range docEntries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

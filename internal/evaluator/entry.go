package evaluator

import (
	"context"

	"github.com/vaelang/vael/internal/ast"
	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/lexer"
	"github.com/vaelang/vael/internal/parser"
	"github.com/vaelang/vael/internal/rtctx"
	"github.com/vaelang/vael/internal/value"
)

// Builtins are injected into every top-level Environment before a program
// runs (internal/stdlib populates this), keeping the evaluator itself free
// of any knowledge of specific builtin functions.
type Builtins map[string]*value.Value

// Entry builds a loader.ScriptEvaluator-shaped function bound to the given
// Loader and Builtins, wiring lex -> parse -> eval into the single entry
// point internal/loader.Loader.Eval expects (spec.md §4.5).
func Entry(ld Loader, builtins Builtins) func(ctx context.Context, rc *rtctx.Context, file string, source []byte) (*value.Value, *diagnostics.Error) {
	return func(ctx context.Context, rc *rtctx.Context, file string, source []byte) (*value.Value, *diagnostics.Error) {
		l := lexer.New(string(source))
		p := parser.New(file, l)
		prog, perr := p.ParseProgram()
		if perr != nil {
			return nil, perr
		}

		ev := &Evaluator{Loader: ld, WorkDir: workDirOf(file)}
		env := NewEnvironment()
		for name, v := range builtins {
			env.Set(name, v)
		}
		env.Set("load", loadBuiltin(ev, rc))

		return ev.evalProgramIn(rc, prog, env), nil
	}
}

// evalProgramIn is EvalProgram but over a caller-supplied top-level
// Environment, so Entry can seed it with builtins before evaluation starts.
func (ev *Evaluator) evalProgramIn(rc *rtctx.Context, prog *ast.Program, env *Environment) *value.Value {
	ev.file = prog.File
	if len(prog.Exprs) == 0 {
		return constUnit()
	}
	var last *value.Value
	for _, e := range prog.Exprs {
		last = ev.eval(rc, env, e)
	}
	return last
}

// loadBuiltin exposes `load(name)` to scripts, deferring to the injected
// Loader so the evaluator package never imports internal/loader directly.
func loadBuiltin(ev *Evaluator, rc *rtctx.Context) *value.Value {
	apply := func(args []*value.Value) *value.Value {
		if len(args) != 1 {
			return errValue(diagnostics.New(diagnostics.KindValue, "load() expects exactly one argument"))
		}
		return value.Dyn(nil, func(ctx context.Context) (value.Data, *diagnostics.Error) {
			if ev.Loader == nil {
				return nil, diagnostics.New(diagnostics.KindResolution, "load() is unavailable: no loader configured")
			}
			data, err := args[0].Await(ctx)
			if err != nil {
				return nil, err
			}
			name, ok := data.(value.String)
			if !ok {
				return nil, diagnostics.New(diagnostics.KindType, "load() argument must be a String")
			}
			loaded, loadErr := ev.Loader.Load(ctx, rc, ev.WorkDir, string(name))
			if loadErr != nil {
				return nil, loadErr
			}
			return loaded.Await(ctx)
		})
	}
	return value.New(TFunction, nil, func(context.Context) (value.Data, *diagnostics.Error) {
		return value.Function{Name: "load", Params: []string{"name"}, Apply: apply}, nil
	})
}

func workDirOf(file string) string {
	idx := -1
	for i := len(file) - 1; i >= 0; i-- {
		if file[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "."
	}
	return file[:idx]
}

package value

import (
	"context"
	"fmt"

	"github.com/vaelang/vael/internal/diagnostics"
)

// As evaluates v and produces a typed handle if its Data is of concrete
// type T, or a type error otherwise (spec.md §4.1: "typed_view::<T>(v)").
// Using a Go generic here is the idiomatic expression of a "typed view
// over a dynamically-typed value" — the teacher's own object model instead
// relies on a type switch per call site (internal/evaluator/object.go's
// ObjectType constants), which this generalizes into one reusable helper.
func As[T Data](v *Value, ctx context.Context) (T, *diagnostics.Error) {
	var zero T
	data, err := v.Await(ctx)
	if err != nil {
		return zero, err
	}
	t, ok := data.(T)
	if !ok {
		return zero, diagnostics.New(diagnostics.KindType,
			fmt.Sprintf("type error: expected %T, got %s", zero, data.Kind()))
	}
	return t, nil
}

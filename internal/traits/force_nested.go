package traits

import (
	"context"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/value"
)

// ForceNested recursively evaluates v and every Value reachable via the
// NestedValues trait (spec.md §4.1: "force_nested(v)"). Types with no
// registered NestedValues implementation are treated as leaves.
func ForceNested(ctx context.Context, reg *Registry, v *value.Value) *diagnostics.Error {
	seen := make(map[*value.Value]struct{})
	return forceNested(ctx, reg, v, seen)
}

func forceNested(ctx context.Context, reg *Registry, v *value.Value, seen map[*value.Value]struct{}) *diagnostics.Error {
	if v == nil {
		return nil
	}
	if _, dup := seen[v]; dup {
		return nil
	}
	seen[v] = struct{}{}

	if _, err := v.Await(ctx); err != nil {
		return err
	}

	typ, ok := v.HasType()
	if !ok {
		return nil
	}
	impl, ok := reg.GetImpl(typ, NestedValues)
	if !ok {
		return nil
	}
	fn, ok := impl.(NestedValuesFunc)
	if !ok {
		return nil
	}
	children, err := fn(ctx, v)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := forceNested(ctx, reg, c, seen); err != nil {
			return err
		}
	}
	return nil
}

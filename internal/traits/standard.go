package traits

import (
	"context"
	"io"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/value"
)

// Standard trait identifiers (spec.md §4.2).
const (
	Display        TraitID = "Display"
	Stored         TraitID = "Stored"
	IntoTyped      TraitID = "IntoTyped" // parameterised, see IntoTypedOf
	Bind           TraitID = "Bind"
	ValueByContent TraitID = "ValueByContent"
	NestedValues   TraitID = "NestedValues"
	TypeName       TraitID = "TypeName"
)

// IntoTypedOf names the parameterised IntoTyped<T> trait for a given
// target type name, e.g. IntoTypedOf("Bool") == "IntoTyped<Bool>".
func IntoTypedOf(targetTypeName string) TraitID {
	return TraitID("IntoTyped<" + targetTypeName + ">")
}

// DisplayFunc formats v's already-evaluated data into w.
type DisplayFunc func(ctx context.Context, v *value.Value, w io.Writer) *diagnostics.Error

// StoredPutFunc serializes v's data to w; StoredGetFunc is its inverse and
// must round-trip byte-for-byte (spec.md §8 property 3).
type StoredPutFunc func(ctx context.Context, v *value.Value, w io.Writer) *diagnostics.Error
type StoredGetFunc func(ctx context.Context, r io.Reader) (value.Data, *diagnostics.Error)

// StoredImpl bundles both directions of the Stored trait, since a type
// that can serialize but not deserialize (or vice versa) is never useful.
type StoredImpl struct {
	Put StoredPutFunc
	Get StoredGetFunc
}

// IntoTypedFunc converts v into a new Value of the trait's target type.
type IntoTypedFunc func(ctx context.Context, v *value.Value) (*value.Value, *diagnostics.Error)

// BindFunc implements the language's binding/pattern-match operator.
type BindFunc func(ctx context.Context, target *value.Value, arg *value.Value) (*value.Value, *diagnostics.Error)

// ValueByContentFunc re-identifies v by a hash of its evaluated content.
type ValueByContentFunc func(ctx context.Context, v *value.Value) (*value.Value, *diagnostics.Error)

// NestedValuesFunc enumerates inner Values reachable from v, for
// ForceNested and other deep operations.
type NestedValuesFunc func(ctx context.Context, v *value.Value) ([]*value.Value, *diagnostics.Error)

// TypeNameFunc returns a Type's display name.
type TypeNameFunc func() string

package store

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/identity"
	"github.com/vaelang/vael/internal/traits"
	"github.com/vaelang/vael/internal/value"
)

// ChildResolver reconstructs a previously-Put child Value by its identity
// and type, for composite Stored implementations (Array, Map) that have no
// access to the Environment that originally built their elements (spec.md
// §4.4: a composite's Stored::get must not need the original Environment).
type ChildResolver func(typ identity.Type, id identity.ID) *value.Value

type resolverKey struct{}

// withResolver installs a ChildResolver on ctx that lazily re-reads a
// child's own Stored bytes from s the first time it is awaited.
func withResolver(ctx context.Context, reg *traits.Registry, s *Store) context.Context {
	resolve := ChildResolver(func(typ identity.Type, id identity.ID) *value.Value {
		child := value.New(typ, nil, func(ctx context.Context) (value.Data, *diagnostics.Error) {
			data, err := Get(ctx, reg, s, typ, id)
			if err != nil {
				return nil, err
			}
			if data == nil {
				return nil, diagnostics.New(diagnostics.KindValue, fmt.Sprintf("store: child %s not found", id))
			}
			return data, nil
		})
		child.SetIdentity(id)
		return child
	})
	return context.WithValue(ctx, resolverKey{}, resolve)
}

// Resolver retrieves the ChildResolver that Get installs on ctx before
// calling a type's Stored::get, if any. Stored implementations for
// composite kinds use it to turn a decoded (type, identity) pair back into
// an awaitable *value.Value.
func Resolver(ctx context.Context) (ChildResolver, bool) {
	r, ok := ctx.Value(resolverKey{}).(ChildResolver)
	return r, ok
}

// Put serializes v via its type's Stored trait implementation and writes
// it under the "values" top-level item, keyed by v's identity (spec.md
// §4.4: "Stored::put(value, writer)").
func Put(ctx context.Context, reg *traits.Registry, s *Store, v *value.Value) *diagnostics.Error {
	typ, ok := v.HasType()
	if !ok {
		return diagnostics.New(diagnostics.KindType, "store: cannot persist a value with unknown type")
	}
	impl, ok := reg.GetImpl(typ, traits.Stored)
	if !ok {
		return diagnostics.New(diagnostics.KindType, fmt.Sprintf("store: no Stored implementation for type %s", typ.ID()))
	}
	stored, ok := impl.(traits.StoredImpl)
	if !ok {
		return diagnostics.New(diagnostics.KindType, "store: malformed Stored implementation")
	}

	root, err := s.Item("values")
	if err != nil {
		return diagnostics.New(diagnostics.KindValue, err.Error())
	}
	id, derr := v.IdentityContext(ctx)
	if derr != nil {
		return derr
	}
	item := root.Value(id)

	w, werr := item.Write()
	if werr != nil {
		return diagnostics.New(diagnostics.KindValue, werr.Error())
	}
	if perr := stored.Put(ctx, v, w); perr != nil {
		if sw, ok := w.(*writer); ok {
			sw.closed = true
			sw.f.Close()
			os.Remove(sw.tmpPath)
		}
		return perr
	}
	if cerr := w.Close(); cerr != nil {
		return diagnostics.New(diagnostics.KindValue, cerr.Error())
	}
	return nil
}

// Get reads back a previously-Put value's data for the given type and
// identity (spec.md §4.4: "Stored::get(reader) -> value"). Returns nil
// data and a nil error when the item does not exist or cannot be opened, so
// a miss is distinguishable from a decode error.
func Get(ctx context.Context, reg *traits.Registry, s *Store, typ identity.Type, id identity.ID) (value.Data, *diagnostics.Error) {
	impl, ok := reg.GetImpl(typ, traits.Stored)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindType, fmt.Sprintf("store: no Stored implementation for type %s", typ.ID()))
	}
	stored, ok := impl.(traits.StoredImpl)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindType, "store: malformed Stored implementation")
	}

	root, err := s.Item("values")
	if err != nil {
		return nil, diagnostics.New(diagnostics.KindValue, err.Error())
	}
	item := root.Value(id)
	if !item.Exists() {
		return nil, nil // cache miss, not an error (spec.md §4.4)
	}

	r, rerr := item.Read()
	if rerr != nil {
		return nil, nil // treat read failure as miss per §4.4/§5's partial-content contract
	}
	defer r.Close()
	return stored.Get(withResolver(ctx, reg, s), r)
}

// RoundTrip is a test helper exercising the Put-then-Get contract directly
// against in-memory buffers, without touching the filesystem — used to
// assert spec.md §8 property 3 ("Stored::get(store, put(store, v)) ≡ v")
// independent of Store's layout.
func RoundTrip(ctx context.Context, reg *traits.Registry, typ identity.Type, v *value.Value) (value.Data, *diagnostics.Error) {
	impl, ok := reg.GetImpl(typ, traits.Stored)
	if !ok {
		return nil, diagnostics.New(diagnostics.KindType, "no Stored implementation")
	}
	stored := impl.(traits.StoredImpl)
	var buf bytes.Buffer
	if err := stored.Put(ctx, v, &buf); err != nil {
		return nil, err
	}
	return stored.Get(ctx, &buf)
}

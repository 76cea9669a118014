// Package stdlib registers the standard trait implementations for the core
// value kinds and exposes the small set of builtin functions every script's
// top-level Environment starts with (SPEC_FULL.md §8, scenario S6:
// "IntoTyped<Bool> generated for every type via a predicate+factory pair").
//
// Grounded on the teacher's internal/evaluator/builtins.go and
// ext_registry.go: a flat table of name -> Object builtins plus a
// RegisterXxxTraits(eval, env) family of setup functions, generalized here
// from a fixed Object-method table into registrations against
// internal/traits.Registry.
package stdlib

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/evaluator"
	"github.com/vaelang/vael/internal/identity"
	"github.com/vaelang/vael/internal/store"
	"github.com/vaelang/vael/internal/traits"
	"github.com/vaelang/vael/internal/value"
)

// Install registers Display and TypeName for every core kind, Stored for
// every core kind except Function, Bind for Function, NestedValues for
// Array and Map, ValueByContent as a generator-by-trait covering every
// type, plus the IntoTyped<Bool> predicate+factory generator scenario S6
// calls out explicitly.
func Install(reg *traits.Registry) {
	installDisplay(reg)
	installStored(reg)
	installBind(reg)
	installValueByContent(reg)
	installNestedValues(reg)
	installTypeName(reg)
	installIntoTypedBool(reg)
}

func installDisplay(reg *traits.Registry) {
	display := func(ctx context.Context, v *value.Value, w io.Writer) *diagnostics.Error {
		data, err := v.Await(ctx)
		if err != nil {
			return err
		}
		_, werr := io.WriteString(w, value.Inspect(data))
		if werr != nil {
			return diagnostics.New(diagnostics.KindValue, werr.Error())
		}
		return nil
	}
	for _, t := range coreTypes() {
		reg.RegisterDirect(t, traits.Display, traits.DisplayFunc(display))
	}
}

// installStored registers a simple self-describing binary encoding: a
// one-byte kind tag followed by the kind-specific payload. Composite kinds
// (Array, Map) store their children's (type, identity) pairs and re-fetch
// them through the store.Resolver installed on ctx at Get time, so
// Stored::get never needs the original Environment (spec.md §8 property 3).
// Function is excluded: its payload is a Go closure with no representation
// independent of the Environment that built it (see DESIGN.md).
func installStored(reg *traits.Registry) {
	for _, t := range storedTypes() {
		t := t
		reg.RegisterDirect(t, traits.Stored, traits.StoredImpl{
			Put: func(ctx context.Context, v *value.Value, w io.Writer) *diagnostics.Error {
				data, err := v.Await(ctx)
				if err != nil {
					return err
				}
				return encodeData(ctx, w, data)
			},
			Get: func(ctx context.Context, r io.Reader) (value.Data, *diagnostics.Error) {
				return decodeData(ctx, r)
			},
		})
	}
}

// installBind registers the language's binding/pattern-match operator
// (spec.md §4.2: "Bind(target, arg) -> Value") for Function: applying a
// function to its call arguments, packed into a single Array-typed arg
// value so Bind keeps its two-argument shape regardless of arity.
// internal/evaluator.evalCall dispatches every call through this trait
// rather than type-asserting value.Function directly.
func installBind(reg *traits.Registry) {
	fn := traits.BindFunc(func(ctx context.Context, target *value.Value, arg *value.Value) (*value.Value, *diagnostics.Error) {
		data, err := target.Await(ctx)
		if err != nil {
			return nil, err
		}
		fnVal, ok := data.(value.Function)
		if !ok {
			return nil, diagnostics.New(diagnostics.KindType, "Bind target is not a function")
		}
		argData, err := arg.Await(ctx)
		if err != nil {
			return nil, err
		}
		args, ok := argData.(value.Array)
		if !ok {
			return nil, diagnostics.New(diagnostics.KindType, "Bind argument must be an argument list")
		}
		return fnVal.Apply(args.Items), nil
	})
	reg.RegisterDirect(evaluator.TFunction, traits.Bind, fn)
}

func installValueByContent(reg *traits.Registry) {
	fn := traits.ValueByContentFunc(func(ctx context.Context, v *value.Value) (*value.Value, *diagnostics.Error) {
		typ, ok := v.HasType()
		if !ok {
			return nil, diagnostics.New(diagnostics.KindType, "ValueByContent requires a typed value")
		}
		data, err := v.Await(ctx)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if eerr := encodeData(ctx, &buf, data); eerr != nil {
			return nil, eerr
		}
		reRooted := value.Const(typ, data, buf.Bytes())
		return reRooted, nil
	})
	reg.RegisterTraitGenerator(traits.ValueByContent, traits.TraitGenerator{
		Factory: func(identity.Type) (traits.Impl, bool) { return fn, true },
	})
}

func installNestedValues(reg *traits.Registry) {
	arrayFn := traits.NestedValuesFunc(func(ctx context.Context, v *value.Value) ([]*value.Value, *diagnostics.Error) {
		data, err := v.Await(ctx)
		if err != nil {
			return nil, err
		}
		arr, ok := data.(value.Array)
		if !ok {
			return nil, nil
		}
		return arr.Items, nil
	})
	reg.RegisterDirect(evaluator.TArray, traits.NestedValues, arrayFn)

	mapFn := traits.NestedValuesFunc(func(ctx context.Context, v *value.Value) ([]*value.Value, *diagnostics.Error) {
		data, err := v.Await(ctx)
		if err != nil {
			return nil, err
		}
		m, ok := data.(value.Map)
		if !ok {
			return nil, nil
		}
		out := make([]*value.Value, 0, len(m.Entries)*2)
		for _, e := range m.Entries {
			out = append(out, e.Key, e.Val)
		}
		return out, nil
	})
	reg.RegisterDirect(evaluator.TMap, traits.NestedValues, mapFn)
}

func installTypeName(reg *traits.Registry) {
	names := map[identity.ID]string{
		evaluator.TUnit.ID():     "Unit",
		evaluator.TBool.ID():     "Bool",
		evaluator.TInt.ID():      "Int",
		evaluator.TFloat.ID():    "Float",
		evaluator.TString.ID():   "String",
		evaluator.TArray.ID():    "Array",
		evaluator.TMap.ID():      "Map",
		evaluator.TFunction.ID(): "Function",
		evaluator.TError.ID():    "Error",
		evaluator.TType.ID():     "Type",
	}
	for _, t := range coreTypes() {
		t := t
		name := names[t.ID()]
		reg.RegisterDirect(t, traits.TypeName, traits.TypeNameFunc(func() string { return name }))
	}
}

// installIntoTypedBool wires the scenario S6 example verbatim: IntoTyped
// <Bool> is generated for every type via a predicate that always matches
// and a factory that maps any value to Bool(true), with a single direct
// exception registered for Unset mapping to Bool(false) (spec.md §8 S6,
// matching the ground-truth original's "Anything -> Bool(true)" plus
// "Unset -> false"). This is identity, not truthiness: Int(0), "", and an
// empty Array all become true — only the distinct Unset type is false.
func installIntoTypedBool(reg *traits.Registry) {
	alwaysTrue := traits.IntoTypedFunc(func(ctx context.Context, v *value.Value) (*value.Value, *diagnostics.Error) {
		if _, err := v.Await(ctx); err != nil {
			return nil, err
		}
		return value.Const(evaluator.TBool, value.Bool(true), []byte{boolByte(true)}), nil
	})
	reg.RegisterGenerator(traits.IntoTypedOf("Bool"), traits.Generator{
		Predicate: func(identity.Type) bool { return true },
		Factory:   func(identity.Type) (traits.Impl, bool) { return alwaysTrue, true },
	})

	alwaysFalse := traits.IntoTypedFunc(func(ctx context.Context, v *value.Value) (*value.Value, *diagnostics.Error) {
		if _, err := v.Await(ctx); err != nil {
			return nil, err
		}
		return value.Const(evaluator.TBool, value.Bool(false), []byte{boolByte(false)}), nil
	})
	reg.RegisterDirect(evaluator.TUnset, traits.IntoTypedOf("Bool"), alwaysFalse)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func coreTypes() []identity.Type {
	return []identity.Type{
		evaluator.TUnit, evaluator.TBool, evaluator.TInt, evaluator.TFloat,
		evaluator.TString, evaluator.TArray, evaluator.TMap, evaluator.TFunction,
		evaluator.TError, evaluator.TType,
	}
}

// storedTypes is coreTypes minus Function: a Function's payload is a Go
// closure (Apply), which has no byte representation independent of the
// Environment that built it, so Stored is never registered for it (see
// DESIGN.md's dropped-registration note).
func storedTypes() []identity.Type {
	return []identity.Type{
		evaluator.TUnit, evaluator.TBool, evaluator.TInt, evaluator.TFloat,
		evaluator.TString, evaluator.TArray, evaluator.TMap,
		evaluator.TError, evaluator.TType,
	}
}

// encodeData/decodeData implement the Stored wire format for every type
// registered by storedTypes. Composite values are stored shallowly: an
// Array/Map writes its children's (type, identity) pairs, not their
// content, then rebuilds them on decode through the store.Resolver
// installed on ctx by store.Get, so Stored::get never needs the original
// Environment (spec.md §8 property 3).
func encodeData(ctx context.Context, w io.Writer, data value.Data) *diagnostics.Error {
	if err := binary.Write(w, binary.BigEndian, uint8(data.Kind())); err != nil {
		return diagnostics.New(diagnostics.KindValue, err.Error())
	}
	switch v := data.(type) {
	case value.Unit:
	case value.Bool:
		return writeBytes(w, []byte{boolByte(bool(v))})
	case value.Int:
		return writeFixed(w, int64(v))
	case value.Float:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(float64(v)))
		return writeBytes(w, buf)
	case value.String:
		return writeLenPrefixed(w, []byte(v))
	case value.Array:
		if err := writeFixed(w, int64(len(v.Items))); err != nil {
			return err
		}
		for _, item := range v.Items {
			itemType, ok := item.HasType()
			if !ok {
				return diagnostics.New(diagnostics.KindType, "stdlib: array element has no type, cannot persist")
			}
			if err := writeTypeID(w, itemType); err != nil {
				return err
			}
			if err := writeID(w, item.Identity()); err != nil {
				return err
			}
		}
		return nil
	case value.Map:
		if err := writeFixed(w, int64(len(v.Entries))); err != nil {
			return err
		}
		for _, e := range v.Entries {
			kt, kok := e.Key.HasType()
			vt, vok := e.Val.HasType()
			if !kok || !vok {
				return diagnostics.New(diagnostics.KindType, "stdlib: map entry has no type, cannot persist")
			}
			if err := writeTypeID(w, kt); err != nil {
				return err
			}
			if err := writeID(w, e.Key.Identity()); err != nil {
				return err
			}
			if err := writeTypeID(w, vt); err != nil {
				return err
			}
			if err := writeID(w, e.Val.Identity()); err != nil {
				return err
			}
		}
		return nil
	case value.ErrorData:
		return encodeError(w, v.Err)
	case value.TypeData:
		return writeTypeID(w, v.T)
	default:
		return diagnostics.New(diagnostics.KindType, fmt.Sprintf("stdlib: %s has no Stored encoding", data.Kind()))
	}
	return nil
}

func decodeData(ctx context.Context, r io.Reader) (value.Data, *diagnostics.Error) {
	var kindByte uint8
	if err := binary.Read(r, binary.BigEndian, &kindByte); err != nil {
		return nil, diagnostics.New(diagnostics.KindValue, err.Error())
	}
	switch value.Kind(kindByte) {
	case value.KindUnit:
		return value.Unit{}, nil
	case value.KindBool:
		b, err := readByte(r)
		if err != nil {
			return nil, err
		}
		return value.Bool(b != 0), nil
	case value.KindInt:
		n, err := readFixed(r)
		if err != nil {
			return nil, err
		}
		return value.Int(n), nil
	case value.KindFloat:
		buf := make([]byte, 8)
		if _, ferr := io.ReadFull(r, buf); ferr != nil {
			return nil, diagnostics.New(diagnostics.KindValue, ferr.Error())
		}
		return value.Float(math.Float64frombits(binary.BigEndian.Uint64(buf))), nil
	case value.KindString:
		b, err := readLenPrefixed(r)
		if err != nil {
			return nil, err
		}
		return value.String(b), nil
	case value.KindArray:
		n, err := readFixed(r)
		if err != nil {
			return nil, err
		}
		resolve, ok := store.Resolver(ctx)
		if !ok && n > 0 {
			return nil, diagnostics.New(diagnostics.KindValue, "stdlib: decoding an Array requires a Store child resolver")
		}
		items := make([]*value.Value, n)
		for i := range items {
			typ, terr := readTypeID(r)
			if terr != nil {
				return nil, terr
			}
			id, ierr := readID(r)
			if ierr != nil {
				return nil, ierr
			}
			items[i] = resolve(typ, id)
		}
		return value.Array{Items: items}, nil
	case value.KindMap:
		n, err := readFixed(r)
		if err != nil {
			return nil, err
		}
		resolve, ok := store.Resolver(ctx)
		if !ok && n > 0 {
			return nil, diagnostics.New(diagnostics.KindValue, "stdlib: decoding a Map requires a Store child resolver")
		}
		entries := make([]value.MapEntry, n)
		for i := range entries {
			kt, kterr := readTypeID(r)
			if kterr != nil {
				return nil, kterr
			}
			kid, kiderr := readID(r)
			if kiderr != nil {
				return nil, kiderr
			}
			vt, vterr := readTypeID(r)
			if vterr != nil {
				return nil, vterr
			}
			vid, viderr := readID(r)
			if viderr != nil {
				return nil, viderr
			}
			entries[i] = value.MapEntry{Key: resolve(kt, kid), Val: resolve(vt, vid)}
		}
		return value.Map{Entries: entries}, nil
	case value.KindError:
		e, err := decodeError(r)
		if err != nil {
			return nil, err
		}
		return value.ErrorData{Err: e}, nil
	case value.KindType:
		typ, err := readTypeID(r)
		if err != nil {
			return nil, err
		}
		return value.TypeData{T: typ}, nil
	default:
		return nil, diagnostics.New(diagnostics.KindType, "stdlib: unsupported Stored kind on decode")
	}
}

// encodeError/decodeError serialize a diagnostics.Error's full chain
// (kind, frames with optional locations, and recursively-encoded causes)
// so a stored Error value round-trips as an equivalent chain, not just its
// rendered message.
func encodeError(w io.Writer, e *diagnostics.Error) *diagnostics.Error {
	if err := writeBytes(w, []byte{byte(e.Kind)}); err != nil {
		return err
	}
	if err := writeFixed(w, int64(len(e.Frames))); err != nil {
		return err
	}
	for _, f := range e.Frames {
		if err := writeLenPrefixed(w, []byte(f.Message)); err != nil {
			return err
		}
		if f.Location == nil {
			if err := writeBytes(w, []byte{0}); err != nil {
				return err
			}
			continue
		}
		if err := writeBytes(w, []byte{1}); err != nil {
			return err
		}
		if err := writeLenPrefixed(w, []byte(f.Location.File)); err != nil {
			return err
		}
		if err := writeFixed(w, int64(f.Location.Line)); err != nil {
			return err
		}
		if err := writeFixed(w, int64(f.Location.Col)); err != nil {
			return err
		}
	}
	if err := writeFixed(w, int64(len(e.Causes))); err != nil {
		return err
	}
	for _, c := range e.Causes {
		if err := encodeError(w, c); err != nil {
			return err
		}
	}
	return nil
}

func decodeError(r io.Reader) (*diagnostics.Error, *diagnostics.Error) {
	kindByte, err := readByte(r)
	if err != nil {
		return nil, err
	}
	nFrames, err := readFixed(r)
	if err != nil {
		return nil, err
	}
	frames := make([]diagnostics.Frame, nFrames)
	for i := range frames {
		msg, merr := readLenPrefixed(r)
		if merr != nil {
			return nil, merr
		}
		hasLoc, herr := readByte(r)
		if herr != nil {
			return nil, herr
		}
		frame := diagnostics.Frame{Message: string(msg)}
		if hasLoc == 1 {
			file, ferr := readLenPrefixed(r)
			if ferr != nil {
				return nil, ferr
			}
			line, lerr := readFixed(r)
			if lerr != nil {
				return nil, lerr
			}
			col, cerr := readFixed(r)
			if cerr != nil {
				return nil, cerr
			}
			frame.Location = &diagnostics.Location{File: string(file), Line: int(line), Col: int(col)}
		}
		frames[i] = frame
	}
	nCauses, err := readFixed(r)
	if err != nil {
		return nil, err
	}
	causes := make([]*diagnostics.Error, nCauses)
	for i := range causes {
		c, cerr := decodeError(r)
		if cerr != nil {
			return nil, cerr
		}
		causes[i] = c
	}
	return &diagnostics.Error{Kind: diagnostics.Kind(kindByte), Frames: frames, Causes: causes}, nil
}

func writeTypeID(w io.Writer, typ identity.Type) *diagnostics.Error {
	id := typ.ID()
	if err := writeBytes(w, id[:]); err != nil {
		return err
	}
	return writeLenPrefixed(w, typ.Params())
}

func readTypeID(r io.Reader) (identity.Type, *diagnostics.Error) {
	id, err := readID(r)
	if err != nil {
		return identity.Type{}, err
	}
	params, perr := readLenPrefixed(r)
	if perr != nil {
		return identity.Type{}, perr
	}
	return identity.TypeFromID(id, params), nil
}

func writeID(w io.Writer, id identity.ID) *diagnostics.Error {
	return writeBytes(w, id[:])
}

func readID(r io.Reader) (identity.ID, *diagnostics.Error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(r, buf); err != nil {
		return identity.ID{}, diagnostics.New(diagnostics.KindValue, err.Error())
	}
	var id identity.ID
	copy(id[:], buf)
	return id, nil
}

func writeBytes(w io.Writer, b []byte) *diagnostics.Error {
	if _, err := w.Write(b); err != nil {
		return diagnostics.New(diagnostics.KindValue, err.Error())
	}
	return nil
}

func writeFixed(w io.Writer, n int64) *diagnostics.Error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(n))
	return writeBytes(w, buf)
}

func readFixed(r io.Reader) (int64, *diagnostics.Error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, diagnostics.New(diagnostics.KindValue, err.Error())
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

func readByte(r io.Reader) (byte, *diagnostics.Error) {
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, diagnostics.New(diagnostics.KindValue, err.Error())
	}
	return buf[0], nil
}

func writeLenPrefixed(w io.Writer, b []byte) *diagnostics.Error {
	if err := writeFixed(w, int64(len(b))); err != nil {
		return err
	}
	return writeBytes(w, b)
}

func readLenPrefixed(r io.Reader) ([]byte, *diagnostics.Error) {
	n, err := readFixed(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, rerr := io.ReadFull(r, buf); rerr != nil {
		return nil, diagnostics.New(diagnostics.KindValue, rerr.Error())
	}
	return buf, nil
}

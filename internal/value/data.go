package value

import (
	"fmt"

	"github.com/vaelang/vael/internal/diagnostics"
	"github.com/vaelang/vael/internal/identity"
)

// Kind enumerates the well-known core payload shapes a Value's evaluated
// Data can take (spec.md §9: "a tagged-union of the well-known core types
// ... plus a fallback opaque box for plugin-defined types").
type Kind uint8

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindPath
	KindArray
	KindMap
	KindFunction
	KindError
	KindType
	KindBytes // [ADD] supplemented core kind
	KindBits  // [ADD] supplemented core kind
	KindPlugin
	KindUnset
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindPath:
		return "Path"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindFunction:
		return "Function"
	case KindError:
		return "Error"
	case KindType:
		return "Type"
	case KindBytes:
		return "Bytes"
	case KindBits:
		return "Bits"
	case KindPlugin:
		return "PluginData"
	case KindUnset:
		return "Unset"
	default:
		return "Unknown"
	}
}

// Data is the type-erased payload carried by an evaluated Value. Rather
// than a boxed vtable erasure (spec.md §9's first option), it is the
// interface-based tagged union spec.md §9 recommends as "a cleaner
// alternative in a strongly-typed implementation": one concrete type per
// Kind, discriminated by a type switch at dispatch sites (internal/stdlib,
// internal/evaluator).
type Data interface {
	Kind() Kind
}

// Unit is the single-valued payload kind, used for value-less statements
// and as a "no useful result" evaluator return.
type Unit struct{}

func (Unit) Kind() Kind { return KindUnit }

// Unset is the single-valued "nothing bound here" payload. It is the one
// documented exception to IntoTyped<Bool>'s "every value maps to true"
// rule (SPEC_FULL.md §8 S6): Unset maps to false, everything else to true.
type Unset struct{}

func (Unset) Kind() Kind { return KindUnset }

type Bool bool

func (Bool) Kind() Kind { return KindBool }

type Int int64

func (Int) Kind() Kind { return KindInt }

type Float float64

func (Float) Kind() Kind { return KindFloat }

type String string

func (String) Kind() Kind { return KindString }

// Path holds a filesystem path, kept distinct from String so trait
// implementations (Display, Stored) can render/serialize it differently.
type Path string

func (Path) Kind() Kind { return KindPath }

// Array is an ordered, immutable sequence of child Values.
type Array struct {
	Items []*Value
}

func (Array) Kind() Kind { return KindArray }

// MapEntry is one key/value pair of a Map. Keys are themselves Values so
// composite keys are possible, matching the language-level Map type.
type MapEntry struct {
	Key *Value
	Val *Value
}

// Map is an ordered, immutable association list. It favors simplicity over
// O(log n) lookup: Values are small, metadata-bearing maps in this engine,
// not general-purpose large dictionaries (those live in the standard
// library's own data structures, out of the core's scope).
type Map struct {
	Entries []MapEntry
}

func (Map) Kind() Kind { return KindMap }

// Get performs a linear scan comparing evaluated identities of keys.
func (m Map) Get(key identity.ID) (*Value, bool) {
	for _, e := range m.Entries {
		if e.Key.Identity() == key {
			return e.Val, true
		}
	}
	return nil, false
}

// Function is a callable closure value. Params names the parameter
// identities it binds on application; lexical capture is the evaluator
// glue's concern (spec.md §4.6: "lexical scope ... is not a runtime
// concern" of the core), so Function only carries enough to let Bind
// dispatch to an Apply implementation supplied by the evaluator.
type Function struct {
	Name   string
	Params []string
	Apply  func(args []*Value) *Value
}

func (Function) Kind() Kind { return KindFunction }

// ErrorData wraps a diagnostics.Error so it can flow through the graph as
// a first-class Value (spec.md §7: "an error is a Value of the Error
// type").
type ErrorData struct {
	Err *diagnostics.Error
}

func (ErrorData) Kind() Kind { return KindError }

// TypeData reifies a Type as a runtime value, used by typeOf/getType style
// builtins and by IntoTyped<T> generators.
type TypeData struct {
	T identity.Type
}

func (TypeData) Kind() Kind { return KindType }

// Bytes is a raw byte-string payload.
type Bytes []byte

func (Bytes) Kind() Kind { return KindBytes }

// Bits is a bit-precise byte-string payload: Data holds whole bytes,
// BitLen narrows the last byte down to fewer than 8 significant bits.
// Supplemented from the teacher's BITS_OBJ (internal/evaluator/object.go)
// to round out the core-kind tagged union beyond spec.md §9's base list.
type Bits struct {
	Data   []byte
	BitLen int
}

func (Bits) Kind() Kind { return KindBits }

// Plugin is the fallback opaque box for plugin-defined types (spec.md §9).
// TypeName documents the plugin-registered type for diagnostics; Payload
// is whatever native Go value the plugin's factory produced.
type Plugin struct {
	TypeName string
	Payload  any
}

func (Plugin) Kind() Kind { return KindPlugin }

// Inspect gives a best-effort human-readable rendering, used by the
// default Display trait and by debug logging. Richer, trait-customised
// rendering belongs to the traits/stdlib packages, not here.
func Inspect(d Data) string {
	switch v := d.(type) {
	case nil:
		return "<nil>"
	case Unit:
		return "()"
	case Unset:
		return "<unset>"
	case Bool:
		return fmt.Sprintf("%t", bool(v))
	case Int:
		return fmt.Sprintf("%d", int64(v))
	case Float:
		return fmt.Sprintf("%g", float64(v))
	case String:
		return fmt.Sprintf("%q", string(v))
	case Path:
		return string(v)
	case Array:
		return fmt.Sprintf("<array len=%d>", len(v.Items))
	case Map:
		return fmt.Sprintf("<map len=%d>", len(v.Entries))
	case Function:
		return fmt.Sprintf("<function %s/%d>", v.Name, len(v.Params))
	case ErrorData:
		return fmt.Sprintf("<error %s>", v.Err.Error())
	case TypeData:
		return fmt.Sprintf("<type %s>", v.T.ID())
	case Bytes:
		return fmt.Sprintf("<bytes len=%d>", len(v))
	case Bits:
		return fmt.Sprintf("<bits len=%d bitlen=%d>", len(v.Data), v.BitLen)
	case Plugin:
		return fmt.Sprintf("<plugin %s>", v.TypeName)
	default:
		return fmt.Sprintf("<unknown %T>", d)
	}
}

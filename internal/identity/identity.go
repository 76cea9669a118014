// Package identity implements the 128-bit stable hashing used to derive a
// Value's content identity from its type and dependencies (spec.md §3,
// §4.1). Identity must be deterministic across runs and machines, and
// dependency order must affect the result.
//
// Rather than hand-rolling a 128-bit hash, identities are produced with
// google/uuid's version-5 (namespace + name) construction, a dependency
// already required by the teacher's go.mod. A fixed namespace UUID plays
// the role of spec.md's "fixed seed".
package identity

import "github.com/google/uuid"

// Namespace is the fixed-seed root for all identity derivations. Changing
// it would change every identity in every store on disk, so it must never
// vary across builds of the same major version.
var Namespace = uuid.MustParse("8f14e45f-ceea-467e-958a-0d4d8c5e8e0a")

// ID is a 128-bit content identity.
type ID [16]byte

// String renders the canonical hyphenated hex form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Hex returns the identity as 32 lowercase hex characters with no
// separators — the form used for store paths (spec.md §4.4).
func (id ID) Hex() string {
	const hextable = "0123456789abcdef"
	buf := make([]byte, 32)
	for i, b := range id {
		buf[i*2] = hextable[b>>4]
		buf[i*2+1] = hextable[b&0x0f]
	}
	return string(buf)
}

// IsZero reports whether id is the zero identity (never a valid derived
// identity, since even a dependency-less value hashes its type id).
func (id ID) IsZero() bool {
	return id == ID{}
}

// Type is a namespaced UUID identifying a Value's payload shape, plus
// optional opaque parameter data for parameterised types such as
// IntoTyped<T> (spec.md §3).
type Type struct {
	id     ID
	params []byte
}

// NewType derives a Type from a stable name (e.g. "vael.core.Int") and
// optional parameter bytes.
func NewType(name string, params []byte) Type {
	return Type{id: deriveFromBytes([]byte(name)), params: append([]byte(nil), params...)}
}

// TypeFromID reconstructs a Type from a previously-derived ID and parameter
// bytes, rather than deriving a fresh id from a name. Used when decoding a
// stored reference to a child value (spec.md §4.4: Stored::get for a
// composite kind reconstructs its children by identity, not by re-running
// NewType).
func TypeFromID(id ID, params []byte) Type {
	return Type{id: id, params: append([]byte(nil), params...)}
}

// ID returns the type's 128-bit identifier (ignoring parameter data).
func (t Type) ID() ID { return t.id }

// Params returns the type's opaque parameter blob, if any.
func (t Type) Params() []byte { return t.params }

// Equal compares two Types structurally: same base id and same parameter
// bytes (spec.md §3: "Types are compared structurally").
func (t Type) Equal(o Type) bool {
	if t.id != o.id {
		return false
	}
	if len(t.params) != len(o.params) {
		return false
	}
	for i := range t.params {
		if t.params[i] != o.params[i] {
			return false
		}
	}
	return true
}

// IsZero reports whether t is the unset "no type yet known" value.
func (t Type) IsZero() bool {
	return t.id.IsZero() && len(t.params) == 0
}

// WithParams returns a copy of t carrying different parameter bytes, used
// to build parameterised types like IntoTyped<Bool> from a base Type.
func (t Type) WithParams(params []byte) Type {
	return Type{id: t.id, params: append([]byte(nil), params...)}
}

func deriveFromBytes(b []byte) ID {
	return ID(uuid.NewSHA1(Namespace, b))
}

// Dep is one entry in a Value's ordered dependency list: either another
// Value's identity plus its type, or an inline constant tagged with a byte
// so its position and kind participate in the hash (spec.md §4.1: "Dep
// lists are ordered ... Constants can be included as dependency bytes").
type Dep struct {
	ID    ID
	Type  ID
	Const []byte
	Tag   byte
}

// DepValue builds a Dep referencing another Value's identity and type.
func DepValue(id ID, typ Type) Dep {
	return Dep{ID: id, Type: typ.id, Tag: tagValue}
}

// DepConst builds a Dep carrying inline constant bytes, e.g. to fold a
// literal into a Value's identity without allocating a child Value.
func DepConst(tag byte, data []byte) Dep {
	return Dep{Const: append([]byte(nil), data...), Tag: tag}
}

const tagValue byte = 0x01

// Derive computes id = H(type_id ‖ type_params ‖ for each dep: body ‖
// tag_byte), extending spec.md §4.1's formula: a value dep's body is its
// identity followed by its type id, and a constant dep's body is its
// constant bytes. A dep counts as a value dep when it carries the value tag
// and no constant bytes, so a DepConst whose tag happens to equal the value
// tag still hashes its bytes. Permuting deps changes the result because the
// dependency bytes are concatenated in order, not combined
// order-independently.
func Derive(typ Type, deps []Dep) ID {
	buf := make([]byte, 0, 16+len(typ.params)+len(deps)*18)
	buf = append(buf, typ.id[:]...)
	buf = append(buf, typ.params...)
	for _, d := range deps {
		if d.Tag == tagValue && d.Const == nil {
			buf = append(buf, d.ID[:]...)
			buf = append(buf, d.Type[:]...)
		} else {
			buf = append(buf, d.Const...)
		}
		buf = append(buf, d.Tag)
	}
	return deriveFromBytes(buf)
}

// ByContent re-roots an identity under a hash of evaluated content bytes,
// rather than the inputs that produced it — the mechanism backing the
// ValueByContent trait (spec.md §4.2, §9).
func ByContent(typ Type, content []byte) ID {
	buf := make([]byte, 0, 16+len(content))
	buf = append(buf, typ.id[:]...)
	buf = append(buf, content...)
	return deriveFromBytes(buf)
}

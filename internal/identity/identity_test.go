package identity

import "testing"

func TestDeriveIsDeterministic(t *testing.T) {
	typ := NewType("vael.test.Thing", nil)
	deps := []Dep{DepConst(0x01, []byte("a")), DepConst(0x01, []byte("b"))}

	id1 := Derive(typ, deps)
	id2 := Derive(typ, deps)
	if id1 != id2 {
		t.Fatalf("Derive is not deterministic: %s != %s", id1, id2)
	}
}

func TestDeriveIsOrderSensitive(t *testing.T) {
	typ := NewType("vael.test.Thing", nil)
	forward := Derive(typ, []Dep{DepConst(0x01, []byte("a")), DepConst(0x01, []byte("b"))})
	backward := Derive(typ, []Dep{DepConst(0x01, []byte("b")), DepConst(0x01, []byte("a"))})
	if forward == backward {
		t.Fatalf("permuting deps should change identity")
	}
}

func TestDeriveDifferentTypesDiffer(t *testing.T) {
	t1 := NewType("vael.test.A", nil)
	t2 := NewType("vael.test.B", nil)
	if Derive(t1, nil) == Derive(t2, nil) {
		t.Fatalf("different types with no deps should not collide")
	}
}

func TestByContentSameInputsSameIdentity(t *testing.T) {
	typ := NewType("vael.test.Thing", nil)
	id1 := ByContent(typ, []byte("hello"))
	id2 := ByContent(typ, []byte("hello"))
	if id1 != id2 {
		t.Fatalf("ByContent should be deterministic for identical content")
	}

	id3 := ByContent(typ, []byte("world"))
	if id1 == id3 {
		t.Fatalf("ByContent should differ for different content")
	}
}

func TestTypeEqualComparesParams(t *testing.T) {
	base := NewType("vael.test.IntoTyped", nil)
	withBool := base.WithParams([]byte("Bool"))
	withInt := base.WithParams([]byte("Int"))

	if withBool.Equal(withInt) {
		t.Fatalf("types with different params should not be equal")
	}
	if !withBool.Equal(base.WithParams([]byte("Bool"))) {
		t.Fatalf("types with identical params should be equal")
	}
}

func TestIDIsZero(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Fatalf("zero-value ID should report IsZero")
	}
	typ := NewType("vael.test.Thing", nil)
	derived := Derive(typ, nil)
	if derived.IsZero() {
		t.Fatalf("a derived identity should never be zero")
	}
}

func TestHexLength(t *testing.T) {
	typ := NewType("vael.test.Thing", nil)
	id := Derive(typ, nil)
	if len(id.Hex()) != 32 {
		t.Fatalf("Hex() should be 32 characters, got %d", len(id.Hex()))
	}
}

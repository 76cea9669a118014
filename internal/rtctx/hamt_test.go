package rtctx

import "testing"

func TestEmptyScopeGetMisses(t *testing.T) {
	s := EmptyScope()
	if _, ok := s.Get([16]byte{1}); ok {
		t.Fatalf("empty scope should have no bindings")
	}
}

func TestPutIsImmutable(t *testing.T) {
	s0 := EmptyScope()
	s1 := s0.Put([16]byte{1}, nil)

	if _, ok := s0.Get([16]byte{1}); ok {
		t.Fatalf("Put must not mutate the original scope")
	}
	if _, ok := s1.Get([16]byte{1}); !ok {
		t.Fatalf("the new scope should see the binding")
	}
}

func TestPutOverwritesSameKey(t *testing.T) {
	s := EmptyScope()
	s = s.Put([16]byte{1}, nil)
	if s.Len() != 1 {
		t.Fatalf("expected 1 binding, got %d", s.Len())
	}
	s2 := s.Put([16]byte{1}, nil)
	if s2.Len() != 1 {
		t.Fatalf("overwriting an existing key should not grow the count, got %d", s2.Len())
	}
}

func TestManyDistinctKeysAllRetrievable(t *testing.T) {
	s := EmptyScope()
	var keys [][16]byte
	for i := 0; i < 200; i++ {
		var k [16]byte
		k[0] = byte(i)
		k[1] = byte(i >> 8)
		keys = append(keys, k)
		s = s.Put(k, nil)
	}
	if s.Len() != 200 {
		t.Fatalf("expected 200 bindings, got %d", s.Len())
	}
	for i, k := range keys {
		if _, ok := s.Get(k); !ok {
			t.Fatalf("key %d not found after %d puts", i, len(keys))
		}
	}
}

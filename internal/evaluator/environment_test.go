package evaluator

import "testing"

func TestEnvironmentGetSet(t *testing.T) {
	env := NewEnvironment()
	v := constInt(1)
	env.Set("x", v)
	got, ok := env.Get("x")
	if !ok || got != v {
		t.Fatalf("expected to find the bound value")
	}
}

func TestEnclosedEnvironmentFallsThroughToOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", constInt(1))
	inner := NewEnclosedEnvironment(outer)

	got, ok := inner.Get("x")
	if !ok || got == nil {
		t.Fatalf("expected inner to see outer's binding")
	}
}

func TestInnerShadowsOuter(t *testing.T) {
	outer := NewEnvironment()
	outer.Set("x", constInt(1))
	inner := NewEnclosedEnvironment(outer)
	shadow := constInt(2)
	inner.Set("x", shadow)

	got, ok := inner.Get("x")
	if !ok || got != shadow {
		t.Fatalf("expected inner's binding to shadow outer's")
	}
	outerGot, _ := outer.Get("x")
	if outerGot == shadow {
		t.Fatalf("setting in inner must not mutate outer's binding")
	}
}

func TestMissingNameNotFound(t *testing.T) {
	env := NewEnvironment()
	_, ok := env.Get("nope")
	if ok {
		t.Fatalf("expected missing name to report not found")
	}
}

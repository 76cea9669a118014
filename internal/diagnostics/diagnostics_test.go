package diagnostics

import "testing"

func TestWrapPreservesChain(t *testing.T) {
	root := New(KindResolution, "name not found")
	wrapped := Wrap("while loading module", root)

	if wrapped.Kind != KindResolution {
		t.Fatalf("Wrap must preserve the cause's kind, got %s", wrapped.Kind)
	}
	if len(wrapped.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(wrapped.Frames))
	}
	if wrapped.Frames[0].Message != "while loading module" {
		t.Fatalf("outermost frame should be the new message, got %q", wrapped.Frames[0].Message)
	}
	if wrapped.Frames[1].Message != "name not found" {
		t.Fatalf("innermost frame should be preserved, got %q", wrapped.Frames[1].Message)
	}
}

func TestWrapNilCauseStillProducesError(t *testing.T) {
	e := Wrap("top", nil)
	if e.Kind != KindValue {
		t.Fatalf("wrapping nil should produce a root KindValue error, got %s", e.Kind)
	}
}

func TestAggregateSingleUnwraps(t *testing.T) {
	e := New(KindValue, "solo")
	agg := Aggregate([]*Error{e})
	if agg != e {
		t.Fatalf("Aggregate of a single error must return it unchanged, not wrap it")
	}
}

func TestAggregateEmptyIsNil(t *testing.T) {
	if Aggregate(nil) != nil {
		t.Fatalf("Aggregate of no errors should be nil")
	}
	if Aggregate([]*Error{nil, nil}) != nil {
		t.Fatalf("Aggregate of only nils should be nil")
	}
}

func TestAggregateFlattensNestedAggregates(t *testing.T) {
	a := New(KindValue, "a")
	b := New(KindValue, "b")
	c := New(KindValue, "c")
	inner := Aggregate([]*Error{a, b})
	outer := Aggregate([]*Error{inner, c})

	if outer.Kind != KindAggregate {
		t.Fatalf("expected aggregate kind")
	}
	if len(outer.Causes) != 3 {
		t.Fatalf("nested aggregates must flatten, expected 3 causes, got %d", len(outer.Causes))
	}
}

func TestRenderTruncatesAtMaxFrames(t *testing.T) {
	e := New(KindValue, "root")
	e = Wrap("mid", e)
	e = Wrap("outer", e)

	full := e.Render(0)
	if full == "" {
		t.Fatalf("Render(0) should render the full chain")
	}

	truncated := e.Render(1)
	if !contains(truncated, "truncated") {
		t.Fatalf("Render with maxFrames=1 should mark the chain as truncated, got %q", truncated)
	}
}

func TestIsCancelledOnlyMatchesCancelledKind(t *testing.T) {
	if !IsCancelled(Cancelled()) {
		t.Fatalf("Cancelled() should report IsCancelled")
	}
	if IsCancelled(New(KindValue, "x")) {
		t.Fatalf("a plain value error should not report IsCancelled")
	}
	if IsCancelled(nil) {
		t.Fatalf("nil should not report IsCancelled")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

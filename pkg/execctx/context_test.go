package execctx

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	ctx := New()
	if err := ctx.Put("a.b.c", "x"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	val, ok := ctx.Get("a.b.c")
	if !ok {
		t.Fatalf("expected a.b.c to be present")
	}
	if val != "x" {
		t.Errorf("got %v, want x", val)
	}
}

func TestPutCreatesSequenceForNumericSegment(t *testing.T) {
	ctx := New()
	if err := ctx.Put("items.0.name", "first"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	val, ok := ctx.Get("items.0.name")
	if !ok || val != "first" {
		t.Fatalf("got (%v, %v), want (first, true)", val, ok)
	}
	arr, ok := ctx.Get("items")
	if !ok {
		t.Fatalf("expected items to be present")
	}
	if _, isSlice := arr.([]interface{}); !isSlice {
		t.Errorf("expected items to decode as a sequence, got %T", arr)
	}
}

func TestPutExtendsSequenceWithNulls(t *testing.T) {
	ctx := New()
	if err := ctx.Put("items.2", "third"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	arr, ok := ctx.Get("items")
	if !ok {
		t.Fatalf("expected items to be present")
	}
	seq, isSlice := arr.([]interface{})
	if !isSlice {
		t.Fatalf("expected items to decode as a sequence, got %T", arr)
	}
	if len(seq) != 3 {
		t.Fatalf("got length %d, want 3", len(seq))
	}
	if seq[0] != nil || seq[1] != nil {
		t.Errorf("expected padding entries to be nil, got %v, %v", seq[0], seq[1])
	}
	if seq[2] != "third" {
		t.Errorf("got %v, want third", seq[2])
	}
}

func TestGetAbsentPath(t *testing.T) {
	ctx := New()
	_, ok := ctx.Get("missing.path")
	if ok {
		t.Error("expected missing.path to be absent")
	}
}

func TestContainsKeyNullAmbiguity(t *testing.T) {
	ctx := New()
	if err := ctx.Put("flag", nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !ctx.ContainsKey("flag") {
		t.Error("expected containsKey to report true for an explicit null, per the preserved ambiguity")
	}
	if ctx.ContainsKey("absent") {
		t.Error("expected containsKey to report false for a genuinely absent key")
	}
}

func TestRemove(t *testing.T) {
	ctx := New()
	_ = ctx.Put("a.b", "v")
	val, ok := ctx.Remove("a.b")
	if !ok || val != "v" {
		t.Fatalf("got (%v, %v), want (v, true)", val, ok)
	}
	if ctx.ContainsKey("a.b") {
		t.Error("expected a.b to be gone after Remove")
	}
}

func TestDotPathContextScenarioF(t *testing.T) {
	ctx := New()
	_ = ctx.Put("user.addresses.0.city", "Paris")
	_ = ctx.Put("user.addresses.1.city", "Rome")

	if val, ok := ctx.Get("user.addresses.0.city"); !ok || val != "Paris" {
		t.Fatalf("got (%v, %v), want (Paris, true)", val, ok)
	}
	if val, ok := ctx.Get("user.addresses.1.city"); !ok || val != "Rome" {
		t.Fatalf("got (%v, %v), want (Rome, true)", val, ok)
	}
	addresses, ok := ctx.Get("user.addresses")
	if !ok {
		t.Fatalf("expected user.addresses to be present")
	}
	seq, isSlice := addresses.([]interface{})
	if !isSlice || len(seq) != 2 {
		t.Fatalf("expected user.addresses to be a 2-element sequence, got %T (%v)", addresses, addresses)
	}

	if _, ok := ctx.Remove("user.addresses.0"); !ok {
		t.Fatalf("expected user.addresses.0 to be removed")
	}

	// Removing index 0 shifts the former index 1 down to index 0, so the
	// same path now resolves to what was previously addresses.1 (spec.md:299).
	if val, ok := ctx.Get("user.addresses.0.city"); !ok || val != "Rome" {
		t.Fatalf("got (%v, %v), want (Rome, true) after reindex", val, ok)
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	ctx := New()
	_ = ctx.Put("a", "original")
	clone := ctx.DeepCopy()
	_ = clone.Put("a", "changed")

	orig, _ := ctx.Get("a")
	cloned, _ := clone.Get("a")
	if orig != "original" {
		t.Errorf("original mutated: got %v", orig)
	}
	if cloned != "changed" {
		t.Errorf("clone not mutated: got %v", cloned)
	}
}

package embedding

import (
	"math"
	"testing"
)

func TestFallback_Dimensions(t *testing.T) {
	f := NewFallback(1536)
	vec := f.Embed("hello world")
	if len(vec) != 1536 {
		t.Fatalf("expected 1536 dimensions, got %d", len(vec))
	}
}

func TestFallback_Deterministic(t *testing.T) {
	f := NewFallback(256)
	a := f.Embed("reciprocal rank fusion")
	b := f.Embed("reciprocal rank fusion")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFallback_NormalizedInputEquivalence(t *testing.T) {
	f := NewFallback(64)
	a := f.Embed("  Hello World  ")
	b := f.Embed("hello world")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("normalized-equal texts should embed identically, differ at %d", i)
		}
	}
}

func TestFallback_UnitNorm(t *testing.T) {
	f := NewFallback(512)
	for _, text := range []string{"a", "copy-on-write database branching", "query cache index"} {
		vec := f.Embed(text)
		var norm float64
		for _, v := range vec {
			norm += float64(v) * float64(v)
		}
		if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
			t.Errorf("vector for %q has norm %f, want 1", text, math.Sqrt(norm))
		}
	}
}

func TestFallback_DistinctTexts(t *testing.T) {
	f := NewFallback(128)
	a := f.Embed("alpha")
	b := f.Embed("omega")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct texts produced identical vectors")
	}
}

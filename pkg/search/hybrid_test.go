package search

import (
	"context"
	"testing"
)

func TestHybridCombinesAndWeights(t *testing.T) {
	vec := NewMemoryVectorIndex()
	vec.Upsert("a", []float64{1, 0})
	vec.Upsert("b", []float64{0, 1})

	text := NewMemoryTextIndex()
	text.Upsert("a", "rest http call")
	text.Upsert("b", "vector database search")

	results, err := Hybrid(context.Background(), vec, text, []float64{1, 0}, "rest http", 20, 10, nil)
	if err != nil {
		t.Fatalf("Hybrid failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected at least one result")
	}
	if results[0].ID != "a" {
		t.Errorf("expected a to rank first (matches both vector and text), got %s", results[0].ID)
	}
}

func TestHybridAppliesFilter(t *testing.T) {
	vec := NewMemoryVectorIndex()
	vec.Upsert("a", []float64{1, 0})
	vec.Upsert("b", []float64{1, 0})

	results, err := Hybrid(context.Background(), vec, nil, []float64{1, 0}, "", 20, 10, func(id string) bool {
		return id != "b"
	})
	if err != nil {
		t.Fatalf("Hybrid failed: %v", err)
	}
	for _, r := range results {
		if r.ID == "b" {
			t.Error("expected b to be filtered out")
		}
	}
}

func TestHybridLimitsResults(t *testing.T) {
	vec := NewMemoryVectorIndex()
	for i := 0; i < 5; i++ {
		vec.Upsert(string(rune('a'+i)), []float64{1, 0})
	}
	results, err := Hybrid(context.Background(), vec, nil, []float64{1, 0}, "", 20, 2, nil)
	if err != nil {
		t.Fatalf("Hybrid failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
}

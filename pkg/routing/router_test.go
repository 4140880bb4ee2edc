package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/eventbus"
	"github.com/cogniflow/orchestrator/pkg/registry"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type fakeCatalog struct {
	metamodels []types.WorkflowMetamodel
	err        error
}

func (f fakeCatalog) FindTopNHandlingIntent(ctx context.Context, intentID string, n int) ([]types.WorkflowMetamodel, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n >= 0 && len(f.metamodels) > n {
		return f.metamodels[:n], nil
	}
	return f.metamodels, nil
}

func workflowWithIntentScore(id, intentID string, score float64) types.WorkflowMetamodel {
	return types.WorkflowMetamodel{
		ID:             id,
		HandledIntents: []types.HandledIntent{{IntentID: intentID, Score: score}},
	}
}

func TestRouterFallsBackToCatalogWhenPoolEmpty(t *testing.T) {
	bus := eventbus.New()
	pool := registry.NewWorkflowPool(bus,
		func(string) (types.WorkflowMetamodel, error) { return types.WorkflowMetamodel{}, errors.New("unused") },
		func(string) (types.NodeMetamodel, error) { return types.NodeMetamodel{}, errors.New("unused") },
		registry.NewNodePool(bus, func(string) (types.NodeMetamodel, error) { return types.NodeMetamodel{}, nil }))

	catalog := fakeCatalog{metamodels: []types.WorkflowMetamodel{
		workflowWithIntentScore("wf-a", "intent-1", 0.9),
	}}
	r := New(pool, catalog)
	r.rng = func() float64 { return 0 }

	inst, err := r.Route(context.Background(), "intent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Metamodel.ID != "wf-a" {
		t.Fatalf("expected wf-a, got %s", inst.Metamodel.ID)
	}
}

func TestRouterReturnsErrorWhenNoCandidates(t *testing.T) {
	bus := eventbus.New()
	pool := registry.NewWorkflowPool(bus,
		func(string) (types.WorkflowMetamodel, error) { return types.WorkflowMetamodel{}, errors.New("unused") },
		func(string) (types.NodeMetamodel, error) { return types.NodeMetamodel{}, errors.New("unused") },
		registry.NewNodePool(bus, func(string) (types.NodeMetamodel, error) { return types.NodeMetamodel{}, nil }))

	r := New(pool, fakeCatalog{})
	_, err := r.Route(context.Background(), "intent-1")
	if !errors.Is(err, ErrNoWorkflowForIntent) {
		t.Fatalf("expected ErrNoWorkflowForIntent, got %v", err)
	}
}

func TestSampleIndexApproachesArgmaxAtLowTemperature(t *testing.T) {
	r := &Router{temperature: 0.01, rng: func() float64 { return 0.999999 }}
	idx := r.sampleIndex([]float64{0.1, 0.9, 0.5})
	if idx != 1 {
		t.Fatalf("expected low temperature to pick the max-scoring candidate, got index %d", idx)
	}
}

func TestSampleIndexSingleCandidateShortCircuits(t *testing.T) {
	r := &Router{temperature: DefaultTemperature, rng: func() float64 { return 0.5 }}
	if idx := r.sampleIndex([]float64{0.4}); idx != 0 {
		t.Fatalf("expected index 0 for a single candidate, got %d", idx)
	}
}

func TestRouterPrefersLivePoolOverCatalog(t *testing.T) {
	bus := eventbus.New()
	pool := registry.NewWorkflowPool(bus,
		func(string) (types.WorkflowMetamodel, error) { return types.WorkflowMetamodel{}, errors.New("unused") },
		func(string) (types.NodeMetamodel, error) { return types.NodeMetamodel{}, errors.New("unused") },
		registry.NewNodePool(bus, func(string) (types.NodeMetamodel, error) { return types.NodeMetamodel{}, nil }))

	pooled := workflowWithIntentScore("wf-pooled", "intent-1", 0.5)
	pool.GetOrCreate(pooled)

	catalog := fakeCatalog{metamodels: []types.WorkflowMetamodel{
		workflowWithIntentScore("wf-catalog-only", "intent-1", 0.9),
	}}
	r := New(pool, catalog)
	r.rng = func() float64 { return 0 }

	inst, err := r.Route(context.Background(), "intent-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Metamodel.ID != "wf-pooled" {
		t.Fatalf("expected the live pool candidate to win over the catalog, got %s", inst.Metamodel.ID)
	}
}

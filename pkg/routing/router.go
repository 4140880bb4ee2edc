package routing

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/cogniflow/orchestrator/pkg/registry"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// DefaultTemperature and DefaultTopN are §4.8's stated defaults.
const (
	DefaultTemperature = 0.8
	DefaultTopN        = 5
)

// WorkflowCatalog is the subset of catalog.WorkflowStore routing needs,
// declared locally so this package does not import pkg/catalog directly.
type WorkflowCatalog interface {
	FindTopNHandlingIntent(ctx context.Context, intentID string, n int) ([]types.WorkflowMetamodel, error)
}

// Router implements routeWorkflowRequest (§4.8).
type Router struct {
	pool        *registry.WorkflowPool
	catalog     WorkflowCatalog
	temperature float64
	topN        int
	// rng is swappable for deterministic tests; defaults to math/rand/v2.
	rng func() float64
}

// New returns a Router with the §4.8 defaults (T=0.8, N=5).
func New(pool *registry.WorkflowPool, catalog WorkflowCatalog) *Router {
	return &Router{
		pool:        pool,
		catalog:     catalog,
		temperature: DefaultTemperature,
		topN:        DefaultTopN,
		rng:         rand.Float64,
	}
}

// WithTemperature overrides the sampling temperature.
func (r *Router) WithTemperature(t float64) *Router {
	r.temperature = t
	return r
}

// WithTopN overrides the candidate pool size.
func (r *Router) WithTopN(n int) *Router {
	r.topN = n
	return r
}

// Route selects and returns a workflow instance for intentID, per §4.8:
// prefer the live instance pool's own top-N, falling back to the catalog's
// top-N metamodels, sampling between candidates by temperature.
func (r *Router) Route(ctx context.Context, intentID string) (*types.WorkflowInstance, error) {
	instances := r.pool.TopNHandlingIntent(intentID, r.topN)
	if len(instances) > 0 {
		scores := make([]float64, len(instances))
		for i, inst := range instances {
			scores[i], _ = inst.Metamodel.ScoreForIntent(intentID)
		}
		chosen := instances[r.sampleIndex(scores)]
		return r.pool.GetOrCreate(chosen.Metamodel), nil
	}

	metamodels, err := r.catalog.FindTopNHandlingIntent(ctx, intentID, r.topN)
	if err != nil {
		return nil, err
	}
	if len(metamodels) == 0 {
		return nil, ErrNoWorkflowForIntent
	}
	scores := make([]float64, len(metamodels))
	for i, m := range metamodels {
		scores[i], _ = m.ScoreForIntent(intentID)
	}
	chosen := metamodels[r.sampleIndex(scores)]
	return r.pool.GetOrCreate(chosen), nil
}

// sampleIndex implements temperature sampling over a descending-or-
// unordered score list (§4.8): w_i = exp((score_i - maxScore) / T),
// normalize, draw. As T -> 0 this approaches argmax; as T -> inf it
// approaches a uniform draw.
func (r *Router) sampleIndex(scores []float64) int {
	if len(scores) == 1 {
		return 0
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	weights := make([]float64, len(scores))
	var total float64
	t := r.temperature
	if t <= 0 {
		t = DefaultTemperature
	}
	for i, s := range scores {
		w := math.Exp((s - max) / t)
		weights[i] = w
		total += w
	}

	draw := r.rng() * total
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if draw <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}

package executor

import (
	"context"
	"fmt"
	"sync"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// Registry dispatches node processing to the NodeProcessor registered for a
// metamodel's family. Grounded on the teacher's type-keyed executor
// registry, generalized from a fixed three-value NodeType key to the
// five-member family discriminator.
type Registry struct {
	mu         sync.RWMutex
	processors map[string]NodeProcessor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[string]NodeProcessor)}
}

// Register adds a NodeProcessor to the registry. Returns
// ErrProcessorAlreadyRegistered if a processor for the family already
// exists.
func (r *Registry) Register(p NodeProcessor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	family := p.Family()
	if _, exists := r.processors[family]; exists {
		return fmt.Errorf("%w: %s", ErrProcessorAlreadyRegistered, family)
	}
	r.processors[family] = p
	return nil
}

// MustRegister registers a processor and panics on error. Intended for
// wiring at process startup, where a duplicate registration is a
// programming error.
func (r *Registry) MustRegister(p NodeProcessor) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Process dispatches to the processor registered for node's family.
func (r *Registry) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	r.mu.RLock()
	p, exists := r.processors[node.Family()]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrNoProcessorForFamily, node.Family())
	}
	return p.Process(ctx, ectx, node, detail)
}

// Get returns the processor registered for family, or nil.
func (r *Registry) Get(family string) NodeProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.processors[family]
}

// Families lists every family with a registered processor.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.processors))
	for family := range r.processors {
		out = append(out, family)
	}
	return out
}

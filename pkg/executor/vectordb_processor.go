package executor

import (
	"context"
	"fmt"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/search"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// VectorDBProcessor implements NodeProcessor for TOOL/VECTOR_DB nodes:
// reads the INPUT_VECTOR port, queries the collection's search.VectorIndex
// for its top-K, and writes RESULTS/FIRST_RESULT output ports.
type VectorDBProcessor struct {
	indexes map[string]search.VectorIndex
}

// NewVectorDBProcessor wires one search.VectorIndex per collection name
// (types.VectorDBConfig.CollectionName).
func NewVectorDBProcessor(indexes map[string]search.VectorIndex) *VectorDBProcessor {
	return &VectorDBProcessor{indexes: indexes}
}

func (p *VectorDBProcessor) Family() string { return "TOOL/VECTOR_DB" }

func (p *VectorDBProcessor) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	if node.VectorDB == nil {
		return ErrMissingTypeConfig
	}
	cfg := node.VectorDB

	idx, ok := p.indexes[cfg.CollectionName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrVectorIndexNotConfigured, cfg.CollectionName)
	}

	var query []float64
	var found bool
	for _, port := range node.InputPorts {
		if port.Role != types.PortRoleInputVector {
			continue
		}
		val, ok := ectx.Get(port.Key)
		if !ok {
			continue
		}
		query, found = toFloat64Slice(val)
		if found {
			break
		}
	}
	if !found {
		return ErrMissingInputVector
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = 10
	}
	hits, err := idx.TopK(ctx, query, topK)
	if err != nil {
		return fmt.Errorf("vector DB node search failed: %w", err)
	}

	results := make([]interface{}, len(hits))
	for i, h := range hits {
		results[i] = map[string]interface{}{"id": h.ID, "score": h.Score}
	}

	for _, port := range node.OutputPorts {
		switch port.Role {
		case types.PortRoleResults:
			if err := ectx.Put(port.Key, results); err != nil {
				return err
			}
		case types.PortRoleFirstResult:
			if len(results) > 0 {
				if err := ectx.Put(port.Key, results[0]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func toFloat64Slice(v interface{}) ([]float64, bool) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(arr))
	for _, el := range arr {
		switch n := el.(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		default:
			return nil, false
		}
	}
	return out, true
}

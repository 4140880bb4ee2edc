package executor

import (
	"context"
	"fmt"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// EmbeddingsProcessor implements NodeProcessor for AI/EMBEDDINGS nodes:
// reads the INPUT_TEXT port, calls the bridge's Embed, and writes the
// resulting vector to every OUTPUT_VECTOR port.
type EmbeddingsProcessor struct {
	bridge llm.EmbeddingBridge
}

// NewEmbeddingsProcessor wires an EmbeddingsProcessor to the given bridge.
func NewEmbeddingsProcessor(bridge llm.EmbeddingBridge) *EmbeddingsProcessor {
	return &EmbeddingsProcessor{bridge: bridge}
}

func (p *EmbeddingsProcessor) Family() string { return "AI/EMBEDDINGS" }

func (p *EmbeddingsProcessor) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	if node.Embeddings == nil {
		return ErrMissingTypeConfig
	}
	cfg := node.Embeddings

	var text string
	var found bool
	for _, port := range node.InputPorts {
		if port.Role != types.PortRoleInputText {
			continue
		}
		if val, ok := ectx.Get(port.Key); ok {
			text = fmt.Sprint(val)
			found = true
			break
		}
	}
	if !found {
		return ErrMissingInputText
	}

	vector, err := p.bridge.Embed(ctx, cfg.Model, text)
	if err != nil {
		return fmt.Errorf("embeddings node failed: %w", err)
	}

	for _, port := range node.OutputPorts {
		if port.Role == types.PortRoleOutputVector {
			out := make([]interface{}, len(vector))
			for i, f := range vector {
				out[i] = f
			}
			if err := ectx.Put(port.Key, out); err != nil {
				return err
			}
		}
	}
	return nil
}

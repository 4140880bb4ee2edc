package executor

import (
	"context"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// GatewayProcessor implements NodeProcessor for FLOW/GATEWAY nodes.
// Gateway nodes do not transform data: they only require the branch
// selector port (§3 expansion: GatewayConfig.BranchSelectorPort) to be
// present in the context, since downstream edge conditions (pkg/condition)
// read it directly by path. Process validates presence and is otherwise a
// pass-through, mirroring the "pass values through unchanged" role note on
// FLOW/GATEWAY in pkg/types/port.go's legalRoles table.
type GatewayProcessor struct{}

// NewGatewayProcessor returns a GatewayProcessor.
func NewGatewayProcessor() *GatewayProcessor { return &GatewayProcessor{} }

func (p *GatewayProcessor) Family() string { return "FLOW/GATEWAY" }

func (p *GatewayProcessor) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	if node.Gateway == nil {
		return ErrMissingTypeConfig
	}
	if !ectx.ContainsKey(node.Gateway.BranchSelectorPort) {
		return ErrMissingBranchSelector
	}
	return nil
}

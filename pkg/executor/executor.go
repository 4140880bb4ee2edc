package executor

import (
	"context"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// NodeProcessor is the single capability every node family implements: read
// required inputs off ectx by port key, perform the node's side effect,
// write outputs back onto ectx by port key, and accumulate any token usage
// onto detail. This is the "process(ctx, report)" capability named in §3's
// polymorphism-over-node-families redesign note.
type NodeProcessor interface {
	// Process executes one node instance against the shared context.
	Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error

	// Family returns the node family discriminator this processor handles
	// (matches types.NodeMetamodel.Family()).
	Family() string
}

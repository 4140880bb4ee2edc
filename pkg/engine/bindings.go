package engine

import (
	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// applyBindings implements §4.7: for each sourcePath -> targetPath pair on
// edge, copy the value across if present; otherwise fall back to the
// target node's matching root input port default, applied to the full
// target path (a deliberate, documented limitation, not a bug fix) — or
// skip if neither is available.
func applyBindings(edge types.WorkflowEdge, ectx *execctx.ExecutionContext, targetNode types.NodeMetamodel) {
	for sourcePath, targetPath := range edge.Bindings {
		if v, ok := ectx.Get(sourcePath); ok {
			_ = ectx.Put(targetPath, v)
			continue
		}
		rootPort := targetNode.FindInputPort(firstSegment(targetPath))
		if rootPort != nil && rootPort.HasDefault {
			_ = ectx.Put(targetPath, rootPort.Default)
		}
	}
}

package engine

import (
	"context"
	"strings"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type touchedEdge struct {
	edge  types.WorkflowEdge
	pairs map[string]string
}

// adaptInputs implements §4.5's run-time input repair for currentID.
func (e *Engine) adaptInputs(
	ctx context.Context,
	states map[string]*nodeState,
	incoming map[string][]types.WorkflowEdge,
	currentID string,
	missing []types.Port,
	ectx *execctx.ExecutionContext,
	report *types.OrchestrationReport,
	pendingBindings *map[string]map[string]string,
) error {
	targetNode := states[currentID].instance.Metamodel

	sourcePorts := make([]types.Port, 0)
	outputKeyToEdge := make(map[string]types.WorkflowEdge)
	for _, edge := range incoming[currentID] {
		srcState := states[edge.SourceNodeID]
		if srcState == nil || srcState.instance == nil {
			continue
		}
		for _, p := range srcState.instance.Metamodel.OutputPorts {
			if _, exists := outputKeyToEdge[p.Key]; exists && e.logger != nil {
				e.logger.WithField("port_key", p.Key).Warn("duplicate source output port key during port adaptation")
			}
			outputKeyToEdge[p.Key] = edge
			sourcePorts = append(sourcePorts, p)
		}
	}

	var bindings map[string]string
	if len(sourcePorts) > 0 && e.adapter != nil {
		b, err := e.adapter.Adapt(ctx, sourcePorts, missing)
		if err == nil {
			bindings = b
		} else if e.logger != nil {
			e.logger.WithError(err).Warn("port adaptation produced no usable bindings")
		}
	}

	missingKeys := make([]string, len(missing))
	for i, p := range missing {
		missingKeys[i] = p.Key
	}

	touched := make(map[string]*touchedEdge)
	for sourcePath, targetPath := range bindings {
		if !relatesToAny(targetPath, missingKeys) {
			continue
		}
		val, ok := ectx.Get(sourcePath)
		if !ok {
			continue
		}
		if err := ectx.Put(targetPath, val); err != nil {
			continue
		}
		edge, found := outputKeyToEdge[firstSegment(sourcePath)]
		edgeID := ""
		if found {
			edgeID = edge.ID
		}
		report.PortAdaptations = append(report.PortAdaptations, types.PortAdaptation{
			EdgeID: edgeID, SourcePath: sourcePath, TargetPath: targetPath,
		})
		if !found {
			continue
		}
		t, ok := touched[edge.ID]
		if !ok {
			t = &touchedEdge{edge: edge, pairs: make(map[string]string)}
			touched[edge.ID] = t
		}
		t.pairs[sourcePath] = targetPath
	}

	if len(missingRequiredPorts(ectx, targetNode)) > 0 {
		return ErrUnsatisfiableInputs
	}

	if len(touched) == 0 {
		return nil
	}
	if *pendingBindings == nil {
		*pendingBindings = make(map[string]map[string]string)
	}
	for edgeID, t := range touched {
		merged := make(map[string]string, len(t.edge.Bindings)+len(t.pairs))
		for k, v := range t.edge.Bindings {
			merged[k] = v
		}
		for k, v := range t.pairs {
			merged[k] = v
		}
		(*pendingBindings)[edgeID] = merged
	}
	return nil
}

// relatesToAny reports whether target equals, is a dot-path prefix of, or
// has as a dot-path prefix any of keys (§4.5 step 5).
func relatesToAny(target string, keys []string) bool {
	for _, key := range keys {
		if target == key || strings.HasPrefix(target, key+".") || strings.HasPrefix(key, target+".") {
			return true
		}
	}
	return false
}

func firstSegment(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

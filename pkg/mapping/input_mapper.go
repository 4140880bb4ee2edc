package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// InputMapper implements §4.9's mapVariablesToEntryPorts.
type InputMapper struct {
	bridge llm.Bridge
	model  string
	// lastUsage is the token usage of the most recent LLM call Map made, or
	// the zero value when the trivial-binding short-circuit skipped the LLM
	// entirely. Exposed via TokenUsage for the orchestrator's aggregate
	// report (§6: "the observability report contains... aggregate token
	// usage").
	lastUsage types.TokenUsage
}

// New returns an InputMapper backed by bridge, issuing completions against
// model.
func New(bridge llm.Bridge, model string) *InputMapper {
	return &InputMapper{bridge: bridge, model: model}
}

// TokenUsage returns the token usage of the most recent Map call.
func (m *InputMapper) TokenUsage() types.TokenUsage {
	return m.lastUsage
}

// Map produces a portPath -> value binding set satisfying every required
// input port of every node in entryNodes, writes it into ectx, and returns
// it. If the required ports are already trivially satisfiable from
// variables, the LLM call is skipped. The post-condition re-validates every
// required port against the resulting context; on failure it returns
// ErrMappingUnsatisfiable and leaves ectx untouched.
func (m *InputMapper) Map(ctx context.Context, ectx *execctx.ExecutionContext, userRequest string, variables map[string]interface{}, entryNodes []types.NodeMetamodel) (map[string]interface{}, error) {
	m.lastUsage = types.TokenUsage{}
	bindings, ok := trivialBindings(variables, entryNodes)
	if !ok {
		var err error
		var usage types.TokenUsage
		bindings, usage, err = m.askLLM(ctx, userRequest, variables, entryNodes)
		m.lastUsage = usage
		if err != nil {
			return nil, err
		}
	}

	trial := ectx.DeepCopy()
	for path, value := range bindings {
		if err := trial.Put(path, value); err != nil {
			return nil, fmt.Errorf("mapping: %w", err)
		}
	}
	if !satisfiesRequiredPorts(trial, entryNodes) {
		return nil, ErrMappingUnsatisfiable
	}

	for path, value := range bindings {
		if err := ectx.Put(path, value); err != nil {
			return nil, fmt.Errorf("mapping: %w", err)
		}
	}
	return bindings, nil
}

// trivialBindings returns a direct portKey -> variables[portKey] map when
// every required port of every entry node is already satisfiable that way
// (variable present and schema-valid, or the port carries a default).
func trivialBindings(variables map[string]interface{}, entryNodes []types.NodeMetamodel) (map[string]interface{}, bool) {
	bindings := make(map[string]interface{})
	for _, node := range entryNodes {
		for _, port := range node.RequiredInputPorts() {
			if v, present := variables[port.Key]; present && port.Schema.IsValidValue(v) {
				bindings[port.Key] = v
				continue
			}
			if port.HasDefault {
				continue
			}
			return nil, false
		}
	}
	return bindings, true
}

func satisfiesRequiredPorts(ectx *execctx.ExecutionContext, entryNodes []types.NodeMetamodel) bool {
	for _, node := range entryNodes {
		for _, port := range node.RequiredInputPorts() {
			v, _ := ectx.Get(port.Key)
			if !port.Schema.IsValidValue(v) {
				return false
			}
		}
	}
	return true
}

func (m *InputMapper) askLLM(ctx context.Context, userRequest string, variables map[string]interface{}, entryNodes []types.NodeMetamodel) (map[string]interface{}, types.TokenUsage, error) {
	varsJSON, _ := json.Marshal(variables)

	var portDescriptions strings.Builder
	for _, node := range entryNodes {
		for _, port := range node.RequiredInputPorts() {
			fmt.Fprintf(&portDescriptions, "- %s: %s (required)\n", port.Key, port.Schema.Kind)
		}
	}

	req := llm.CompletionRequest{
		Model: m.model,
		SystemPrompt: "You map extracted user variables onto a workflow's required " +
			"input ports. Respond with a single JSON object mapping portPath to " +
			"value. Preserve variable values verbatim; never invent new values " +
			"for ports you cannot satisfy from the given variables or user text.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf(
				"User request:\n%s\n\nExtracted variables (JSON):\n%s\n\nRequired ports:\n%s",
				userRequest, string(varsJSON), portDescriptions.String(),
			),
		}},
	}

	resp, err := m.bridge.Complete(ctx, req)
	if err != nil {
		return nil, types.TokenUsage{}, fmt.Errorf("mapping: llm completion failed: %w", err)
	}

	var bindings map[string]interface{}
	if err := json.Unmarshal([]byte(resp.Text), &bindings); err != nil {
		return nil, resp.Usage, fmt.Errorf("mapping: could not parse llm response as JSON: %w", err)
	}
	return bindings, resp.Usage, nil
}

package portadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// portView is what gets serialized to the LLM: the port shape minus the
// role discriminator and any nil default, per §4.11 ("excluding the
// portType discriminator and nulls").
type portView struct {
	Key     string            `json:"key"`
	Schema  types.PortSchema  `json:"schema"`
	Default interface{}       `json:"default,omitempty"`
}

func toPortViews(ports []types.Port) []portView {
	out := make([]portView, len(ports))
	for i, p := range ports {
		out[i] = portView{Key: p.Key, Schema: p.Schema, Default: p.Default}
	}
	return out
}

type adapterResponse struct {
	Bindings map[string]string `json:"bindings"`
}

// Adapter implements PortAdapter (§4.11).
type Adapter struct {
	bridge llm.Bridge
	model  string
	// lastUsage is the token usage of the most recent Adapt call.
	lastUsage types.TokenUsage
}

// TokenUsage returns the token usage of the most recent Adapt call.
func (a *Adapter) TokenUsage() types.TokenUsage {
	return a.lastUsage
}

// New returns an Adapter backed by bridge, issuing completions against
// model.
func New(bridge llm.Bridge, model string) *Adapter {
	return &Adapter{bridge: bridge, model: model}
}

// Adapt asks for a sourcePath -> targetPath binding map connecting
// sourcePorts to targetPorts. An empty, non-nil map means no mapping is
// needed; ErrAdaptationImpossible means the LLM judged no mapping exists.
func (a *Adapter) Adapt(ctx context.Context, sourcePorts, targetPorts []types.Port) (map[string]string, error) {
	sourceJSON, _ := json.Marshal(toPortViews(sourcePorts))
	targetJSON, _ := json.Marshal(toPortViews(targetPorts))

	req := llm.CompletionRequest{
		Model: a.model,
		SystemPrompt: "You connect a source node's output ports to a target node's " +
			"input ports. Respond with a single JSON object {\"bindings\": " +
			"{sourcePath: targetPath, ...}}. If no port connects a source to a " +
			"required target input, set \"bindings\" to null. If the target's " +
			"required ports are already satisfied without any new binding, " +
			"respond with an empty bindings object.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Source ports:\n%s\n\nTarget ports:\n%s",
				string(sourceJSON), string(targetJSON)),
		}},
	}

	resp, err := a.bridge.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("portadapter: llm completion failed: %w", err)
	}
	a.lastUsage = resp.Usage

	var parsed adapterResponse
	if err := json.Unmarshal([]byte(resp.Text), &parsed); err != nil {
		return nil, fmt.Errorf("portadapter: could not parse llm response as JSON: %w", err)
	}
	if parsed.Bindings == nil {
		return nil, ErrAdaptationImpossible
	}
	return parsed.Bindings, nil
}

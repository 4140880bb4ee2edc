package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// LLMProcessor implements NodeProcessor for AI/LLM nodes: gathers
// USER_PROMPT and SYSTEM_PROMPT_VARIABLE ports, calls the bridge, and
// writes the completion text to every RESPONSE output port.
type LLMProcessor struct {
	bridge llm.Bridge
}

// NewLLMProcessor wires an LLMProcessor to the given bridge (typically a
// llm.RetryingBridge wrapping llm.AnthropicBridge or llm.OpenAIBridge).
func NewLLMProcessor(bridge llm.Bridge) *LLMProcessor {
	return &LLMProcessor{bridge: bridge}
}

func (p *LLMProcessor) Family() string { return "AI/LLM" }

func (p *LLMProcessor) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	if node.LLM == nil {
		return ErrMissingTypeConfig
	}
	cfg := node.LLM

	var prompts []string
	vars := make(map[string]interface{})
	for _, port := range node.InputPorts {
		val, ok := ectx.Get(port.Key)
		if !ok {
			continue
		}
		switch port.Role {
		case types.PortRoleUserPrompt:
			prompts = append(prompts, fmt.Sprint(val))
		case types.PortRoleSystemPromptVariable:
			vars[port.Key] = val
		}
	}
	if len(prompts) == 0 {
		return ErrMissingUserPrompt
	}

	req := llm.CompletionRequest{
		Model:        cfg.Model,
		SystemPrompt: interpolateTemplate(cfg.SystemPromptTemplate, vars),
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: strings.Join(prompts, "\n")}},
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
	}

	resp, err := p.bridge.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("LLM node completion failed: %w", err)
	}
	detail.TokenUsage = detail.TokenUsage.Add(resp.Usage)

	for _, port := range node.OutputPorts {
		if port.Role == types.PortRoleResponse {
			if err := ectx.Put(port.Key, resp.Text); err != nil {
				return err
			}
		}
	}
	return nil
}

// interpolateTemplate replaces "{key}" placeholders with stringified
// values, mirroring the teacher's simple template substitution style used
// throughout pkg/executor's string-valued nodes.
func interpolateTemplate(template string, vars map[string]interface{}) string {
	if template == "" {
		return ""
	}
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

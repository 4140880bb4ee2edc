package executor

import (
	"context"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type fakeCompleteBridge struct {
	lastReq llm.CompletionRequest
	resp    llm.CompletionResponse
	err     error
}

func (f *fakeCompleteBridge) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestLLMProcessorWritesResponseAndAccumulatesTokenUsage(t *testing.T) {
	bridge := &fakeCompleteBridge{resp: llm.CompletionResponse{
		Text:  "hello there",
		Usage: types.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}}
	p := NewLLMProcessor(bridge)

	ectx := execctx.New()
	_ = ectx.Put("prompt", "say hi")

	node := types.NodeMetamodel{
		Type: types.NodeTypeAI, ModelType: types.ModelTypeLLM,
		InputPorts:  []types.Port{{Key: "prompt", Role: types.PortRoleUserPrompt}},
		OutputPorts: []types.Port{{Key: "reply", Role: types.PortRoleResponse}},
		LLM:         &types.LLMConfig{Model: "claude-sonnet-4-5"},
	}
	detail := &types.NodeDetail{}

	if err := p.Process(context.Background(), ectx, node, detail); err != nil {
		t.Fatalf("Process: %v", err)
	}
	got, ok := ectx.Get("reply")
	if !ok || got != "hello there" {
		t.Fatalf("expected reply=%q, got %v (ok=%v)", "hello there", got, ok)
	}
	if detail.TokenUsage.TotalTokens != 15 {
		t.Fatalf("expected accumulated total tokens 15, got %d", detail.TokenUsage.TotalTokens)
	}
	if bridge.lastReq.Messages[0].Content != "say hi" {
		t.Fatalf("expected prompt forwarded, got %q", bridge.lastReq.Messages[0].Content)
	}
}

func TestLLMProcessorRequiresUserPrompt(t *testing.T) {
	p := NewLLMProcessor(&fakeCompleteBridge{})
	ectx := execctx.New()
	node := types.NodeMetamodel{
		Type: types.NodeTypeAI, ModelType: types.ModelTypeLLM,
		LLM: &types.LLMConfig{},
	}
	if err := p.Process(context.Background(), ectx, node, &types.NodeDetail{}); err != ErrMissingUserPrompt {
		t.Fatalf("expected ErrMissingUserPrompt, got %v", err)
	}
}

func TestInterpolateTemplateReplacesPlaceholders(t *testing.T) {
	out := interpolateTemplate("Hello {name}, you are {age}", map[string]interface{}{"name": "Ada", "age": 30})
	if out != "Hello Ada, you are 30" {
		t.Fatalf("unexpected interpolation result: %q", out)
	}
}

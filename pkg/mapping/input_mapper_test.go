package mapping

import (
	"context"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type fakeBridge struct {
	text string
	err  error
}

func (f fakeBridge) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	if f.err != nil {
		return llm.CompletionResponse{}, f.err
	}
	return llm.CompletionResponse{Text: f.text}, nil
}

func entryNodeWithRequiredString(key string) types.NodeMetamodel {
	return types.NodeMetamodel{
		InputPorts: []types.Port{
			{Key: key, Schema: types.PortSchema{Kind: types.SchemaString, Required: true}},
		},
	}
}

func TestMapShortCircuitsWhenVariablesAlreadySatisfyRequiredPorts(t *testing.T) {
	m := New(fakeBridge{err: nil}, "test-model")
	ectx := execctx.New()
	nodes := []types.NodeMetamodel{entryNodeWithRequiredString("city")}

	bindings, err := m.Map(context.Background(), ectx, "what's the weather", map[string]interface{}{"city": "Paris"}, nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bindings["city"] != "Paris" {
		t.Fatalf("expected trivial binding to carry variable verbatim, got %v", bindings["city"])
	}
	if v, _ := ectx.Get("city"); v != "Paris" {
		t.Fatalf("expected context to be updated with binding, got %v", v)
	}
}

func TestMapCallsLLMWhenNoTrivialBindingExists(t *testing.T) {
	m := New(fakeBridge{text: `{"city": "Berlin"}`}, "test-model")
	ectx := execctx.New()
	nodes := []types.NodeMetamodel{entryNodeWithRequiredString("city")}

	bindings, err := m.Map(context.Background(), ectx, "weather in berlin", map[string]interface{}{}, nodes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bindings["city"] != "Berlin" {
		t.Fatalf("expected LLM-produced binding, got %v", bindings["city"])
	}
}

func TestMapReturnsUnsatisfiableWhenPostConditionFails(t *testing.T) {
	m := New(fakeBridge{text: `{"other": "value"}`}, "test-model")
	ectx := execctx.New()
	nodes := []types.NodeMetamodel{entryNodeWithRequiredString("city")}

	_, err := m.Map(context.Background(), ectx, "weather", map[string]interface{}{}, nodes)
	if err != ErrMappingUnsatisfiable {
		t.Fatalf("expected ErrMappingUnsatisfiable, got %v", err)
	}
	if ectx.ContainsKey("city") {
		t.Fatalf("expected context to be left untouched on failure")
	}
}

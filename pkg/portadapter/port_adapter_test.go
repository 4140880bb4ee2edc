package portadapter

import (
	"context"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type fakeBridge struct{ text string }

func (f fakeBridge) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	return llm.CompletionResponse{Text: f.text}, nil
}

func TestAdaptReturnsBindingsOnMatch(t *testing.T) {
	a := New(fakeBridge{text: `{"bindings":{"result.city":"location"}}`}, "test-model")
	bindings, err := a.Adapt(context.Background(), []types.Port{{Key: "result"}}, []types.Port{{Key: "location"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bindings["result.city"] != "location" {
		t.Fatalf("expected binding result.city->location, got %+v", bindings)
	}
}

func TestAdaptReturnsImpossibleOnNullBindings(t *testing.T) {
	a := New(fakeBridge{text: `{"bindings":null}`}, "test-model")
	_, err := a.Adapt(context.Background(), nil, nil)
	if err != ErrAdaptationImpossible {
		t.Fatalf("expected ErrAdaptationImpossible, got %v", err)
	}
}

func TestAdaptReturnsEmptyMapWhenNoMappingNeeded(t *testing.T) {
	a := New(fakeBridge{text: `{"bindings":{}}`}, "test-model")
	bindings, err := a.Adapt(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bindings) != 0 {
		t.Fatalf("expected empty bindings map, got %+v", bindings)
	}
}

package middleware

import (
	"context"
	"strings"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

func TestValidationMiddleware_RejectsInvalidNode(t *testing.T) {
	m := NewValidationMiddleware()

	// A NodeMetamodel with Type unset fails NodeMetamodel.Validate.
	node := types.NodeMetamodel{ID: "bad"}

	var detail types.NodeDetail
	err := m.Process(context.Background(), execctx.New(), node, &detail, okHandler)
	if err == nil {
		t.Fatal("expected validation error for a node with no type")
	}
	if !strings.Contains(err.Error(), "node validation failed") {
		t.Errorf("expected wrapped validation error, got: %v", err)
	}
}

func TestValidationMiddleware_AllowsValidNode(t *testing.T) {
	m := NewValidationMiddleware()
	node := nodeWithPorts(nil, nil)
	node.FamilyID = "classifier-family"
	node.Type = types.NodeTypeAI
	node.ModelType = types.ModelTypeLLM
	node.LLM = &types.LLMConfig{Provider: "openai", Model: "gpt-4o-mini"}
	node.Name = "classifier"

	called := false
	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		called = true
		return nil
	}

	var detail types.NodeDetail
	if err := m.Process(context.Background(), execctx.New(), node, &detail, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called for a valid node")
	}
}

func TestInputValidationMiddleware_RejectsOversizedString(t *testing.T) {
	m := NewInputValidationMiddleware(10)
	node := nodeWithPorts([]string{"in"}, nil)

	ectx := execctx.New()
	_ = ectx.Put("in", "this string is far longer than ten bytes")

	var detail types.NodeDetail
	err := m.Process(context.Background(), ectx, node, &detail, okHandler)
	if err == nil {
		t.Fatal("expected error for oversized input")
	}
}

func TestInputValidationMiddleware_AllowsSmallInputs(t *testing.T) {
	m := NewInputValidationMiddleware(100)
	node := nodeWithPorts([]string{"in"}, nil)

	ectx := execctx.New()
	_ = ectx.Put("in", "short")

	called := false
	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		called = true
		return nil
	}

	var detail types.NodeDetail
	if err := m.Process(context.Background(), ectx, node, &detail, handler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
}

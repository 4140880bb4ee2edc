package middleware

import (
	"context"
	"strings"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

func nodeWithPorts(inKeys, outKeys []string) types.NodeMetamodel {
	n := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	for _, k := range inKeys {
		n.InputPorts = append(n.InputPorts, types.Port{Key: k})
	}
	for _, k := range outKeys {
		n.OutputPorts = append(n.OutputPorts, types.Port{Key: k})
	}
	return n
}

func okHandler(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
	return nil
}

func TestSizeLimitMiddleware_InputSizeLimit(t *testing.T) {
	config := SizeLimitConfig{
		MaxInputSize:     100,
		EnforceInputSize: true,
	}
	m := NewSizeLimitMiddlewareWithConfig(config)
	node := nodeWithPorts([]string{"in"}, nil)

	ectx := execctx.New()
	_ = ectx.Put("in", strings.Repeat("x", 200))

	var detail types.NodeDetail
	err := m.Process(context.Background(), ectx, node, &detail, okHandler)
	if err == nil {
		t.Fatal("expected error for large input, got nil")
	}
	if !strings.Contains(err.Error(), "input size limit exceeded") {
		t.Errorf("expected size limit error, got: %v", err)
	}
}

func TestSizeLimitMiddleware_ResultSizeLimit(t *testing.T) {
	config := SizeLimitConfig{
		MaxResultSize:     100,
		EnforceResultSize: true,
	}
	m := NewSizeLimitMiddlewareWithConfig(config)
	node := nodeWithPorts(nil, []string{"out"})

	ectx := execctx.New()
	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		return ectx.Put("out", strings.Repeat("x", 200))
	}

	var detail types.NodeDetail
	err := m.Process(context.Background(), ectx, node, &detail, handler)
	if err == nil {
		t.Fatal("expected error for large result, got nil")
	}
	if !strings.Contains(err.Error(), "result size limit exceeded") {
		t.Errorf("expected result size limit error, got: %v", err)
	}
}

func TestSizeLimitMiddleware_StringLengthLimit(t *testing.T) {
	config := SizeLimitConfig{
		MaxInputSize:     1000,
		MaxStringLength:  50,
		EnforceInputSize: true,
	}
	m := NewSizeLimitMiddlewareWithConfig(config)
	node := nodeWithPorts([]string{"in"}, nil)

	ectx := execctx.New()
	_ = ectx.Put("in", strings.Repeat("x", 100))

	var detail types.NodeDetail
	err := m.Process(context.Background(), ectx, node, &detail, okHandler)
	if err == nil {
		t.Fatal("expected error for long string, got nil")
	}
	if !strings.Contains(err.Error(), "string length") {
		t.Errorf("expected string length error, got: %v", err)
	}
}

func TestSizeLimitMiddleware_ArrayLengthLimit(t *testing.T) {
	config := SizeLimitConfig{
		MaxInputSize:     10000,
		MaxArrayLength:   10,
		EnforceInputSize: true,
	}
	m := NewSizeLimitMiddlewareWithConfig(config)
	node := nodeWithPorts([]string{"in"}, nil)

	longArray := make([]interface{}, 20)
	for i := 0; i < 20; i++ {
		longArray[i] = i
	}

	ectx := execctx.New()
	_ = ectx.Put("in", longArray)

	var detail types.NodeDetail
	err := m.Process(context.Background(), ectx, node, &detail, okHandler)
	if err == nil {
		t.Fatal("expected error for long array, got nil")
	}
	if !strings.Contains(err.Error(), "array length") {
		t.Errorf("expected array length error, got: %v", err)
	}
}

func TestSizeLimitMiddleware_AllowedInputs(t *testing.T) {
	m := NewSizeLimitMiddleware()
	node := nodeWithPorts([]string{"a", "b", "c"}, nil)

	ectx := execctx.New()
	_ = ectx.Put("a", "hello")
	_ = ectx.Put("b", 42)
	_ = ectx.Put("c", true)

	executionCount := 0
	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		executionCount++
		return nil
	}

	var detail types.NodeDetail
	if err := m.Process(context.Background(), ectx, node, &detail, handler); err != nil {
		t.Errorf("expected no error for valid inputs, got: %v", err)
	}
	if executionCount != 1 {
		t.Errorf("expected handler to be called once, got %d", executionCount)
	}
}

func TestSizeLimitMiddleware_DisabledLimits(t *testing.T) {
	config := SizeLimitConfig{
		MaxInputSize:      10,
		MaxResultSize:     10,
		EnforceInputSize:  false,
		EnforceResultSize: false,
	}
	m := NewSizeLimitMiddlewareWithConfig(config)
	node := nodeWithPorts([]string{"in"}, []string{"out"})

	ectx := execctx.New()
	_ = ectx.Put("in", strings.Repeat("x", 100))

	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		return ectx.Put("out", strings.Repeat("y", 100))
	}

	var detail types.NodeDetail
	if err := m.Process(context.Background(), ectx, node, &detail, handler); err != nil {
		t.Errorf("expected no error with disabled limits, got: %v", err)
	}
}

func TestSizeLimitMiddleware_Name(t *testing.T) {
	m := NewSizeLimitMiddleware()
	if m.Name() != "SizeLimit" {
		t.Errorf("expected 'SizeLimit', got %s", m.Name())
	}
}

func TestValidateWorkflowSize_NodeCount(t *testing.T) {
	config := SizeLimitConfig{MaxNodeCount: 5}

	nodes := make([]types.WorkflowNode, 10)
	for i := 0; i < 10; i++ {
		nodes[i] = types.WorkflowNode{ID: string(rune('a' + i)), NodeMetamodelID: "nm"}
	}

	err := ValidateWorkflowSize(nodes, []types.WorkflowEdge{}, config)
	if err == nil {
		t.Fatal("expected error for too many nodes, got nil")
	}
	if !strings.Contains(err.Error(), "nodes") {
		t.Errorf("expected node count error, got: %v", err)
	}
}

func TestValidateWorkflowSize_EdgeCount(t *testing.T) {
	config := SizeLimitConfig{MaxEdgeCount: 5}

	nodes := []types.WorkflowNode{
		{ID: "1", NodeMetamodelID: "nm"},
		{ID: "2", NodeMetamodelID: "nm"},
	}

	edges := make([]types.WorkflowEdge, 10)
	for i := 0; i < 10; i++ {
		edges[i] = types.WorkflowEdge{ID: "e", SourceNodeID: "1", TargetNodeID: "2"}
	}

	err := ValidateWorkflowSize(nodes, edges, config)
	if err == nil {
		t.Fatal("expected error for too many edges, got nil")
	}
	if !strings.Contains(err.Error(), "edges") {
		t.Errorf("expected edge count error, got: %v", err)
	}
}

func TestValidateWorkflowSize_ValidWorkflow(t *testing.T) {
	config := DefaultSizeLimitConfig()

	nodes := []types.WorkflowNode{
		{ID: "1", NodeMetamodelID: "nm"},
		{ID: "2", NodeMetamodelID: "nm"},
		{ID: "3", NodeMetamodelID: "nm"},
	}

	edges := []types.WorkflowEdge{
		{ID: "e1", SourceNodeID: "1", TargetNodeID: "2"},
		{ID: "e2", SourceNodeID: "2", TargetNodeID: "3"},
	}

	if err := ValidateWorkflowSize(nodes, edges, config); err != nil {
		t.Errorf("expected no error for valid workflow, got: %v", err)
	}
}

func TestSizeLimitMiddleware_NestedStructures(t *testing.T) {
	config := SizeLimitConfig{
		MaxInputSize:     1000,
		MaxStringLength:  20,
		EnforceInputSize: true,
	}
	m := NewSizeLimitMiddlewareWithConfig(config)
	node := nodeWithPorts([]string{"nested"}, nil)

	ectx := execctx.New()
	_ = ectx.Put("nested", map[string]interface{}{
		"inner": strings.Repeat("x", 50),
	})

	var detail types.NodeDetail
	err := m.Process(context.Background(), ectx, node, &detail, okHandler)
	if err == nil {
		t.Fatal("expected error for nested string exceeding limit, got nil")
	}
}

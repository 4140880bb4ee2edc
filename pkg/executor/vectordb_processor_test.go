package executor

import (
	"context"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/search"
	"github.com/cogniflow/orchestrator/pkg/types"
)

func TestVectorDBProcessorWritesResultsAndFirstResult(t *testing.T) {
	idx := search.NewMemoryVectorIndex()
	idx.Upsert("doc-1", []float64{1, 0, 0})
	idx.Upsert("doc-2", []float64{0, 1, 0})

	p := NewVectorDBProcessor(map[string]search.VectorIndex{"docs": idx})

	ectx := execctx.New()
	_ = ectx.Put("query_vector", []interface{}{1.0, 0.0, 0.0})

	node := types.NodeMetamodel{
		Type: types.NodeTypeTool, ToolType: types.ToolTypeVectorDB,
		InputPorts:  []types.Port{{Key: "query_vector", Role: types.PortRoleInputVector}},
		OutputPorts: []types.Port{{Key: "results", Role: types.PortRoleResults}, {Key: "top", Role: types.PortRoleFirstResult}},
		VectorDB:    &types.VectorDBConfig{CollectionName: "docs", TopK: 5},
	}

	if err := p.Process(context.Background(), ectx, node, &types.NodeDetail{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	results, ok := ectx.Get("results")
	if !ok {
		t.Fatalf("expected results output")
	}
	arr := results.([]interface{})
	if len(arr) != 2 {
		t.Fatalf("expected 2 results, got %d", len(arr))
	}
	top, ok := ectx.Get("top")
	if !ok {
		t.Fatalf("expected top output")
	}
	topMap := top.(map[string]interface{})
	if topMap["id"] != "doc-1" {
		t.Fatalf("expected doc-1 to be the closest match, got %v", topMap["id"])
	}
}

func TestVectorDBProcessorReturnsErrorForUnknownCollection(t *testing.T) {
	p := NewVectorDBProcessor(map[string]search.VectorIndex{})
	ectx := execctx.New()
	_ = ectx.Put("qv", []interface{}{1.0})
	node := types.NodeMetamodel{
		Type: types.NodeTypeTool, ToolType: types.ToolTypeVectorDB,
		InputPorts: []types.Port{{Key: "qv", Role: types.PortRoleInputVector}},
		VectorDB:   &types.VectorDBConfig{CollectionName: "missing"},
	}
	err := p.Process(context.Background(), ectx, node, &types.NodeDetail{})
	if err == nil {
		t.Fatalf("expected error for unconfigured collection")
	}
}

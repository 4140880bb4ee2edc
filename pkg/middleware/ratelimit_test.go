package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

func TestTokenBucket_Allow(t *testing.T) {
	tb := NewTokenBucket(10, 10) // 10 tokens/sec, capacity 10

	for i := 0; i < 10; i++ {
		if !tb.Allow("test") {
			t.Errorf("request %d should be allowed", i)
		}
	}

	if tb.Allow("test") {
		t.Error("request 11 should be denied (bucket empty)")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	tb := NewTokenBucket(10, 10)

	for i := 0; i < 10; i++ {
		tb.Allow("test")
	}

	if tb.Allow("test") {
		t.Error("should be denied immediately after draining")
	}

	time.Sleep(200 * time.Millisecond)

	if !tb.Allow("test") {
		t.Error("should allow request after refill (1)")
	}
	if !tb.Allow("test") {
		t.Error("should allow request after refill (2)")
	}
	if tb.Allow("test") {
		t.Error("should deny 3rd request after partial refill")
	}
}

func TestTokenBucket_Reset(t *testing.T) {
	tb := NewTokenBucket(10, 10)

	for i := 0; i < 10; i++ {
		tb.Allow("test")
	}
	if tb.Allow("test") {
		t.Error("should be denied after draining")
	}

	tb.Reset()

	if !tb.Allow("test") {
		t.Error("should allow request after reset")
	}
}

func noopHandler(counter *int) Handler {
	return func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		*counter++
		return nil
	}
}

func TestRateLimitMiddleware_GlobalLimit(t *testing.T) {
	config := RateLimitConfig{
		GlobalRPS:    5,
		EnableGlobal: true,
	}
	m := NewRateLimitMiddlewareWithConfig(config)

	node := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	executionCount := 0
	handler := noopHandler(&executionCount)

	var detail types.NodeDetail
	for i := 0; i < 5; i++ {
		if err := m.Process(context.Background(), nil, node, &detail, handler); err != nil {
			t.Errorf("request %d should be allowed: %v", i, err)
		}
	}
	if executionCount != 5 {
		t.Errorf("expected 5 executions, got %d", executionCount)
	}

	if err := m.Process(context.Background(), nil, node, &detail, handler); err == nil {
		t.Error("request 6 should be denied (global limit)")
	}
	if m.GetRejectedCount() != 1 {
		t.Errorf("expected 1 rejected request, got %d", m.GetRejectedCount())
	}
	if executionCount != 5 {
		t.Errorf("handler should not be called when rate limited, got %d executions", executionCount)
	}
}

func TestRateLimitMiddleware_NodeTypeLimit(t *testing.T) {
	config := RateLimitConfig{
		EnablePerNodeType: true,
		NodeTypeRPS: map[types.NodeType]float64{
			types.NodeTypeTool: 3,
		},
	}
	m := NewRateLimitMiddlewareWithConfig(config)

	toolNode := types.NodeMetamodel{ID: "tool1", Type: types.NodeTypeTool}
	aiNode := types.NodeMetamodel{ID: "ai1", Type: types.NodeTypeAI}

	executionCount := 0
	handler := noopHandler(&executionCount)
	var detail types.NodeDetail

	for i := 0; i < 3; i++ {
		if err := m.Process(context.Background(), nil, toolNode, &detail, handler); err != nil {
			t.Errorf("tool request %d should be allowed: %v", i, err)
		}
	}

	if err := m.Process(context.Background(), nil, toolNode, &detail, handler); err == nil {
		t.Error("tool request 4 should be denied (node type limit)")
	}

	if err := m.Process(context.Background(), nil, aiNode, &detail, handler); err != nil {
		t.Errorf("AI node should be allowed: %v", err)
	}

	if executionCount != 4 {
		t.Errorf("expected 4 successful executions, got %d", executionCount)
	}
}

func TestRateLimitMiddleware_DisabledLimits(t *testing.T) {
	config := RateLimitConfig{
		EnableGlobal:      false,
		EnablePerNodeType: false,
		EnablePerWorkflow: false,
	}
	m := NewRateLimitMiddlewareWithConfig(config)

	node := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	executionCount := 0
	handler := noopHandler(&executionCount)
	var detail types.NodeDetail

	for i := 0; i < 100; i++ {
		if err := m.Process(context.Background(), nil, node, &detail, handler); err != nil {
			t.Errorf("request %d should be allowed (no limits): %v", i, err)
		}
	}
	if executionCount != 100 {
		t.Errorf("expected 100 executions, got %d", executionCount)
	}
	if m.GetRejectedCount() != 0 {
		t.Errorf("expected 0 rejected requests, got %d", m.GetRejectedCount())
	}
}

func TestRateLimitMiddleware_DefaultConfig(t *testing.T) {
	m := NewRateLimitMiddleware()

	node := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	executionCount := 0
	handler := noopHandler(&executionCount)
	var detail types.NodeDetail

	for i := 0; i < 100; i++ {
		if err := m.Process(context.Background(), nil, node, &detail, handler); err != nil {
			t.Errorf("request %d should be allowed with default config: %v", i, err)
		}
	}

	if err := m.Process(context.Background(), nil, node, &detail, handler); err == nil {
		t.Error("request 101 should be denied (default global limit)")
	}
}

func TestRateLimitMiddleware_PerWorkflowLimit(t *testing.T) {
	config := RateLimitConfig{
		EnablePerWorkflow: true,
	}
	m := NewRateLimitMiddlewareWithConfig(config)

	node := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	executionCount := 0
	handler := noopHandler(&executionCount)
	var detail types.NodeDetail

	ctx := WithWorkflowID(context.Background(), "wf-1")
	for i := 0; i < 10; i++ {
		if err := m.Process(ctx, nil, node, &detail, handler); err != nil {
			t.Errorf("request %d should be allowed: %v", i, err)
		}
	}
	if err := m.Process(ctx, nil, node, &detail, handler); err == nil {
		t.Error("11th request for the same workflow should be denied")
	}

	otherCtx := WithWorkflowID(context.Background(), "wf-2")
	if err := m.Process(otherCtx, nil, node, &detail, handler); err != nil {
		t.Errorf("a different workflow should have its own limiter: %v", err)
	}
}

func TestRateLimitMiddleware_ConcurrentAccess(t *testing.T) {
	config := RateLimitConfig{
		GlobalRPS:    50,
		EnableGlobal: true,
	}
	m := NewRateLimitMiddlewareWithConfig(config)

	node := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		return nil
	}

	concurrency := 100
	done := make(chan bool, concurrency)
	var detail types.NodeDetail

	for i := 0; i < concurrency; i++ {
		go func() {
			defer func() { done <- true }()
			_ = m.Process(context.Background(), nil, node, &detail, handler)
		}()
	}
	for i := 0; i < concurrency; i++ {
		<-done
	}

	if rejected := m.GetRejectedCount(); rejected < 40 {
		t.Errorf("expected significant rejections with concurrent access, got %d", rejected)
	}
}

func TestRateLimitMiddleware_Name(t *testing.T) {
	m := NewRateLimitMiddleware()
	if m.Name() != "RateLimit" {
		t.Errorf("expected 'RateLimit', got %s", m.Name())
	}
}

func BenchmarkRateLimitMiddleware_GlobalLimit(b *testing.B) {
	config := RateLimitConfig{
		GlobalRPS:    1000000,
		EnableGlobal: true,
	}
	m := NewRateLimitMiddlewareWithConfig(config)

	node := types.NodeMetamodel{ID: "test", Type: types.NodeTypeAI}
	handler := func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		return nil
	}
	var detail types.NodeDetail

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = m.Process(context.Background(), nil, node, &detail, handler)
	}
}

func BenchmarkTokenBucket_Allow(b *testing.B) {
	tb := NewTokenBucket(1000000, 1000000)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		tb.Allow("test")
	}
}

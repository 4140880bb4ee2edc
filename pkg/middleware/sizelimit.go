package middleware

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// SizeLimitMiddleware enforces size limits to prevent memory exhaustion from
// an oversized LLM completion, REST response or vector-search result being
// written into the shared ExecutionContext.
type SizeLimitMiddleware struct {
	maxInputSize      int64
	maxResultSize     int64
	maxStringLength   int
	maxArrayLength    int
	maxWorkflowSize   int64
	maxNodeCount      int
	maxEdgeCount      int
	enforceInputSize  bool
	enforceResultSize bool
}

// SizeLimitConfig configures size limit enforcement.
type SizeLimitConfig struct {
	MaxInputSize    int64
	MaxResultSize   int64
	MaxStringLength int
	MaxArrayLength  int

	MaxWorkflowSize int64
	MaxNodeCount    int
	MaxEdgeCount    int

	EnforceInputSize  bool
	EnforceResultSize bool
}

// DefaultSizeLimitConfig returns default size limit configuration.
func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxInputSize:      10 * 1024 * 1024,
		MaxResultSize:     50 * 1024 * 1024,
		MaxStringLength:   1 * 1024 * 1024,
		MaxArrayLength:    10000,
		MaxWorkflowSize:   100 * 1024 * 1024,
		MaxNodeCount:      1000,
		MaxEdgeCount:      5000,
		EnforceInputSize:  true,
		EnforceResultSize: true,
	}
}

// NewSizeLimitMiddleware creates a new size limit middleware with default config.
func NewSizeLimitMiddleware() *SizeLimitMiddleware {
	return NewSizeLimitMiddlewareWithConfig(DefaultSizeLimitConfig())
}

// NewSizeLimitMiddlewareWithConfig creates a new size limit middleware with custom config.
func NewSizeLimitMiddlewareWithConfig(config SizeLimitConfig) *SizeLimitMiddleware {
	return &SizeLimitMiddleware{
		maxInputSize:      config.MaxInputSize,
		maxResultSize:     config.MaxResultSize,
		maxStringLength:   config.MaxStringLength,
		maxArrayLength:    config.MaxArrayLength,
		maxWorkflowSize:   config.MaxWorkflowSize,
		maxNodeCount:      config.MaxNodeCount,
		maxEdgeCount:      config.MaxEdgeCount,
		enforceInputSize:  config.EnforceInputSize,
		enforceResultSize: config.EnforceResultSize,
	}
}

// Process enforces size limits on a node's bound input ports before
// execution and its bound output ports after.
func (m *SizeLimitMiddleware) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, next Handler) error {
	if m.enforceInputSize {
		if err := m.validatePorts(ectx, node.InputPorts, m.maxInputSize); err != nil {
			return fmt.Errorf("input size limit exceeded: %w", err)
		}
	}

	if err := next(ctx, ectx, node, detail); err != nil {
		return err
	}

	if m.enforceResultSize {
		if err := m.validatePorts(ectx, node.OutputPorts, m.maxResultSize); err != nil {
			return fmt.Errorf("result size limit exceeded: %w", err)
		}
	}

	return nil
}

// Name returns the middleware name.
func (m *SizeLimitMiddleware) Name() string {
	return "SizeLimit"
}

// validatePorts checks the size and shape of whatever value is currently
// bound at each port's path in ectx against limit bytes. A port with no
// bound value is skipped.
func (m *SizeLimitMiddleware) validatePorts(ectx *execctx.ExecutionContext, ports []types.Port, limit int64) error {
	for _, port := range ports {
		value, ok := ectx.Get(port.Key)
		if !ok {
			continue
		}

		size, err := estimateSize(value)
		if err != nil {
			return fmt.Errorf("failed to estimate size of port %s: %w", port.Key, err)
		}
		if size > limit {
			return fmt.Errorf("port %s size %d bytes exceeds limit %d bytes", port.Key, size, limit)
		}

		if err := m.validateValue(value); err != nil {
			return fmt.Errorf("port %s: %w", port.Key, err)
		}
	}
	return nil
}

// validateValue validates type-specific limits.
func (m *SizeLimitMiddleware) validateValue(value interface{}) error {
	switch v := value.(type) {
	case string:
		if m.maxStringLength > 0 && len(v) > m.maxStringLength {
			return fmt.Errorf("string length %d exceeds limit %d", len(v), m.maxStringLength)
		}
	case []interface{}:
		if m.maxArrayLength > 0 && len(v) > m.maxArrayLength {
			return fmt.Errorf("array length %d exceeds limit %d", len(v), m.maxArrayLength)
		}
		for i, elem := range v {
			if err := m.validateValue(elem); err != nil {
				return fmt.Errorf("array element %d: %w", i, err)
			}
		}
	case map[string]interface{}:
		for key, val := range v {
			if err := m.validateValue(val); err != nil {
				return fmt.Errorf("map key %s: %w", key, err)
			}
		}
	}

	return nil
}

// estimateSize estimates the size of a value in bytes using JSON
// marshaling as a rough approximation.
func estimateSize(value interface{}) (int64, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// ValidateWorkflowSize validates workflow size limits. It is called by
// catalog.WorkflowStore before Create/Update, ahead of any node-level
// storage validation.
func ValidateWorkflowSize(nodes []types.WorkflowNode, edges []types.WorkflowEdge, config SizeLimitConfig) error {
	if config.MaxNodeCount > 0 && len(nodes) > config.MaxNodeCount {
		return fmt.Errorf("workflow has %d nodes, exceeds limit of %d", len(nodes), config.MaxNodeCount)
	}

	if config.MaxEdgeCount > 0 && len(edges) > config.MaxEdgeCount {
		return fmt.Errorf("workflow has %d edges, exceeds limit of %d", len(edges), config.MaxEdgeCount)
	}

	if config.MaxWorkflowSize > 0 {
		type workflow struct {
			Nodes []types.WorkflowNode `json:"nodes"`
			Edges []types.WorkflowEdge `json:"edges"`
		}

		wf := workflow{Nodes: nodes, Edges: edges}
		data, err := json.Marshal(wf)
		if err != nil {
			return fmt.Errorf("failed to marshal workflow for size check: %w", err)
		}

		size := int64(len(data))
		if size > config.MaxWorkflowSize {
			return fmt.Errorf("workflow size %d bytes exceeds limit %d bytes", size, config.MaxWorkflowSize)
		}
	}

	return nil
}

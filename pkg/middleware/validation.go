package middleware

import (
	"context"
	"fmt"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// ValidationMiddleware re-validates a node's metamodel immediately before
// execution, catching a node that was edited or re-versioned after the
// workflow instance that references it was built.
type ValidationMiddleware struct{}

// NewValidationMiddleware creates a new validation middleware.
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{}
}

// Process validates node configuration before execution.
func (m *ValidationMiddleware) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, next Handler) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("node validation failed: %w", err)
	}
	return next(ctx, ectx, node, detail)
}

// Name returns the middleware name.
func (m *ValidationMiddleware) Name() string {
	return "Validation"
}

// InputValidationMiddleware validates bound port values before execution,
// as a cheap pre-check ahead of SizeLimitMiddleware's deeper inspection.
type InputValidationMiddleware struct {
	maxInputSize int64
}

// NewInputValidationMiddleware creates a new input validation middleware.
func NewInputValidationMiddleware(maxInputSize int64) *InputValidationMiddleware {
	return &InputValidationMiddleware{maxInputSize: maxInputSize}
}

// Process validates inputs before execution.
func (m *InputValidationMiddleware) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, next Handler) error {
	if len(node.InputPorts) > 100 {
		return fmt.Errorf("too many input ports: %d (max 100)", len(node.InputPorts))
	}

	for _, port := range node.InputPorts {
		value, ok := ectx.Get(port.Key)
		if !ok {
			continue
		}
		if str, ok := value.(string); ok {
			if m.maxInputSize > 0 && int64(len(str)) > m.maxInputSize {
				return fmt.Errorf("port %s too large: %d bytes (max %d)", port.Key, len(str), m.maxInputSize)
			}
		}
	}

	return next(ctx, ectx, node, detail)
}

// Name returns the middleware name.
func (m *InputValidationMiddleware) Name() string {
	return "InputValidation"
}

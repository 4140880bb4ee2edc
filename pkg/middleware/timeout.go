package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// TimeoutMiddleware enforces a per-node execution timeout of defaultTimeout.
// An earlier deadline already set on ctx by the caller still applies; the
// timeout error always names defaultTimeout. A defaultTimeout of zero or
// less disables the middleware.
type TimeoutMiddleware struct {
	defaultTimeout time.Duration
}

// NewTimeoutMiddleware creates a new timeout middleware with a default timeout.
func NewTimeoutMiddleware(defaultTimeout time.Duration) *TimeoutMiddleware {
	return &TimeoutMiddleware{defaultTimeout: defaultTimeout}
}

// Process enforces execution timeout via context cancellation.
func (m *TimeoutMiddleware) Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, next Handler) error {
	if m.defaultTimeout <= 0 {
		return next(ctx, ectx, node, detail)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	type result struct {
		err error
	}
	resultChan := make(chan result, 1)

	go func() {
		resultChan <- result{err: next(timeoutCtx, ectx, node, detail)}
	}()

	select {
	case res := <-resultChan:
		return res.err
	case <-timeoutCtx.Done():
		return fmt.Errorf("node %s execution timeout after %v", node.ID, m.defaultTimeout)
	}
}

// Name returns the middleware name.
func (m *TimeoutMiddleware) Name() string {
	return "Timeout"
}

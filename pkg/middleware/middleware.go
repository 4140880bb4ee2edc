// Package middleware provides the Chain of Responsibility pattern implementation
// for node execution middleware. This enables cross-cutting concerns like logging,
// metrics, validation, rate limiting, retries, size limits and timeouts to be
// layered around executor.Registry.Process without modifying processor logic.
package middleware

import (
	"context"

	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// Handler executes one node instance against the shared context. It has
// exactly the shape of executor.Registry.Process, so a bare registry method
// value can be passed as the innermost Handler of a Chain.
type Handler func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error

// Middleware defines the interface for execution middleware.
// Middleware can inspect, modify, or short-circuit node execution.
//
// Example middleware implementations:
//   - LoggingMiddleware: logs execution start/end
//   - MetricsMiddleware: records performance metrics
//   - ValidationMiddleware: validates node configuration before execution
//   - SizeLimitMiddleware: enforces input/result size ceilings
//   - RateLimitMiddleware: enforces a token-bucket rate limit
//   - TimeoutMiddleware: enforces execution timeouts
//   - RetryMiddleware: retries failed executions
type Middleware interface {
	// Process handles the node execution, optionally calling next() to continue the chain.
	// The middleware can:
	//   - Pre-process: modify context or node before calling next
	//   - Execute: call next to continue the chain
	//   - Post-process: inspect the result after next returns
	//   - Short-circuit: return without calling next
	Process(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, next Handler) error

	// Name returns the middleware name for logging and debugging.
	Name() string
}

// Chain represents an ordered chain of middleware.
// Middleware are executed in the order they were added.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain.
func NewChain() *Chain {
	return &Chain{middlewares: make([]Middleware, 0)}
}

// Use adds middleware to the chain and returns the chain for fluent wiring.
func (c *Chain) Use(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Execute runs the middleware chain followed by the final handler.
//
// Example execution flow with 3 middleware:
//
//	M1.Process(pre) -> M2.Process(pre) -> M3.Process(pre) -> handler() ->
//	M3.Process(post) -> M2.Process(post) -> M1.Process(post) -> return
func (c *Chain) Execute(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail, handler Handler) error {
	if len(c.middlewares) == 0 {
		return handler(ctx, ectx, node, detail)
	}

	index := 0
	var next Handler
	next = func(ctx context.Context, ectx *execctx.ExecutionContext, node types.NodeMetamodel, detail *types.NodeDetail) error {
		if index >= len(c.middlewares) {
			return handler(ctx, ectx, node, detail)
		}
		m := c.middlewares[index]
		index++
		return m.Process(ctx, ectx, node, detail, next)
	}

	return next(ctx, ectx, node, detail)
}

// Len returns the number of middleware in the chain.
func (c *Chain) Len() int {
	return len(c.middlewares)
}

// Middlewares returns a copy of the middleware in the chain.
func (c *Chain) Middlewares() []Middleware {
	result := make([]Middleware, len(c.middlewares))
	copy(result, c.middlewares)
	return result
}

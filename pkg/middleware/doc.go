// Package middleware implements the Chain of Responsibility pattern around
// a single node's execution, so cross-cutting concerns (logging, metrics,
// validation, size limits, rate limiting, timeouts, retries) can be layered
// onto executor.Registry.Process without touching any NodeProcessor.
//
// A Chain wraps a Handler — the same signature as Registry.Process — with
// zero or more Middleware, each free to inspect or modify the call before
// and after invoking next:
//
//	chain := middleware.NewChain().
//		Use(middleware.NewValidationMiddleware()).
//		Use(middleware.NewSizeLimitMiddleware()).
//		Use(middleware.NewLoggingMiddleware(logger))
//
//	err := chain.Execute(ctx, ectx, node, &detail, registry.Process)
//
// engine.Engine runs every node instance through an optional Chain supplied
// via engine.WithMiddleware; without one, Execute calls the registry
// directly, unchanged.
package middleware

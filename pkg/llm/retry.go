package llm

import (
	"context"
	"errors"
	"net"
	"time"
)

// RetryingBridge wraps a Bridge with the timeout and one-retry-on-
// transient-transport-error policy from §5 ("Per LLM call: configurable,
// default 30s, with one retry on transient transport error").
type RetryingBridge struct {
	inner   Bridge
	timeout time.Duration
}

// NewRetryingBridge wraps inner with the given per-call timeout. A
// timeout of 0 defaults to 30s.
func NewRetryingBridge(inner Bridge, timeout time.Duration) *RetryingBridge {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RetryingBridge{inner: inner, timeout: timeout}
}

func (b *RetryingBridge) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	resp, err := b.attempt(ctx, req)
	if err == nil || !isTransient(err) {
		return resp, err
	}
	return b.attempt(ctx, req)
}

func (b *RetryingBridge) attempt(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.inner.Complete(callCtx, req)
}

// isTransient reports whether err is a timeout: a net.Error whose Timeout()
// is true, or an error wrapping context.DeadlineExceeded. Other network
// errors (refused or reset connections, DNS failures), context
// cancellation and application errors (bad request, auth failure) are not
// retried — mirroring the backoff-worthy/not-worthy split the teacher's
// deleted executor/retry.go RetryExecutor made via its retryOnErrors
// patterns.
func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}

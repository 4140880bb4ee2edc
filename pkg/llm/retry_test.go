package llm

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

type fakeBridge struct {
	calls   int
	failN   int
	failErr error
}

func (f *fakeBridge) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	f.calls++
	if f.calls <= f.failN {
		return CompletionResponse{}, f.failErr
	}
	return CompletionResponse{Text: "ok"}, nil
}

func TestRetryingBridgeRetriesOnceOnTransientError(t *testing.T) {
	fake := &fakeBridge{failN: 1, failErr: timeoutErr{}}
	rb := NewRetryingBridge(fake, time.Second)

	resp, err := rb.Complete(context.Background(), CompletionRequest{})
	if err != nil {
		t.Fatalf("expected success after retry, got error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("expected response text 'ok', got %q", resp.Text)
	}
	if fake.calls != 2 {
		t.Fatalf("expected exactly 2 calls (1 failure + 1 retry), got %d", fake.calls)
	}
}

func TestRetryingBridgeDoesNotRetryNonTransientError(t *testing.T) {
	permanent := errors.New("401 unauthorized")
	fake := &fakeBridge{failN: 5, failErr: permanent}
	rb := NewRetryingBridge(fake, time.Second)

	_, err := rb.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatalf("expected error to propagate")
	}
	if fake.calls != 1 {
		t.Fatalf("expected exactly 1 call (no retry for non-transient error), got %d", fake.calls)
	}
}

func TestRetryingBridgeGivesUpAfterOneRetry(t *testing.T) {
	fake := &fakeBridge{failN: 99, failErr: timeoutErr{}}
	rb := NewRetryingBridge(fake, time.Second)

	_, err := rb.Complete(context.Background(), CompletionRequest{})
	if err == nil {
		t.Fatalf("expected error since both attempts fail")
	}
	if fake.calls != 2 {
		t.Fatalf("expected exactly 2 calls (no more than one retry), got %d", fake.calls)
	}
}

func TestNewRetryingBridgeDefaultsTimeout(t *testing.T) {
	rb := NewRetryingBridge(&fakeBridge{}, 0)
	if rb.timeout != 30*time.Second {
		t.Fatalf("expected default timeout of 30s, got %v", rb.timeout)
	}
}

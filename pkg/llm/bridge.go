package llm

import (
	"context"

	"github.com/cogniflow/orchestrator/pkg/types"
)

// Role is a chat message's speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a chat completion request.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a provider-agnostic chat completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

// CompletionResponse is a provider-agnostic chat completion result.
type CompletionResponse struct {
	Text  string
	Usage types.TokenUsage
}

// Bridge is the LLM client abstraction every LLM-backed core component
// (intent detection §4.10, input mapping §4.9, port adaptation §4.11, and
// AI/LLM node execution) depends on.
type Bridge interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// EmbeddingBridge computes a dense embedding vector for a piece of text,
// satisfying catalog.Embedder and backing AI/EMBEDDINGS node execution.
type EmbeddingBridge interface {
	Embed(ctx context.Context, model string, text string) ([]float64, error)
}

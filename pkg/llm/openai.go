package llm

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cogniflow/orchestrator/pkg/types"
)

// OpenAIBridge is a Bridge backed by the Chat Completions API, and an
// EmbeddingBridge backed by the Embeddings API.
type OpenAIBridge struct {
	apiKey       string
	defaultModel string
}

// NewOpenAIBridge returns a Bridge/EmbeddingBridge for the given API key.
func NewOpenAIBridge(apiKey, defaultModel string) (*OpenAIBridge, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if defaultModel == "" {
		defaultModel = "gpt-4o"
	}
	return &OpenAIBridge{apiKey: apiKey, defaultModel: defaultModel}, nil
}

func (b *OpenAIBridge) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = b.defaultModel
	}

	client := openaisdk.NewClient(option.WithAPIKey(b.apiKey))

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openaisdk.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		case RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(m.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:    openaisdk.ChatModel(model),
		Messages: messages,
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResponse{}, ErrEmptyResponse
	}

	return CompletionResponse{
		Text: resp.Choices[0].Message.Content,
		Usage: types.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// Embed calls the Embeddings API, satisfying EmbeddingBridge and
// catalog.Embedder.
func (b *OpenAIBridge) Embed(ctx context.Context, model string, text string) ([]float64, error) {
	if model == "" {
		model = "text-embedding-3-small"
	}
	client := openaisdk.NewClient(option.WithAPIKey(b.apiKey))

	resp, err := client.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Model: openaisdk.EmbeddingModel(model),
		Input: openaisdk.EmbeddingNewParamsInputUnion{OfString: openaisdk.String(text)},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp.Data[0].Embedding, nil
}

package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/search"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// DefaultTopK is §4.10 step 1's candidate pool size.
const DefaultTopK = 10

// IntentCatalog is the subset of catalog.IntentStore needed here, declared
// locally so pkg/intent does not import pkg/catalog directly.
type IntentCatalog interface {
	FindByID(ctx context.Context, id string) (*types.IntentMetamodel, error)
	Create(ctx context.Context, m types.IntentMetamodel) (*types.IntentMetamodel, error)
}

// DetectionResult is the resolved intent plus the LLM-extracted user
// variables, keys already normalized to UPPER_SNAKE_CASE (§4.10 step 4).
type DetectionResult struct {
	IntentID   string
	IntentName string
	Confidence float64
	IsNew      bool
	Variables  map[string]interface{}
	TokenUsage types.TokenUsage
}

type llmIntentGuess struct {
	IntentName    string                 `json:"intentName"`
	IntentID      string                 `json:"intentId"`
	Confidence    float64                `json:"confidence"`
	IsNew         bool                   `json:"isNew"`
	UserVariables map[string]interface{} `json:"userVariables"`
}

// Detector implements IntentDetector (§4.10).
type Detector struct {
	index    search.VectorIndex
	catalog  IntentCatalog
	embedder llm.EmbeddingBridge
	bridge   llm.Bridge
	model    string
	topK     int
}

// New returns a Detector with the §4.10 default top-K.
func New(index search.VectorIndex, catalog IntentCatalog, embedder llm.EmbeddingBridge, bridge llm.Bridge, model string) *Detector {
	return &Detector{index: index, catalog: catalog, embedder: embedder, bridge: bridge, model: model, topK: DefaultTopK}
}

// WithTopK overrides the candidate pool size.
func (d *Detector) WithTopK(k int) *Detector {
	d.topK = k
	return d
}

// Detect runs the full §4.10 pipeline over userText.
func (d *Detector) Detect(ctx context.Context, userText string) (*DetectionResult, error) {
	queryVec, err := d.embedder.Embed(ctx, d.model, userText)
	if err != nil {
		return nil, fmt.Errorf("intent: embedding failed: %w", err)
	}

	hits, err := d.index.TopK(ctx, queryVec, d.topK)
	if err != nil {
		return nil, fmt.Errorf("intent: candidate search failed: %w", err)
	}

	candidates := make([]types.IntentMetamodel, 0, len(hits))
	for _, h := range hits {
		m, err := d.catalog.FindByID(ctx, h.ID)
		if err != nil || m == nil {
			continue
		}
		candidates = append(candidates, *m)
	}

	guess, usage, err := d.askLLM(ctx, userText, candidates)
	if err != nil {
		return nil, err
	}
	if guess == nil {
		return nil, ErrIncoherentInput
	}

	resolvedID, resolvedName, isNew := reconcile(*guess, candidates)

	variables := make(map[string]interface{}, len(guess.UserVariables))
	for k, v := range guess.UserVariables {
		variables[types.NormalizeIntentName(k)] = v
	}

	if isNew {
		created, err := d.catalog.Create(ctx, types.IntentMetamodel{
			Name:        resolvedName,
			AIGenerated: true,
			Embedding:   queryVec,
		})
		if err != nil {
			return nil, fmt.Errorf("intent: could not persist new intent: %w", err)
		}
		resolvedID = created.ID
	}

	return &DetectionResult{
		IntentID:   resolvedID,
		IntentName: resolvedName,
		Confidence: guess.Confidence,
		IsNew:      isNew,
		Variables:  variables,
		TokenUsage: usage,
	}, nil
}

// reconcile implements §4.10 step 3: if intentId was returned but isn't
// among the candidates, try matching by name; if matched, treat as
// existing; otherwise treat as a new intent.
func reconcile(guess llmIntentGuess, candidates []types.IntentMetamodel) (id string, name string, isNew bool) {
	name = types.NormalizeIntentName(guess.IntentName)

	if guess.IntentID != "" {
		for _, c := range candidates {
			if c.ID == guess.IntentID {
				return c.ID, c.Name, false
			}
		}
	}
	for _, c := range candidates {
		if c.Name == name {
			return c.ID, c.Name, false
		}
	}
	return "", name, true
}

func (d *Detector) askLLM(ctx context.Context, userText string, candidates []types.IntentMetamodel) (*llmIntentGuess, types.TokenUsage, error) {
	var candidateList strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&candidateList, "- id=%s name=%s: %s\n", c.ID, c.Name, c.Description)
	}

	req := llm.CompletionRequest{
		Model: d.model,
		SystemPrompt: "You resolve a user's request against a list of known intents. " +
			"Respond with a single JSON object {intentName, intentId, confidence, " +
			"isNew, userVariables} or the literal text null if the request does not " +
			"express a coherent intent.",
		Messages: []llm.Message{{
			Role: llm.RoleUser,
			Content: fmt.Sprintf("Known intents:\n%s\nUser text:\n%s",
				candidateList.String(), userText),
		}},
	}

	resp, err := d.bridge.Complete(ctx, req)
	if err != nil {
		return nil, types.TokenUsage{}, fmt.Errorf("intent: llm completion failed: %w", err)
	}

	trimmed := strings.TrimSpace(resp.Text)
	if trimmed == "null" || trimmed == "" {
		return nil, resp.Usage, nil
	}

	var guess llmIntentGuess
	if err := json.Unmarshal([]byte(trimmed), &guess); err != nil {
		return nil, resp.Usage, fmt.Errorf("intent: could not parse llm response as JSON: %w", err)
	}
	return &guess, resp.Usage, nil
}

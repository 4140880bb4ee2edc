package intent

import (
	"context"
	"testing"

	"github.com/cogniflow/orchestrator/pkg/llm"
	"github.com/cogniflow/orchestrator/pkg/search"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type fakeIntentCatalog struct {
	byID    map[string]types.IntentMetamodel
	created []types.IntentMetamodel
}

func (f *fakeIntentCatalog) FindByID(ctx context.Context, id string) (*types.IntentMetamodel, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeIntentCatalog) Create(ctx context.Context, m types.IntentMetamodel) (*types.IntentMetamodel, error) {
	m.ID = "new-intent-id"
	f.created = append(f.created, m)
	return &m, nil
}

type fakeBridge struct{ text string }

func (f fakeBridge) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	return llm.CompletionResponse{Text: f.text}, nil
}

type fakeEmbedder struct{ vec []float64 }

func (f fakeEmbedder) Embed(ctx context.Context, model string, text string) ([]float64, error) {
	return f.vec, nil
}

func TestDetectMatchesExistingIntentByID(t *testing.T) {
	idx := search.NewMemoryVectorIndex()
	idx.Upsert("intent-1", []float64{1, 0})
	catalog := &fakeIntentCatalog{byID: map[string]types.IntentMetamodel{
		"intent-1": {ID: "intent-1", Name: "BOOK_FLIGHT"},
	}}
	bridge := fakeBridge{text: `{"intentName":"BOOK_FLIGHT","intentId":"intent-1","confidence":0.9,"isNew":false,"userVariables":{"destination city":"Paris"}}`}
	d := New(idx, catalog, fakeEmbedder{vec: []float64{1, 0}}, bridge, "test-model")

	result, err := d.Detect(context.Background(), "book me a flight to paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IntentID != "intent-1" || result.IsNew {
		t.Fatalf("expected existing intent-1, got %+v", result)
	}
	if result.Variables["DESTINATION_CITY"] != "Paris" {
		t.Fatalf("expected normalized variable key, got %+v", result.Variables)
	}
}

func TestDetectCreatesNewIntentWhenUnmatched(t *testing.T) {
	idx := search.NewMemoryVectorIndex()
	catalog := &fakeIntentCatalog{byID: map[string]types.IntentMetamodel{}}
	bridge := fakeBridge{text: `{"intentName":"track package","confidence":0.8,"isNew":true,"userVariables":{}}`}
	d := New(idx, catalog, fakeEmbedder{vec: []float64{0, 1}}, bridge, "test-model")

	result, err := d.Detect(context.Background(), "where's my package")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNew || result.IntentID != "new-intent-id" {
		t.Fatalf("expected a newly created intent, got %+v", result)
	}
	if result.IntentName != "TRACK_PACKAGE" {
		t.Fatalf("expected normalized intent name, got %s", result.IntentName)
	}
	if len(catalog.created) != 1 || !catalog.created[0].AIGenerated {
		t.Fatalf("expected the new intent to be persisted with AIGenerated set")
	}
}

func TestDetectFallsBackToNameMatchWhenIntentIDUnknown(t *testing.T) {
	idx := search.NewMemoryVectorIndex()
	idx.Upsert("intent-1", []float64{1, 0})
	catalog := &fakeIntentCatalog{byID: map[string]types.IntentMetamodel{
		"intent-1": {ID: "intent-1", Name: "BOOK_FLIGHT"},
	}}
	bridge := fakeBridge{text: `{"intentName":"BOOK_FLIGHT","intentId":"stale-id","confidence":0.7,"isNew":true,"userVariables":{}}`}
	d := New(idx, catalog, fakeEmbedder{vec: []float64{1, 0}}, bridge, "test-model")

	result, err := d.Detect(context.Background(), "book a flight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNew || result.IntentID != "intent-1" {
		t.Fatalf("expected name match to resolve to intent-1 and clear isNew, got %+v", result)
	}
}

func TestDetectReturnsIncoherentInputOnLiteralNull(t *testing.T) {
	idx := search.NewMemoryVectorIndex()
	catalog := &fakeIntentCatalog{byID: map[string]types.IntentMetamodel{}}
	bridge := fakeBridge{text: "null"}
	d := New(idx, catalog, fakeEmbedder{vec: []float64{0, 0}}, bridge, "test-model")

	_, err := d.Detect(context.Background(), "asdkjfhaslkdjfh")
	if err != ErrIncoherentInput {
		t.Fatalf("expected ErrIncoherentInput, got %v", err)
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cogniflow/orchestrator/pkg/types"
)

// Embedder computes a dense embedding vector for a piece of text, used by
// create() to populate NodeMetamodel/IntentMetamodel.embedding (§4.2). The
// concrete implementation (an embeddings-model LLM bridge call) lives
// outside this package; catalog only depends on the interface.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// IntentStore is the intents catalog service (§4.2).
type IntentStore struct {
	table    *docTable
	cache    Cache
	embedder Embedder
	cacheTTL time.Duration
}

// NewIntentStore wires a Postgres-backed IntentStore with the given cache
// and embedder.
func NewIntentStore(pool *pgxpool.Pool, cache Cache, embedder Embedder, cacheTTL time.Duration) *IntentStore {
	return &IntentStore{
		table:    newDocTable(pool, "intents"),
		cache:    cache,
		embedder: embedder,
		cacheTTL: cacheTTL,
	}
}

func (s *IntentStore) FindByID(ctx context.Context, id string) (*types.IntentMetamodel, error) {
	key := "byId:intent:" + id
	if raw, ok := s.cache.Get(ctx, key); ok {
		var m types.IntentMetamodel
		if err := json.Unmarshal([]byte(raw), &m); err == nil {
			return &m, nil
		}
	}
	doc, ok, err := s.table.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	var m types.IntentMetamodel
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, string(doc), s.cacheTTL)
	return &m, nil
}

func (s *IntentStore) FindAll(ctx context.Context) ([]types.IntentMetamodel, error) {
	docs, err := s.table.getAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.IntentMetamodel, 0, len(docs))
	for _, doc := range docs {
		var m types.IntentMetamodel
		if err := json.Unmarshal(doc, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *IntentStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.table.exists(ctx, id)
}

// Create assigns a fresh id, stamps timestamps, normalizes the name, and
// computes the embedding (§4.2).
func (s *IntentStore) Create(ctx context.Context, m types.IntentMetamodel) (*types.IntentMetamodel, error) {
	m.ID = uuid.NewString()
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Name = types.NormalizeIntentName(m.Name)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if s.embedder != nil {
		emb, err := s.embedder.Embed(ctx, m.Name+" "+m.Description)
		if err == nil {
			m.Embedding = emb
		}
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := s.table.upsert(ctx, m.ID, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, m.ID)
	return &m, nil
}

func (s *IntentStore) Update(ctx context.Context, id string, m types.IntentMetamodel) (*types.IntentMetamodel, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.ID = id
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = time.Now()
	m.Name = types.NormalizeIntentName(m.Name)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Embedding) == 0 {
		m.Embedding = existing.Embedding
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := s.table.upsert(ctx, id, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return &m, nil
}

// Delete removes the intent and cascades: every workflow metamodel's
// handledIntents entry referencing it is dropped. Cascade is performed by
// the caller wiring this store together with a WorkflowStore, since
// IntentStore has no reference to WorkflowStore to avoid an import cycle;
// see Orchestrator.DeleteIntent for the composed operation.
func (s *IntentStore) Delete(ctx context.Context, id string) error {
	if err := s.table.delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *IntentStore) invalidate(ctx context.Context, id string) {
	s.cache.Invalidate(ctx, "byId:intent:"+id)
	s.cache.InvalidatePrefix(ctx, "all:intent")
}

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cogniflow/orchestrator/pkg/search"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// NodeStore is the meta_nodes catalog service (§4.2). It additionally
// maintains the hybrid-search indices (§4.8) over its own documents.
type NodeStore struct {
	pool     *pgxpool.Pool
	table    *docTable
	cache    Cache
	embedder Embedder
	cacheTTL time.Duration

	vectorIdx *search.MemoryVectorIndex
	textIdx   *search.MemoryTextIndex
}

// NewNodeStore wires a Postgres-backed NodeStore with the given cache and
// embedder, and rebuilds its in-memory search indices from the existing
// rows.
func NewNodeStore(ctx context.Context, pool *pgxpool.Pool, cache Cache, embedder Embedder, cacheTTL time.Duration) (*NodeStore, error) {
	s := &NodeStore{
		pool:      pool,
		table:     newDocTable(pool, "meta_nodes"),
		cache:     cache,
		embedder:  embedder,
		cacheTTL:  cacheTTL,
		vectorIdx: search.NewMemoryVectorIndex(),
		textIdx:   search.NewMemoryTextIndex(),
	}
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		s.indexNode(m)
	}
	return s, nil
}

func (s *NodeStore) indexNode(m types.NodeMetamodel) {
	s.vectorIdx.Upsert(m.ID, m.Embedding)
	s.textIdx.Upsert(m.ID, m.Name+" "+m.Description+" "+m.QualitativeDescriptor)
}

func (s *NodeStore) FindByID(ctx context.Context, id string) (*types.NodeMetamodel, error) {
	key := "byId:node:" + id
	if raw, ok := s.cache.Get(ctx, key); ok {
		var m types.NodeMetamodel
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
	var m types.NodeMetamodel
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, string(doc), s.cacheTTL)
	return &m, nil
}

func (s *NodeStore) FindAll(ctx context.Context) ([]types.NodeMetamodel, error) {
	docs, err := s.table.getAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.NodeMetamodel, 0, len(docs))
	for _, doc := range docs {
		var m types.NodeMetamodel
		if err := json.Unmarshal(doc, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *NodeStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.table.exists(ctx, id)
}

// FindByFamilyIDAndIsLatestTrue returns the current version within a
// family, or ErrNotFound.
func (s *NodeStore) FindByFamilyIDAndIsLatestTrue(ctx context.Context, familyID string) (*types.NodeMetamodel, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range all {
		if m.FamilyID == familyID && m.IsLatest {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

// Create assigns a fresh id, stamps timestamps, computes the embedding,
// runs the validator, and refuses on failure (§4.2).
func (s *NodeStore) Create(ctx context.Context, m types.NodeMetamodel) (*types.NodeMetamodel, error) {
	if m.FamilyID == "" {
		m.FamilyID = uuid.NewString()
	}
	m.ID = uuid.NewString()
	m.IsLatest = true
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now

	if s.embedder != nil {
		emb, err := s.embedder.Embed(ctx, embeddingSeed(m))
		if err == nil {
			m.Embedding = emb
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNodeValidation, err)
	}

	doc, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := s.table.upsert(ctx, m.ID, doc); err != nil {
		return nil, err
	}
	s.indexNode(m)
	s.invalidate(ctx, m.ID, m.FamilyID)
	return &m, nil
}

// Update detects a breaking change (major version bump, §4.2): if
// breaking, clones as a new document with a fresh id, sets isLatest=true
// on the new one and flips the old to false; otherwise updates in place
// and bumps updatedAt. Either way publishes a node-metamodel-updated
// event via publish, supplied by the caller (pkg/registry subscribes to
// it) to avoid an import cycle between catalog and eventbus wiring.
func (s *NodeStore) Update(ctx context.Context, id string, next types.NodeMetamodel, publish func(familyID, metamodelID string)) (*types.NodeMetamodel, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNodeValidation, err)
	}

	breaking := existing.Version.IsBreakingBump(next.Version)
	if breaking {
		next.ID = uuid.NewString()
		next.FamilyID = existing.FamilyID
		next.IsLatest = true
		next.CreatedAt = time.Now()
		next.UpdatedAt = next.CreatedAt

		existing.IsLatest = false
		existingDoc, err := json.Marshal(existing)
		if err != nil {
			return nil, err
		}
		if err := s.table.upsert(ctx, existing.ID, existingDoc); err != nil {
			return nil, err
		}
	} else {
		next.ID = id
		next.FamilyID = existing.FamilyID
		next.CreatedAt = existing.CreatedAt
		next.UpdatedAt = time.Now()
		if len(next.Embedding) == 0 {
			next.Embedding = existing.Embedding
		}
	}

	doc, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	if err := s.table.upsert(ctx, next.ID, doc); err != nil {
		return nil, err
	}
	s.indexNode(next)
	s.invalidate(ctx, next.ID, next.FamilyID)
	if existing.ID != next.ID {
		s.invalidate(ctx, existing.ID, existing.FamilyID)
	}
	if publish != nil {
		publish(next.FamilyID, next.ID)
	}
	return &next, nil
}

func (s *NodeStore) Delete(ctx context.Context, id string) error {
	m, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.table.delete(ctx, id); err != nil {
		return err
	}
	s.vectorIdx.Delete(id)
	s.textIdx.Delete(id)
	s.invalidate(ctx, id, m.FamilyID)
	return nil
}

// HybridSearch runs the §4.8 hybrid pipeline over this store's indices,
// applying onlyEnabled/onlyLatest/types filters after scoring.
type SearchFilters struct {
	OnlyEnabled bool
	OnlyLatest  bool
	Types       []types.NodeType
}

func (s *NodeStore) HybridSearch(ctx context.Context, queryVector []float64, queryText string, filters SearchFilters) ([]search.Result, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]types.NodeMetamodel, len(all))
	for _, m := range all {
		byID[m.ID] = m
	}

	typeSet := make(map[types.NodeType]bool, len(filters.Types))
	for _, t := range filters.Types {
		typeSet[t] = true
	}

	filter := func(id string) bool {
		m, ok := byID[id]
		if !ok {
			return false
		}
		if filters.OnlyEnabled && !m.Enabled {
			return false
		}
		if filters.OnlyLatest && !m.IsLatest {
			return false
		}
		if len(typeSet) > 0 && !typeSet[m.Type] {
			return false
		}
		return true
	}

	return search.Hybrid(ctx, s.vectorIdx, s.textIdx, queryVector, queryText, search.DefaultStageDepth, search.DefaultLimit, filter)
}

func (s *NodeStore) invalidate(ctx context.Context, id, familyID string) {
	s.cache.Invalidate(ctx, "byId:node:"+id, "byFamilyId_latest:"+familyID)
	s.cache.InvalidatePrefix(ctx, "all:node")
}

func embeddingSeed(m types.NodeMetamodel) string {
	seed := m.Name + " " + string(m.Type) + " " + m.Description
	for _, p := range m.InputPorts {
		seed += " " + p.Key
	}
	for _, p := range m.OutputPorts {
		seed += " " + p.Key
	}
	return seed
}

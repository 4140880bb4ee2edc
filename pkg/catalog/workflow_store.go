package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cogniflow/orchestrator/pkg/graph"
	"github.com/cogniflow/orchestrator/pkg/middleware"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// WorkflowStore is the meta_workflows catalog service (§4.2).
type WorkflowStore struct {
	table    *docTable
	cache    Cache
	nodes    *NodeStore
	cacheTTL time.Duration
}

// NewWorkflowStore wires a Postgres-backed WorkflowStore. nodes is used to
// validate a workflow's node references at create/update time.
func NewWorkflowStore(pool *pgxpool.Pool, cache Cache, nodes *NodeStore, cacheTTL time.Duration) *WorkflowStore {
	return &WorkflowStore{
		table:    newDocTable(pool, "meta_workflows"),
		cache:    cache,
		nodes:    nodes,
		cacheTTL: cacheTTL,
	}
}

func (s *WorkflowStore) FindByID(ctx context.Context, id string) (*types.WorkflowMetamodel, error) {
	key := "byId:workflow:" + id
	if raw, ok := s.cache.Get(ctx, key); ok {
		var m types.WorkflowMetamodel
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
	var m types.WorkflowMetamodel
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, string(doc), s.cacheTTL)
	return &m, nil
}

func (s *WorkflowStore) FindAll(ctx context.Context) ([]types.WorkflowMetamodel, error) {
	docs, err := s.table.getAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.WorkflowMetamodel, 0, len(docs))
	for _, doc := range docs {
		var m types.WorkflowMetamodel
		if err := json.Unmarshal(doc, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *WorkflowStore) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.table.exists(ctx, id)
}

// FindByHandledIntentID returns the zero-based page of pageSize workflows
// handling intentID, in the store's most-recently-updated-first order. No
// ordering by handled-intent score is applied.
func (s *WorkflowStore) FindByHandledIntentID(ctx context.Context, intentID string, page, pageSize int) ([]types.WorkflowMetamodel, error) {
	all, err := s.FindAllByHandledIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	start := page * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// FindAllByHandledIntentID returns every workflow handling intentID.
func (s *WorkflowStore) FindAllByHandledIntentID(ctx context.Context, intentID string) ([]types.WorkflowMetamodel, error) {
	all, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.WorkflowMetamodel, 0)
	for _, m := range all {
		if _, ok := m.ScoreForIntent(intentID); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// FindTopNHandlingIntent returns the n highest-scored workflows handling
// intentID (§4.2).
func (s *WorkflowStore) FindTopNHandlingIntent(ctx context.Context, intentID string, n int) ([]types.WorkflowMetamodel, error) {
	all, err := s.FindAllByHandledIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		si, _ := all[i].ScoreForIntent(intentID)
		sj, _ := all[j].ScoreForIntent(intentID)
		return si > sj
	})
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// Create assigns a fresh id, stamps CreatedAt, validates structure and
// node references, and saves.
func (s *WorkflowStore) Create(ctx context.Context, m types.WorkflowMetamodel) (*types.WorkflowMetamodel, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now()
	if err := s.validateAgainstNodes(ctx, m); err != nil {
		return nil, err
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

// Update validates against the node catalog, saves, and publishes a
// workflow-metamodel-updated event via publish.
func (s *WorkflowStore) Update(ctx context.Context, id string, next types.WorkflowMetamodel, publish func(metamodelID string)) (*types.WorkflowMetamodel, error) {
	existing, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next.ID = id
	next.CreatedAt = existing.CreatedAt
	if err := s.validateAgainstNodes(ctx, next); err != nil {
		return nil, err
	}
	doc, err := json.Marshal(next)
	if err != nil {
		return nil, err
	}
	if err := s.table.upsert(ctx, id, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	if publish != nil {
		publish(id)
	}
	return &next, nil
}

// Delete removes the workflow.
func (s *WorkflowStore) Delete(ctx context.Context, id string) error {
	if err := s.table.delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// RemoveIntentEverywhere cascades an intent deletion (§4.2: "for intents
// additionally cascades: removes the intent from every workflow's
// handledIntents").
func (s *WorkflowStore) RemoveIntentEverywhere(ctx context.Context, intentID string) error {
	all, err := s.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, m := range all {
		filtered := m.HandledIntents[:0]
		changed := false
		for _, h := range m.HandledIntents {
			if h.IntentID == intentID {
				changed = true
				continue
			}
			filtered = append(filtered, h)
		}
		if !changed {
			continue
		}
		m.HandledIntents = filtered
		doc, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := s.table.upsert(ctx, m.ID, doc); err != nil {
			return err
		}
		s.invalidate(ctx, m.ID)
	}
	return nil
}

// UpdateMultipleEdgeBindings persists bindings learned by port adaptation
// (§4.4, §4.5) for several edges of one workflow in a single write.
func (s *WorkflowStore) UpdateMultipleEdgeBindings(ctx context.Context, workflowID string, newBindings map[string]map[string]string) error {
	m, err := s.FindByID(ctx, workflowID)
	if err != nil {
		return err
	}
	for i := range m.Edges {
		extra, ok := newBindings[m.Edges[i].ID]
		if !ok {
			continue
		}
		if m.Edges[i].Bindings == nil {
			m.Edges[i].Bindings = make(map[string]string, len(extra))
		}
		for src, tgt := range extra {
			m.Edges[i].Bindings[src] = tgt
		}
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.table.upsert(ctx, workflowID, doc); err != nil {
		return err
	}
	s.invalidate(ctx, workflowID)
	return nil
}

func (s *WorkflowStore) validateAgainstNodes(ctx context.Context, m types.WorkflowMetamodel) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkflowValidation, err)
	}
	if err := middleware.ValidateWorkflowSize(m.Nodes, m.Edges, middleware.DefaultSizeLimitConfig()); err != nil {
		return fmt.Errorf("%w: %v", ErrWorkflowValidation, err)
	}
	if s.nodes == nil {
		return nil
	}
	for _, n := range m.Nodes {
		if _, err := s.nodes.FindByID(ctx, n.NodeMetamodelID); err != nil {
			return fmt.Errorf("%w: node metamodel %s: %v", ErrWorkflowValidation, n.NodeMetamodelID, err)
		}
	}
	return nil
}

// ExecutionOrder returns a topological ordering of m's nodes, or an error
// if m's edges contain a cycle. The engine's own execution loop tolerates
// cycles (a node is only ever processed once, so a back-edge just never
// re-fires its target), so this is advisory only — useful for surfacing a
// likely-unintended cyclic workflow to an author before they run it, not a
// precondition the store enforces on Create/Update.
func (s *WorkflowStore) ExecutionOrder(m types.WorkflowMetamodel) ([]string, error) {
	return graph.FromMetamodel(m).TopologicalSort()
}

func (s *WorkflowStore) invalidate(ctx context.Context, id string) {
	s.cache.Invalidate(ctx, "byId:workflow:"+id)
	s.cache.InvalidatePrefix(ctx, "all:workflow")
	s.cache.InvalidatePrefix(ctx, "byIntent:")
}

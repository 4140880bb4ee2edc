package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cogniflow/orchestrator/pkg/eventbus"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// instanceState is the three-state machine §9's redesign note recommends
// in place of a bare deprecated bool plus a separately-mutated ref count.
type instanceState int

const (
	stateFresh instanceState = iota
	stateDeprecated
	stateDeprecatedInFlight
)

type nodeEntry struct {
	instance *types.NodeInstance
	state    instanceState
	refCount int
}

// NodeLookup re-fetches a node metamodel by id, typically
// catalog.NodeStore.FindByID. Declared locally to avoid importing
// pkg/catalog from pkg/registry.
type NodeLookup func(metamodelID string) (types.NodeMetamodel, error)

// NodePool is the metamodel-id-keyed instance pool for NodeInstance (§4.3).
type NodePool struct {
	mu      sync.Mutex
	entries map[string]*nodeEntry
	lookup  NodeLookup
	// Refresh is called after a hot-swap with the new instance, for
	// type-specific cache invalidation (§4.3: "e.g. LLM clients drop
	// their cached chat client"). This pool's processors hold no
	// per-instance client state, so the default is a no-op; callers that
	// do cache per-instance clients can wire one in.
	Refresh func(*types.NodeInstance)
}

// NewNodePool returns a NodePool subscribed to bus for
// eventbus.NodeMetamodelUpdated events, resolving updated metamodels
// through lookup.
func NewNodePool(bus *eventbus.Bus, lookup NodeLookup) *NodePool {
	p := &NodePool{entries: make(map[string]*nodeEntry), lookup: lookup}
	bus.Subscribe(func(e eventbus.Event) {
		if e.Kind == eventbus.NodeMetamodelUpdated {
			p.handleUpdate(e.MetamodelID)
		}
	})
	return p
}

// GetOrCreate implements the §4.3 getOrCreate algorithm for a single node
// metamodel.
func (p *NodePool) GetOrCreate(metamodel types.NodeMetamodel) *types.NodeInstance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getOrCreateLocked(metamodel)
}

func (p *NodePool) getOrCreateLocked(metamodel types.NodeMetamodel) *types.NodeInstance {
	entry, ok := p.entries[metamodel.ID]
	if ok {
		switch entry.state {
		case stateFresh:
			return entry.instance
		case stateDeprecated, stateDeprecatedInFlight:
			if entry.refCount > 0 {
				// Still executing; its replacement is built on the next
				// getOrCreate once the run finishes.
				return entry.instance
			}
			delete(p.entries, metamodel.ID)
		}
	}

	inst := &types.NodeInstance{ID: uuid.NewString(), Metamodel: metamodel}
	p.entries[metamodel.ID] = &nodeEntry{instance: inst, state: stateFresh}
	return inst
}

// MarkRunning increments the execution reference counter for metamodelID.
func (p *NodePool) MarkRunning(metamodelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[metamodelID]; ok {
		e.refCount++
		if e.state == stateDeprecated {
			e.state = stateDeprecatedInFlight
		}
	}
}

// MarkFinished decrements the execution reference counter for metamodelID,
// always (whether the run succeeded or failed).
func (p *NodePool) MarkFinished(metamodelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[metamodelID]
	if !ok {
		return
	}
	if e.refCount > 0 {
		e.refCount--
	}
	if e.refCount == 0 && e.state == stateDeprecatedInFlight {
		e.state = stateDeprecated
	}
}

// IsRunning reports whether metamodelID currently has in-flight executions.
func (p *NodePool) IsRunning(metamodelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[metamodelID]
	return ok && e.refCount > 0
}

// handleUpdate applies the §4.3 node-metamodel-updated event rule: hot-swap
// if idle, deprecate if running.
func (p *NodePool) handleUpdate(metamodelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[metamodelID]
	if !ok {
		// Nothing pooled yet for this metamodel; the next GetOrCreate will
		// fetch the current document directly.
		return
	}
	if entry.refCount > 0 {
		entry.state = stateDeprecatedInFlight
		return
	}

	updated, err := p.lookup(metamodelID)
	if err != nil {
		entry.state = stateDeprecated
		return
	}
	entry.instance = &types.NodeInstance{ID: entry.instance.ID, Metamodel: updated}
	entry.state = stateFresh
	if p.Refresh != nil {
		p.Refresh(entry.instance)
	}
}

package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/cogniflow/orchestrator/pkg/eventbus"
	"github.com/cogniflow/orchestrator/pkg/types"
)

type workflowEntry struct {
	instance *types.WorkflowInstance
	state    instanceState
	refCount int
}

// WorkflowLookup re-fetches a workflow metamodel by id, typically
// catalog.WorkflowStore.FindByID.
type WorkflowLookup func(metamodelID string) (types.WorkflowMetamodel, error)

// WorkflowPool is the metamodel-id-keyed instance pool for WorkflowInstance
// (§4.3). It owns a NodePool to resolve and refresh child node instances.
type WorkflowPool struct {
	mu         sync.Mutex
	entries    map[string]*workflowEntry
	lookup     WorkflowLookup
	nodeLookup NodeLookup
	nodes      *NodePool
}

// NewWorkflowPool returns a WorkflowPool subscribed to bus for
// eventbus.WorkflowMetamodelUpdated events.
func NewWorkflowPool(bus *eventbus.Bus, lookup WorkflowLookup, nodeLookup NodeLookup, nodes *NodePool) *WorkflowPool {
	p := &WorkflowPool{
		entries:    make(map[string]*workflowEntry),
		lookup:     lookup,
		nodeLookup: nodeLookup,
		nodes:      nodes,
	}
	bus.Subscribe(func(e eventbus.Event) {
		if e.Kind == eventbus.WorkflowMetamodelUpdated {
			p.handleUpdate(e.MetamodelID)
		}
	})
	return p
}

// GetOrCreate implements the §4.3 getOrCreate algorithm for a workflow
// metamodel, additionally refreshing any deprecated-and-idle child node
// instances when the workflow itself is not running.
func (p *WorkflowPool) GetOrCreate(metamodel types.WorkflowMetamodel) *types.WorkflowInstance {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[metamodel.ID]
	if ok {
		switch entry.state {
		case stateFresh:
			if entry.refCount == 0 {
				p.refreshChildrenLocked(entry.instance)
			}
			return entry.instance
		case stateDeprecated, stateDeprecatedInFlight:
			if entry.refCount > 0 {
				return entry.instance
			}
			delete(p.entries, metamodel.ID)
		}
	}

	inst := p.buildInstance(metamodel)
	p.entries[metamodel.ID] = &workflowEntry{instance: inst, state: stateFresh}
	return inst
}

func (p *WorkflowPool) buildInstance(metamodel types.WorkflowMetamodel) *types.WorkflowInstance {
	inst := &types.WorkflowInstance{
		ID:            uuid.NewString(),
		Metamodel:     metamodel,
		NodeInstances: make(map[string]*types.NodeInstance, len(metamodel.Nodes)),
	}
	p.refreshChildrenLocked(inst)
	return inst
}

func (p *WorkflowPool) refreshChildrenLocked(inst *types.WorkflowInstance) {
	for _, wn := range inst.Metamodel.Nodes {
		nodeMeta, err := p.nodeLookup(wn.NodeMetamodelID)
		if err != nil {
			continue
		}
		inst.NodeInstances[wn.ID] = p.nodes.GetOrCreate(nodeMeta)
	}
}

// MarkRunning increments the execution reference counter for metamodelID.
func (p *WorkflowPool) MarkRunning(metamodelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.entries[metamodelID]; ok {
		e.refCount++
		if e.state == stateDeprecated {
			e.state = stateDeprecatedInFlight
		}
	}
}

// MarkFinished decrements the execution reference counter for metamodelID.
func (p *WorkflowPool) MarkFinished(metamodelID string) {
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

// IsRunning reports whether metamodelID currently has in-flight runs.
func (p *WorkflowPool) IsRunning(metamodelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[metamodelID]
	return ok && e.refCount > 0
}

// handleUpdate classifies a workflow-metamodel-updated event per §4.3:
// breaking (major bump or differing node membership) or arriving while
// running always deprecates; otherwise hot-swap in place.
func (p *WorkflowPool) handleUpdate(metamodelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[metamodelID]
	if !ok {
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

	breaking := entry.instance.Metamodel.Version.IsBreakingBump(updated.Version) ||
		!membershipEqual(entry.instance.NodeMembership(), membershipOf(updated))

	if breaking {
		entry.state = stateDeprecated
		return
	}

	entry.instance.Metamodel = updated
	p.refreshChildrenLocked(entry.instance)
	entry.state = stateFresh
}

// TopNHandlingIntent returns the n highest-scored fresh, non-deprecated
// pooled workflow instances that handle intentID, descending by score
// (§4.8 step 1: "ask the workflow instance pool for the top-N instances
// handling the intent"). Deprecated or in-flight-only entries are skipped;
// the caller falls back to the catalog when this returns empty.
func (p *WorkflowPool) TopNHandlingIntent(intentID string, n int) []*types.WorkflowInstance {
	p.mu.Lock()
	defer p.mu.Unlock()

	type scored struct {
		inst  *types.WorkflowInstance
		score float64
	}
	var candidates []scored
	for _, e := range p.entries {
		if e.state != stateFresh {
			continue
		}
		score, ok := e.instance.Metamodel.ScoreForIntent(intentID)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{inst: e.instance, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if n >= 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]*types.WorkflowInstance, len(candidates))
	for i, c := range candidates {
		out[i] = c.inst
	}
	return out
}

func membershipOf(m types.WorkflowMetamodel) map[string]string {
	out := make(map[string]string, len(m.Nodes))
	for _, n := range m.Nodes {
		out[n.ID] = n.NodeMetamodelID
	}
	return out
}

func membershipEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

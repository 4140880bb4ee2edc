package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cogniflow/orchestrator/pkg/condition"
	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/executor"
	"github.com/cogniflow/orchestrator/pkg/logging"
	"github.com/cogniflow/orchestrator/pkg/middleware"
	"github.com/cogniflow/orchestrator/pkg/observer"
	"github.com/cogniflow/orchestrator/pkg/portadapter"
	"github.com/cogniflow/orchestrator/pkg/registry"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// EdgeBindingPersister is the subset of catalog.WorkflowStore port
// adaptation needs, declared locally so pkg/engine does not import
// pkg/catalog directly (mirrors pkg/registry's NodeLookup pattern).
type EdgeBindingPersister interface {
	UpdateMultipleEdgeBindings(ctx context.Context, workflowID string, newBindings map[string]map[string]string) error
}

// Engine is the WorkflowExecutor (§4.4).
type Engine struct {
	processors *executor.Registry
	nodePool   *registry.NodePool
	adapter    *portadapter.Adapter
	persister  EdgeBindingPersister
	logger     *logging.Logger
	observers  *observer.Manager
	middleware *middleware.Chain
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithAdapter enables run-time port adaptation (§4.5). Without it, a node
// with unsatisfied required inputs fails immediately.
func WithAdapter(a *portadapter.Adapter) Option {
	return func(e *Engine) { e.adapter = a }
}

// WithPersister enables persisting learned bindings back to the catalog
// (§4.5 step 7). Without it, adaptations apply for this run only.
func WithPersister(p EdgeBindingPersister) Option {
	return func(e *Engine) { e.persister = p }
}

// WithLogger attaches structured logging.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObservers attaches an observer.Manager for lifecycle notifications.
func WithObservers(m *observer.Manager) Option {
	return func(e *Engine) { e.observers = m }
}

// WithMiddleware wraps every node's dispatch through processors with chain.
// Without it, Execute calls processors.Process directly.
func WithMiddleware(chain *middleware.Chain) Option {
	return func(e *Engine) { e.middleware = chain }
}

// New returns an Engine dispatching node execution through processors and
// tracking execution reference counts in nodePool.
func New(processors *executor.Registry, nodePool *registry.NodePool, opts ...Option) *Engine {
	e := &Engine{processors: processors, nodePool: nodePool}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type nodeState struct {
	node              types.WorkflowNode
	instance          *types.NodeInstance
	totalIncoming     int
	satisfiedIncoming int
	queued            bool
	processed         bool
}

// Execute runs wf to completion over ectx, per §4.4's main loop.
func (e *Engine) Execute(ctx context.Context, wf *types.WorkflowInstance, ectx *execctx.ExecutionContext) (*types.OrchestrationReport, error) {
	if !wf.Metamodel.Enabled {
		return nil, ErrDisabled
	}

	ctx = middleware.WithWorkflowID(ctx, wf.Metamodel.ID)

	report := &types.OrchestrationReport{
		WorkflowID:       wf.Metamodel.ID,
		StartTime:        time.Now(),
		NodeExecutions:   make(map[string]types.NodeDetail),
		ContextSnapshots: make(map[string]map[string]interface{}),
	}

	states := make(map[string]*nodeState, len(wf.Metamodel.Nodes))
	for _, wn := range wf.Metamodel.Nodes {
		states[wn.ID] = &nodeState{node: wn, instance: wf.NodeInstances[wn.ID]}
	}

	outgoing := make(map[string][]types.WorkflowEdge)
	incoming := make(map[string][]types.WorkflowEdge)
	for _, edge := range wf.Metamodel.Edges {
		outgoing[edge.SourceNodeID] = append(outgoing[edge.SourceNodeID], edge)
		incoming[edge.TargetNodeID] = append(incoming[edge.TargetNodeID], edge)
		if st, ok := states[edge.TargetNodeID]; ok {
			st.totalIncoming++
		}
	}

	queue := make([]string, 0, len(wf.Metamodel.Nodes))
	for _, wn := range wf.Metamodel.Nodes {
		if states[wn.ID].totalIncoming == 0 {
			queue = append(queue, wn.ID)
			states[wn.ID].queued = true
		}
	}

	var pendingBindings map[string]map[string]string // edgeID -> merged bindings
	hadFailure := false

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		st := states[currentID]
		if st == nil || st.processed {
			continue
		}
		st.processed = true
		report.ExecutionOrder = append(report.ExecutionOrder, currentID)

		detail := types.NodeDetail{WorkflowNodeID: currentID, StartedAt: time.Now()}
		report.ContextSnapshots["before_"+currentID] = ectx.AsMap()

		nodeMeta := st.instance.Metamodel
		for _, port := range nodeMeta.InputPorts {
			if !ectx.ContainsKey(port.Key) && port.HasDefault {
				_ = ectx.Put(port.Key, port.Default)
			}
		}

		var runErr error
		if missing := missingRequiredPorts(ectx, nodeMeta); len(missing) > 0 {
			runErr = e.adaptInputs(ctx, states, incoming, currentID, missing, ectx, report, &pendingBindings)
			if e.adapter != nil {
				report.TokenUsage = report.TokenUsage.Add(e.adapter.TokenUsage())
			}
		}

		if runErr == nil {
			e.nodePool.MarkRunning(nodeMeta.ID)
			if e.middleware != nil {
				runErr = e.middleware.Execute(ctx, ectx, nodeMeta, &detail, e.processors.Process)
			} else {
				runErr = e.processors.Process(ctx, ectx, nodeMeta, &detail)
			}
			e.nodePool.MarkFinished(nodeMeta.ID)
		}

		detail.FinishedAt = time.Now()
		detail.Success = runErr == nil
		if runErr != nil {
			detail.Error = runErr.Error()
			hadFailure = true
			if e.logger != nil {
				e.logger.WithNodeID(currentID).WithError(runErr).Warn("node execution failed")
			}
		}
		detail.ContextAfter = ectx.AsMap()
		report.ContextSnapshots["after_"+currentID] = detail.ContextAfter
		report.NodeExecutions[currentID] = detail
		report.TokenUsage = report.TokenUsage.Add(detail.TokenUsage)
		e.notify(ctx, wf, currentID, detail)

		for _, port := range nodeMeta.OutputPorts {
			if !ectx.ContainsKey(port.Key) && port.HasDefault {
				_ = ectx.Put(port.Key, port.Default)
			}
		}

		for _, edge := range outgoing[currentID] {
			passed, evalErr := condition.Evaluate(edge.Condition, ectx)
			reason := ""
			if evalErr != nil {
				passed = false
				reason = evalErr.Error()
			}
			report.EdgeEvaluations = append(report.EdgeEvaluations, types.EdgeEvaluation{
				EdgeID: edge.ID, Passed: passed, Reason: reason,
			})
			if !passed {
				continue
			}

			targetState := states[edge.TargetNodeID]
			if targetState == nil {
				continue
			}
			applyBindings(edge, ectx, targetState.instance.Metamodel)
			targetState.satisfiedIncoming++

			ready := false
			switch targetState.node.ExecutionType {
			case types.ExecutionTypeMerge:
				ready = targetState.satisfiedIncoming >= 1
			default:
				ready = targetState.satisfiedIncoming == targetState.totalIncoming
			}
			if ready && !targetState.queued && !targetState.processed {
				queue = append(queue, edge.TargetNodeID)
				targetState.queued = true
			}
		}
	}

	if len(pendingBindings) > 0 && e.persister != nil {
		if err := e.persister.UpdateMultipleEdgeBindings(ctx, wf.Metamodel.ID, pendingBindings); err != nil && e.logger != nil {
			e.logger.WithError(err).Warn("failed to persist learned port-adaptation bindings")
		}
	}

	report.EndTime = time.Now()
	report.Success = !hadFailure
	report.ComputeMetrics()
	return report, nil
}

func (e *Engine) notify(ctx context.Context, wf *types.WorkflowInstance, nodeID string, detail types.NodeDetail) {
	if e.observers == nil || !e.observers.HasObservers() {
		return
	}
	status := observer.StatusSuccess
	var evErr error
	if !detail.Success {
		status = observer.StatusFailure
		evErr = fmt.Errorf("%s", detail.Error)
	}
	e.observers.Notify(ctx, observer.Event{
		Type: observer.EventNodeEnd, Status: status, Timestamp: detail.FinishedAt,
		WorkflowID: wf.Metamodel.ID, NodeID: nodeID, StartTime: detail.StartedAt,
		ElapsedTime: detail.Duration(), Error: evErr,
	})
}

func missingRequiredPorts(ectx *execctx.ExecutionContext, node types.NodeMetamodel) []types.Port {
	var missing []types.Port
	for _, port := range node.RequiredInputPorts() {
		if !ectx.ContainsKey(port.Key) {
			missing = append(missing, port)
		}
	}
	return missing
}

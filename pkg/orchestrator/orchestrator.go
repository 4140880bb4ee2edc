package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cogniflow/orchestrator/pkg/engine"
	"github.com/cogniflow/orchestrator/pkg/execctx"
	"github.com/cogniflow/orchestrator/pkg/intent"
	"github.com/cogniflow/orchestrator/pkg/mapping"
	"github.com/cogniflow/orchestrator/pkg/orcherr"
	"github.com/cogniflow/orchestrator/pkg/routing"
	"github.com/cogniflow/orchestrator/pkg/types"
)

// DefaultTimeout is §5's recommended per-request time budget.
const DefaultTimeout = 120 * time.Second

// IntentDeleter is the subset of catalog.IntentStore the composed
// DeleteIntent operation needs, declared locally so this package does not
// import pkg/catalog directly.
type IntentDeleter interface {
	Delete(ctx context.Context, id string) error
}

// WorkflowIntentRemover is the subset of catalog.WorkflowStore the composed
// DeleteIntent operation needs.
type WorkflowIntentRemover interface {
	RemoveIntentEverywhere(ctx context.Context, intentID string) error
}

// Orchestrator composes IntentDetector, Router, InputMapper, and Engine
// behind the single public orchestrate(request) entry point (§6).
type Orchestrator struct {
	detector *intent.Detector
	router   *routing.Router
	mapper   *mapping.InputMapper
	engine   *engine.Engine

	intents   IntentDeleter
	workflows WorkflowIntentRemover

	timeout time.Duration
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithTimeout overrides the per-request time budget (default
// DefaultTimeout).
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithIntentDeletion wires the collaborators DeleteIntent needs. Without
// it, DeleteIntent returns ErrDeletionNotConfigured.
func WithIntentDeletion(intents IntentDeleter, workflows WorkflowIntentRemover) Option {
	return func(o *Orchestrator) {
		o.intents = intents
		o.workflows = workflows
	}
}

// New returns an Orchestrator composing the given collaborators.
func New(detector *intent.Detector, router *routing.Router, mapper *mapping.InputMapper, eng *engine.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{detector: detector, router: router, mapper: mapper, engine: eng, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Orchestrate runs the full pipeline over request: detect intent, route to
// a workflow instance, map inputs, execute, and return the final context
// output alongside the full observability report (§6).
func (o *Orchestrator) Orchestrate(ctx context.Context, request string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	detection, err := o.detector.Detect(ctx, request)
	if err != nil {
		if errors.Is(err, intent.ErrIncoherentInput) {
			return nil, orcherr.New(orcherr.KindIntentUnresolved, err)
		}
		return nil, orcherr.New(orcherr.KindLLMError, err)
	}

	report := Report{
		IntentDetection: IntentDetectionReport{
			IntentID:   detection.IntentID,
			IntentName: detection.IntentName,
			Confidence: detection.Confidence,
			IsNew:      detection.IsNew,
			Variables:  detection.Variables,
		},
		TokenUsage: detection.TokenUsage,
	}

	wf, err := o.router.Route(ctx, detection.IntentID)
	if err != nil {
		if errors.Is(err, routing.ErrNoWorkflowForIntent) {
			return nil, orcherr.New(orcherr.KindNoWorkflowForIntent, err)
		}
		return nil, orcherr.New(orcherr.KindCatalogError, err)
	}
	report.Routing = RoutingReport{WorkflowID: wf.Metamodel.ID, WorkflowVersion: wf.Metamodel.Version.String()}

	entryNodes := resolveEntryNodes(wf)
	ectx := execctx.New()

	bindings, err := o.mapper.Map(ctx, ectx, request, detection.Variables, entryNodes)
	if err != nil {
		if errors.Is(err, mapping.ErrMappingUnsatisfiable) {
			return nil, orcherr.New(orcherr.KindInputMappingImpossible, err)
		}
		return nil, orcherr.New(orcherr.KindLLMError, err)
	}
	report.InputMapping = InputMappingReport{Bindings: bindings}
	report.TokenUsage = report.TokenUsage.Add(o.mapper.TokenUsage())

	execReport, err := o.engine.Execute(ctx, wf, ectx)
	if err != nil {
		if errors.Is(err, engine.ErrDisabled) {
			return nil, orcherr.New(orcherr.KindWorkflowDisabled, err)
		}
		return nil, orcherr.New(orcherr.KindCatalogError, err)
	}
	report.WorkflowExecution = execReport
	report.TokenUsage = report.TokenUsage.Add(execReport.TokenUsage)

	if !execReport.Success {
		return &Result{Output: ectx.AsMap(), Observability: report},
			orcherr.New(orcherr.KindNodeProcessingFailed, fmt.Errorf("workflow run %s did not complete successfully", wf.Metamodel.ID))
	}

	return &Result{Output: ectx.AsMap(), Observability: report}, nil
}

// DeleteIntent implements the composed delete operation (§4.2): remove the
// intent from the catalog, then cascade-remove it from every workflow's
// handledIntents.
func (o *Orchestrator) DeleteIntent(ctx context.Context, intentID string) error {
	if o.intents == nil || o.workflows == nil {
		return ErrDeletionNotConfigured
	}
	if err := o.intents.Delete(ctx, intentID); err != nil {
		return orcherr.New(orcherr.KindCatalogError, err)
	}
	if err := o.workflows.RemoveIntentEverywhere(ctx, intentID); err != nil {
		return orcherr.New(orcherr.KindCatalogError, err)
	}
	return nil
}

// resolveEntryNodes maps a workflow instance's entry node ids to their
// resolved NodeMetamodel, for InputMapper.Map's required-port scan.
func resolveEntryNodes(wf *types.WorkflowInstance) []types.NodeMetamodel {
	ids := wf.Metamodel.EntryNodes()
	out := make([]types.NodeMetamodel, 0, len(ids))
	for _, id := range ids {
		if inst, ok := wf.NodeInstances[id]; ok && inst != nil {
			out = append(out, inst.Metamodel)
		}
	}
	return out
}

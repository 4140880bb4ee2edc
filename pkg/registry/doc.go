// Package registry implements the operational-layer instance pools (§4.3):
// NodePool and WorkflowPool, each mapping a metamodel id to a live,
// possibly-shared instance, with an execution reference counter and a
// hot-swap/deprecation state machine driven by pkg/eventbus.
//
// Grounded on the teacher's pkg/executor.Registry locking discipline
// (RWMutex-guarded map, get-or-register), generalized from a fixed
// type-keyed table to a metamodel-id-keyed pool with per-entry state.
//
// Per SPEC_FULL §9's redesign note ("deprecated flag mixed with reference
// counting"), each pool entry's deprecation status and reference count are
// modeled as one small state machine (Fresh, Deprecated,
// DeprecatedInFlight) instead of two independently-mutated fields, so a
// hot-swap decision and a markRunning/markFinished transition can never
// observe an inconsistent combination.
package registry

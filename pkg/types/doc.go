// Package types provides the shared data model for the orchestrator.
//
// # Overview
//
// This package holds every type shared across the catalog, registry,
// executor and routing packages, mirroring the teacher's convention of a
// dependency-free "types" package that avoids import cycles between the
// packages that operate over it.
//
// # Key Components
//
// Ports and schemas: Port, PortSchema and the typed value union used to
// validate values flowing between nodes.
//
// Metamodels: NodeMetamodel, IntentMetamodel and WorkflowMetamodel, the
// versioned, catalog-resident definitions of the operational layer.
//
// Instances: NodeInstance and WorkflowInstance, the live counterparts kept
// by the instance pools.
//
// Observability: the per-run report structures populated by the executor.
//
// # Design Principles
//
//   - Minimal dependencies: this package imports only the standard library.
//   - Each metamodel owns its own validation; callers surface errors rather
//     than panic.
package types

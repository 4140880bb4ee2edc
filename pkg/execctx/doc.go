// Package execctx implements the dot-path-addressable ExecutionContext
// (§4.1): the shared, mutable container a WorkflowExecutor run threads
// through node preparation, edge bindings, and node outputs.
//
// The container is backed by a single JSON document manipulated through
// tidwall/gjson (read) and tidwall/sjson (write), which already implement
// the spec's path semantics for free: missing intermediate containers are
// created on write, choosing a sequence over a mapping when the next path
// segment parses as a non-negative integer, and sequences are extended
// with nulls to reach an out-of-range index.
package execctx

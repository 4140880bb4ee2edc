// Package condition implements the EdgeConditionEvaluator (§4.6): the
// predicate that gates a WorkflowEdge's transition by reading the shared
// ExecutionContext and applying a small, fixed set of comparison
// operations.
//
// The operation set is enumerated and closed (twelve operations, each with
// its own tolerant-equality rule), so it is evaluated with a hand-written
// switch rather than a general expression engine — see DESIGN.md for why
// expr-lang/expr is not wired into this module at all.
package condition

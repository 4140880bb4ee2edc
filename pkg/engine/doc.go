// Package engine implements WorkflowExecutor (§4.4): data-flow driven
// execution of a workflow instance's node graph over a shared
// ExecutionContext, with a FIFO ready queue, MERGE/JOIN readiness,
// edge-condition gating, binding application, and LLM-backed port
// adaptation that repairs missing required inputs at run time.
//
// Unlike the teacher's topological-levels-then-parallel-fan-out engine, a
// single run here is sequential: one worker processes the ready queue node
// by node (§5: "a single worker executes each workflow run"). The process
// hosts many concurrent runs, but a run's ExecutionContext and node-order
// bookkeeping are never shared across goroutines.
package engine

// Package executor implements the Strategy Pattern for node processing: one
// NodeProcessor per node family, dispatched through a Registry keyed by the
// metamodel's Family() discriminator ("AI/LLM", "AI/EMBEDDINGS", "TOOL/REST",
// "TOOL/VECTOR_DB", "FLOW/GATEWAY").
//
// A NodeProcessor reads its required inputs directly off the shared
// ExecutionContext by its own input port keys, performs its side effect
// (LLM completion, embedding, HTTP call, vector search, or branch
// pass-through), and writes its outputs back by output port key. The
// WorkflowExecutor (pkg/engine) owns before/after context snapshotting,
// default-output application, and edge propagation; processors never see
// the graph.
//
//	reg := executor.NewRegistry()
//	reg.MustRegister(executor.NewLLMProcessor(bridge))
//	reg.MustRegister(executor.NewRESTProcessor(cfg))
//	err := reg.Process(ctx, ectx, metamodel, detail)
package executor

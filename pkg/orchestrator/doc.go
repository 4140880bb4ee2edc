// Package orchestrator composes the core collaborators — IntentDetector,
// Router, InputMapper, and Engine — behind the single public entry point
// named in §6: orchestrate(request) -> {output, observability}. It also
// exposes the composed DeleteIntent operation (§4.2: deleting an intent
// cascades to every workflow's handledIntents).
//
// Orchestrate bounds the whole pipeline with a per-request timeout (§5:
// "recommended default 120s"), propagated via context.WithTimeout into
// every blocking collaborator call, mirroring the teacher's own
// Engine.Execute timeout wrapping.
package orchestrator

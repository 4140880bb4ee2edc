// Package orcherr defines the orchestrator's typed error taxonomy (§7): a
// Kind enum plus an Error wrapper that carries the originating cause and
// free-form fields, so callers can switch on Kind instead of matching
// strings, while errors.Is/As still work against the wrapped per-package
// sentinels (engine.ErrUnsatisfiableInputs, routing.ErrNoWorkflowForIntent,
// and so on).
package orcherr

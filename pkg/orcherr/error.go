package orcherr

import "fmt"

// Kind discriminates the orchestrator's error taxonomy (§7).
type Kind string

const (
	KindIntentUnresolved       Kind = "INTENT_UNRESOLVED"
	KindNoWorkflowForIntent    Kind = "NO_WORKFLOW_FOR_INTENT"
	KindInputMappingImpossible Kind = "INPUT_MAPPING_IMPOSSIBLE"
	KindWorkflowDisabled       Kind = "WORKFLOW_DISABLED"
	KindNodeProcessingFailed   Kind = "NODE_PROCESSING_FAILED"
	KindUnsatisfiableInputs    Kind = "UNSATISFIABLE_INPUTS"
	KindInvalidEdgeCondition   Kind = "INVALID_EDGE_CONDITION"
	KindCatalogError           Kind = "CATALOG_ERROR"
	KindSearchError            Kind = "SEARCH_ERROR"
	KindLLMError               Kind = "LLM_ERROR"
	KindValidationError        Kind = "VALIDATION_ERROR"
)

// Error wraps a Kind, the originating cause, and free-form diagnostic
// fields (e.g. nodeId, missingKeys) around an error surfaced to the
// orchestrator's caller.
type Error struct {
	Kind   Kind
	Cause  error
	Fields map[string]interface{}
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause under kind with no extra fields.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// WithField returns a copy of e with field=value added, for call sites
// that want to attach a nodeId, missingKeys, etc. without constructing the
// Fields map by hand.
func (e *Error) WithField(key string, value interface{}) *Error {
	fields := make(map[string]interface{}, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &Error{Kind: e.Kind, Cause: e.Cause, Fields: fields}
}

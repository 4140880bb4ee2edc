package mapping

import "errors"

// ErrMappingUnsatisfiable is returned when no binding set (LLM-proposed or
// trivial) leaves every entry node's required input ports valid.
var ErrMappingUnsatisfiable = errors.New("mapping: could not satisfy required entry ports")

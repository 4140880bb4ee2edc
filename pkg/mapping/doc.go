// Package mapping implements InputMapper (§4.9): given intent-extracted
// variables, the original user request, and a workflow's entry-point node
// metamodels, produce a single portPath -> value map that satisfies every
// entry node's required input ports, validating the result against
// PortSchema before returning it.
//
// New domain logic with no teacher analog; grounded on pkg/llm for the
// structured-output call and pkg/execctx/pkg/types for the port-validation
// post-condition.
package mapping

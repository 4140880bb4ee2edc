// Package routing implements workflow selection for a detected intent
// (§4.8): consult the live workflow instance pool first, falling back to
// the catalog, then pick among the top-scored candidates by temperature-
// weighted sampling rather than pure argmax.
//
// New domain logic with no direct teacher analog; grounded on the
// teacher's pkg/graph topological sort for its numerically-careful style
// (pre-sized slices, explicit tie-breaking) and implemented with
// math/rand/v2 for the weighted draw.
package routing

// Package portadapter implements PortAdapter (§4.11): given a source
// node's output ports and a target node's input ports, ask an LLM to
// propose a sourcePath -> targetPath binding map that repairs a missing
// required input. The adapter is side-effect free; applying the returned
// bindings is the caller's (pkg/engine's) job.
//
// New domain logic with no teacher analog; grounded on pkg/llm for the
// structured-output call.
package portadapter

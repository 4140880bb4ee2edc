// Package intent implements IntentDetector (§4.10): vector-search the
// intent catalog for candidates, ask an LLM to resolve the user's text
// against them (or declare a brand new intent), reconcile the LLM's answer
// against the candidate set, normalize names and variable keys to
// UPPER_SNAKE_CASE, and persist newly discovered intents.
//
// New domain logic with no teacher analog; grounded on pkg/search for
// vector retrieval and pkg/llm for the structured-output call.
package intent

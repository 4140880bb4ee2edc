// Package llm is the LLM bridge: the single collaborator intent
// detection, input mapping, and port adaptation call through (§6's "LLM
// client" external interface). Two Bridge implementations are provided,
// one per vendor SDK in the module's dependency stack. cmd/orchestratord
// picks one at startup from its LLM_PROVIDER setting and wraps it in a
// RetryingBridge; an AI/LLM node's LLMConfig.Provider does not select the
// Bridge. Callers may also inject a Bridge directly for the LLM-backed
// core components.
package llm

package executor

import "errors"

// Sentinel errors for node processor dispatch and execution.
var (
	// ErrNoProcessorForFamily is returned when no NodeProcessor is
	// registered for a metamodel's Family() discriminator.
	ErrNoProcessorForFamily = errors.New("executor: no processor registered for node family")
	// ErrProcessorAlreadyRegistered is returned by Register when a
	// processor for the family is already present.
	ErrProcessorAlreadyRegistered = errors.New("executor: processor already registered for family")
	// ErrMissingTypeConfig is returned when a node's type-specific config
	// pointer (LLM/Embeddings/REST/VectorDB/Gateway) is nil at process time.
	ErrMissingTypeConfig = errors.New("executor: node missing type-specific config")

	// ErrHTTPNotAllowed is returned by the REST processor when the caller
	// has not enabled outbound HTTP.
	ErrHTTPNotAllowed = errors.New("executor: HTTP requests are not allowed")
	// ErrResponseTooLarge is returned when a REST node's response exceeds
	// the configured size limit.
	ErrResponseTooLarge = errors.New("executor: response exceeds size limit")
	// ErrURLNotAllowed is returned when a REST node's resolved URL fails
	// SSRF validation.
	ErrURLNotAllowed = errors.New("executor: URL not allowed by security policy")
	// ErrUnknownHTTPClient is returned when a TOOL/REST node names a
	// client that is not present in the processor's httpclient.Registry.
	ErrUnknownHTTPClient = errors.New("executor: REST node names an http client not present in the registry")

	// ErrVectorIndexNotConfigured is returned by the vector DB processor
	// when no index was wired in for the node's collection.
	ErrVectorIndexNotConfigured = errors.New("executor: no vector index configured for collection")
	// ErrMissingInputVector is returned when a vector DB node has no
	// INPUT_VECTOR port value to search with.
	ErrMissingInputVector = errors.New("executor: vector DB node missing input vector")

	// ErrMissingBranchSelector is returned by the gateway processor when
	// the configured branch selector port has no value in the context.
	ErrMissingBranchSelector = errors.New("executor: gateway branch selector port missing from context")

	// ErrMissingUserPrompt is returned by the LLM processor when no
	// USER_PROMPT port has a value.
	ErrMissingUserPrompt = errors.New("executor: LLM node missing user prompt")
	// ErrMissingInputText is returned by the embeddings processor when no
	// INPUT_TEXT port has a value.
	ErrMissingInputText = errors.New("executor: embeddings node missing input text")
)

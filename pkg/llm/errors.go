package llm

import "errors"

var (
	ErrMissingAPIKey    = errors.New("llm: provider API key is required")
	ErrEmptyResponse    = errors.New("llm: provider returned no content")
	ErrUnknownProvider  = errors.New("llm: unknown provider")
)

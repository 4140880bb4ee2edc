package intent

import "errors"

// ErrIncoherentInput is returned when the LLM judges the user's text does
// not express a recognizable intent (the literal "null" response of §4.10
// step 2).
var ErrIncoherentInput = errors.New("intent: input does not express a coherent intent")

package portadapter

import "errors"

// ErrAdaptationImpossible is returned when the LLM judges no binding set
// can connect the source ports to the target ports (the "null bindings"
// response of §4.11).
var ErrAdaptationImpossible = errors.New("portadapter: no viable binding between source and target ports")

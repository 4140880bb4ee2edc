package engine

import "errors"

var (
	// ErrDisabled is returned when Execute is called on a workflow instance
	// whose metamodel is not enabled (§4.4 precondition).
	ErrDisabled = errors.New("engine: workflow is disabled")
	// ErrUnsatisfiableInputs is returned when a node's required input
	// ports remain unsatisfied after port adaptation (§4.5 step 6).
	ErrUnsatisfiableInputs = errors.New("engine: required inputs could not be satisfied")
	// ErrAdaptationSourceless is returned when port adaptation has no
	// candidate source ports to draw from (§4.5 step 3).
	ErrAdaptationSourceless = errors.New("engine: no source ports available for adaptation")
)

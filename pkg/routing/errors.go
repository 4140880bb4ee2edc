package routing

import "errors"

// ErrNoWorkflowForIntent is returned when neither the instance pool nor the
// catalog has any workflow declaring support for the requested intent.
var ErrNoWorkflowForIntent = errors.New("routing: no workflow handles intent")

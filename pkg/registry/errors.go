package registry

import "errors"

var (
	// ErrNodeMetamodelNotFound is returned when a node pool event handler
	// cannot look up the updated metamodel by id.
	ErrNodeMetamodelNotFound = errors.New("registry: node metamodel not found")
	// ErrWorkflowMetamodelNotFound is returned when a workflow pool event
	// handler cannot look up the updated metamodel by id.
	ErrWorkflowMetamodelNotFound = errors.New("registry: workflow metamodel not found")
)

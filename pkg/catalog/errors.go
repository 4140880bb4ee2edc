package catalog

import "errors"

var (
	ErrNotFound           = errors.New("catalog: document not found")
	ErrNodeValidation     = errors.New("catalog: node metamodel failed validation")
	ErrWorkflowValidation = errors.New("catalog: workflow metamodel failed validation")
	ErrUnknownEdge        = errors.New("catalog: edge binding update references unknown edge")
)

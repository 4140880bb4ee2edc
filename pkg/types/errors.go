package types

import "errors"

// Sentinel errors for data-model validation, mirroring the teacher's
// per-package sentinel-error convention (pkg/engine/errors.go,
// pkg/executor/errors.go in the retrieval pack).
var (
	ErrInvalidPortRole     = errors.New("port role not legal for this node type")
	ErrDuplicatePortKey    = errors.New("duplicate port key within node")
	ErrMissingPortKey      = errors.New("port key is required")
	ErrUnknownPortSchema   = errors.New("unknown port schema kind")
	ErrSchemaValueRequired = errors.New("required schema value is absent")
	ErrSchemaTypeMismatch  = errors.New("value does not match port schema")

	ErrUnknownNodeType    = errors.New("unknown node metamodel type")
	ErrUnknownModelType   = errors.New("unknown AI model type")
	ErrUnknownToolType    = errors.New("unknown tool type")
	ErrUnknownControlType = errors.New("unknown control type")
	ErrMissingFamilyID    = errors.New("node metamodel family id is required")

	ErrInvalidIntentName = errors.New("intent name is not valid UPPER_SNAKE_CASE")

	ErrEmptyCondition        = errors.New("edge condition has no expressions")
	ErrConditionMissingPort  = errors.New("condition expression missing port")
	ErrConditionMissingOp    = errors.New("condition expression missing operation")
	ErrConditionValueForbid  = errors.New("null value only permitted for null/boolean operations")
	ErrUnknownConditionOp    = errors.New("unknown condition operation")
	ErrUnknownConditionLogic = errors.New("unknown condition operator")

	ErrDuplicateWorkflowNodeID = errors.New("duplicate workflow-local node id")
	ErrUnknownExecutionType    = errors.New("unknown workflow node execution type")
	ErrDanglingWorkflowEdge    = errors.New("workflow edge references unknown node")
)

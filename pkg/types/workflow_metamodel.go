package types

import "time"

// ExecutionType is a workflow node's readiness discipline over its
// incoming edges (§4.4, §4.5).
type ExecutionType string

const (
	// ExecutionTypeDefault is JOIN readiness: ready once every incoming
	// edge has been evaluated and satisfied.
	ExecutionTypeDefault ExecutionType = "DEFAULT"
	// ExecutionTypeMerge fires on the first satisfied incoming edge.
	ExecutionTypeMerge ExecutionType = "MERGE"
)

// ConditionOperator combines an edge condition's expressions (§4.6).
type ConditionOperator string

const (
	ConditionOperatorAnd ConditionOperator = "AND"
	ConditionOperatorOr  ConditionOperator = "OR"
)

// ConditionOp is a single expression's comparison operation (§4.6).
type ConditionOp string

const (
	OpEquals      ConditionOp = "EQUALS"
	OpNotEquals   ConditionOp = "NOT_EQUALS"
	OpGreaterThan ConditionOp = "GREATER_THAN"
	OpLessThan    ConditionOp = "LESS_THAN"
	OpContains    ConditionOp = "CONTAINS"
	OpStartsWith  ConditionOp = "STARTS_WITH"
	OpIn          ConditionOp = "IN"
	OpNotIn       ConditionOp = "NOT_IN"
	OpIsNull      ConditionOp = "IS_NULL"
	OpIsNotNull   ConditionOp = "IS_NOT_NULL"
	OpIsTrue      ConditionOp = "IS_TRUE"
	OpIsFalse     ConditionOp = "IS_FALSE"
)

// nullValueOnlyOps is the set of operations for which a null Expression.Value
// is permitted (§4.6 validation: "null-valued value is permitted only for
// null/true/false operations").
var nullValueOnlyOps = map[ConditionOp]bool{
	OpIsNull: true, OpIsNotNull: true, OpIsTrue: true, OpIsFalse: true,
}

// Expression is one leaf test within an edge Condition.
type Expression struct {
	Port      string      `json:"port"`
	Operation ConditionOp `json:"operation"`
	Value     interface{} `json:"value,omitempty"`
	HasValue  bool        `json:"has_value,omitempty"`
}

// Validate checks a single expression against §4.6's rejection rules.
func (e Expression) Validate() error {
	if e.Port == "" {
		return ErrConditionMissingPort
	}
	if e.Operation == "" {
		return ErrConditionMissingOp
	}
	if !e.HasValue && !nullValueOnlyOps[e.Operation] {
		return ErrConditionValueForbid
	}
	switch e.Operation {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains, OpStartsWith,
		OpIn, OpNotIn, OpIsNull, OpIsNotNull, OpIsTrue, OpIsFalse:
		return nil
	default:
		return ErrUnknownConditionOp
	}
}

// Condition gates a WorkflowEdge's transition (§4.6).
type Condition struct {
	Operator    ConditionOperator `json:"operator,omitempty"`
	Expressions []Expression      `json:"expressions"`
}

// EffectiveOperator returns Operator, defaulting to AND (§8: "Edge condition
// with absent operator defaults to AND").
func (c Condition) EffectiveOperator() ConditionOperator {
	if c.Operator == "" {
		return ConditionOperatorAnd
	}
	return c.Operator
}

// Validate rejects a condition with no expressions and any expression that
// fails its own Validate.
func (c Condition) Validate() error {
	if len(c.Expressions) == 0 {
		return ErrEmptyCondition
	}
	for _, e := range c.Expressions {
		if err := e.Validate(); err != nil {
			return err
		}
		switch c.EffectiveOperator() {
		case ConditionOperatorAnd, ConditionOperatorOr:
		default:
			return ErrUnknownConditionLogic
		}
	}
	return nil
}

// WorkflowNode binds a node metamodel instance into a workflow graph
// position, with a readiness discipline (§3).
type WorkflowNode struct {
	ID              string        `json:"id"`
	NodeMetamodelID string        `json:"node_metamodel_id"`
	ExecutionType   ExecutionType `json:"execution_type"`
}

// WorkflowEdge connects two workflow-local node ids, optionally gated by a
// Condition, and carries sourcePath→targetPath bindings (§3, §4.7).
type WorkflowEdge struct {
	ID           string            `json:"id"`
	SourceNodeID string            `json:"source_node_id"`
	TargetNodeID string            `json:"target_node_id"`
	Condition    *Condition        `json:"condition,omitempty"`
	Bindings     map[string]string `json:"bindings"`
}

// WorkflowMetamodel is a versioned, typed description of a node graph (§3).
type WorkflowMetamodel struct {
	ID       string  `json:"id"`
	FamilyID string  `json:"family_id"`
	Version  Version `json:"version"`
	IsLatest bool    `json:"is_latest"`

	Name        string    `json:"name"`
	Description string    `json:"description"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`

	Nodes []WorkflowNode `json:"nodes"`
	Edges []WorkflowEdge `json:"edges"`

	HandledIntents []HandledIntent `json:"handled_intents"`
}

// HandledIntent scores this workflow's fitness for a given intent, used by
// the router's temperature-weighted sampling (§6).
type HandledIntent struct {
	IntentID string  `json:"intent_id"`
	Score    float64 `json:"score"`
}

// ScoreForIntent returns the score this workflow declares for intentID and
// whether it handles that intent at all.
func (w WorkflowMetamodel) ScoreForIntent(intentID string) (float64, bool) {
	for _, h := range w.HandledIntents {
		if h.IntentID == intentID {
			return h.Score, true
		}
	}
	return 0, false
}

// EntryNodes returns the workflow-local node ids with in-degree 0 (§3:
// "entryNodes = nodes with in-degree 0").
func (w WorkflowMetamodel) EntryNodes() []string {
	hasIncoming := make(map[string]bool, len(w.Nodes))
	for _, e := range w.Edges {
		hasIncoming[e.TargetNodeID] = true
	}
	var out []string
	for _, n := range w.Nodes {
		if !hasIncoming[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// ExitNodes returns the workflow-local node ids with out-degree 0 (§3:
// "exitNodes = nodes with out-degree 0").
func (w WorkflowMetamodel) ExitNodes() []string {
	hasOutgoing := make(map[string]bool, len(w.Nodes))
	for _, e := range w.Edges {
		hasOutgoing[e.SourceNodeID] = true
	}
	var out []string
	for _, n := range w.Nodes {
		if !hasOutgoing[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}

// FindNode returns the workflow-local node with the given id, or nil.
func (w WorkflowMetamodel) FindNode(id string) *WorkflowNode {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i]
		}
	}
	return nil
}

// OutgoingEdges returns edges sourced at nodeID, in metamodel (insertion)
// order — the deterministic iteration order required by §4.4's "Ordering &
// determinism" clause.
func (w WorkflowMetamodel) OutgoingEdges(nodeID string) []WorkflowEdge {
	var out []WorkflowEdge
	for _, e := range w.Edges {
		if e.SourceNodeID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns edges targeting nodeID, in metamodel order.
func (w WorkflowMetamodel) IncomingEdges(nodeID string) []WorkflowEdge {
	var out []WorkflowEdge
	for _, e := range w.Edges {
		if e.TargetNodeID == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Validate checks structural invariants: every node/edge id unique, every
// edge references existing nodes, and every edge condition (if present) is
// itself valid.
func (w WorkflowMetamodel) Validate() error {
	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if seen[n.ID] {
			return ErrDuplicateWorkflowNodeID
		}
		seen[n.ID] = true
		switch n.ExecutionType {
		case ExecutionTypeDefault, ExecutionTypeMerge:
		default:
			return ErrUnknownExecutionType
		}
	}
	for _, e := range w.Edges {
		if !seen[e.SourceNodeID] || !seen[e.TargetNodeID] {
			return ErrDanglingWorkflowEdge
		}
		if e.Condition != nil {
			if err := e.Condition.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

package orchestrator

import "github.com/cogniflow/orchestrator/pkg/types"

// IntentDetectionReport is the intent-detection sub-report (§6).
type IntentDetectionReport struct {
	IntentID   string                 `json:"intent_id"`
	IntentName string                 `json:"intent_name"`
	Confidence float64                `json:"confidence"`
	IsNew      bool                   `json:"is_new"`
	Variables  map[string]interface{} `json:"variables"`
}

// RoutingReport is the workflow-routing sub-report (§6).
type RoutingReport struct {
	WorkflowID      string `json:"workflow_id"`
	WorkflowVersion string `json:"workflow_version"`
}

// InputMappingReport is the input-mapping sub-report (§6).
type InputMappingReport struct {
	Bindings map[string]interface{} `json:"bindings"`
}

// Report is the full observability report returned alongside the
// orchestration output: the four sub-reports plus aggregate token usage
// (§6).
type Report struct {
	IntentDetection  IntentDetectionReport        `json:"intent_detection"`
	Routing          RoutingReport                `json:"routing"`
	InputMapping     InputMappingReport            `json:"input_mapping"`
	WorkflowExecution *types.OrchestrationReport   `json:"workflow_execution"`
	TokenUsage       types.TokenUsage              `json:"token_usage"`
}

// Result is what Orchestrate returns: the final context output plus the
// full observability report.
type Result struct {
	Output        map[string]interface{} `json:"output"`
	Observability Report                 `json:"observability"`
}

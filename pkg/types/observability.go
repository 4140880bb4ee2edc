package types

import "time"

// TokenUsage aggregates LLM token consumption across a run (SPEC_FULL §3
// expansion: every LLM-bridge call reports usage that rolls up here).
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates other into u and returns the result.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// NodeDetail is one workflow node's observability record for a single run
// (§3, §4.4 steps 2/6).
type NodeDetail struct {
	WorkflowNodeID string        `json:"workflow_node_id"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ContextBefore  map[string]interface{} `json:"context_before,omitempty"`
	ContextAfter   map[string]interface{} `json:"context_after,omitempty"`
	TokenUsage     TokenUsage    `json:"token_usage,omitempty"`
}

// Duration returns the node's observed execution time.
func (d NodeDetail) Duration() time.Duration {
	return d.FinishedAt.Sub(d.StartedAt)
}

// EdgeEvaluation records one edge's condition outcome during a run.
type EdgeEvaluation struct {
	EdgeID string `json:"edge_id"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// PortAdaptation records one run-time repair performed by the port adapter
// (§4.5), prior to its persistence via updateMultipleEdgeBindings.
type PortAdaptation struct {
	EdgeID     string `json:"edge_id"`
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
}

// Metrics summarizes a run's node durations and adaptation counts (§4.4
// postcondition).
type Metrics struct {
	TotalNodes      int           `json:"total_nodes"`
	SuccessfulNodes int           `json:"successful_nodes"`
	FailedNodes     int           `json:"failed_nodes"`
	FastestNode     time.Duration `json:"fastest_node"`
	SlowestNode     time.Duration `json:"slowest_node"`
	AverageNode     time.Duration `json:"average_node"`
	MedianNode      time.Duration `json:"median_node"`
	EdgeEvaluations int           `json:"edge_evaluations"`
	PortAdaptations int           `json:"port_adaptations"`
}

// OrchestrationReport is the per-run observability report (§3).
type OrchestrationReport struct {
	WorkflowID      string                         `json:"workflow_id"`
	StartTime       time.Time                      `json:"start_time"`
	EndTime         time.Time                      `json:"end_time"`
	Success         bool                           `json:"success"`
	NodeExecutions  map[string]NodeDetail          `json:"node_executions"`
	ExecutionOrder  []string                       `json:"execution_order"`
	EdgeEvaluations []EdgeEvaluation               `json:"edge_evaluations"`
	PortAdaptations []PortAdaptation               `json:"port_adaptations"`
	// ContextSnapshots is keyed "before_<workflowNodeId>" / "after_<workflowNodeId>".
	ContextSnapshots map[string]map[string]interface{} `json:"context_snapshots"`
	TokenUsage       TokenUsage                     `json:"token_usage"`
	Metrics          Metrics                        `json:"metrics"`
}

// ComputeMetrics derives Metrics from the recorded NodeExecutions and
// EdgeEvaluations/PortAdaptations counts (§4.4 postcondition).
func (r *OrchestrationReport) ComputeMetrics() {
	var durations []time.Duration
	m := Metrics{EdgeEvaluations: len(r.EdgeEvaluations), PortAdaptations: len(r.PortAdaptations)}
	for _, d := range r.NodeExecutions {
		m.TotalNodes++
		if d.Success {
			m.SuccessfulNodes++
		} else {
			m.FailedNodes++
		}
		durations = append(durations, d.Duration())
	}
	if len(durations) > 0 {
		fastest, slowest, total := durations[0], durations[0], time.Duration(0)
		for _, d := range durations {
			if d < fastest {
				fastest = d
			}
			if d > slowest {
				slowest = d
			}
			total += d
		}
		m.FastestNode = fastest
		m.SlowestNode = slowest
		m.AverageNode = total / time.Duration(len(durations))
		m.MedianNode = medianDuration(durations)
	}
	r.Metrics = m
}

func medianDuration(durations []time.Duration) time.Duration {
	sorted := append([]time.Duration{}, durations...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1] > sorted[j]; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

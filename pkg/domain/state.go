package domain

import "time"

// WorkflowState is the persisted per-project record. It is mutated only by
// the orchestrator: every NextInstruction call sets PendingInstructionID and
// every acknowledged RecordProgress clears it and advances CurrentNode.
type WorkflowState struct {
	ProjectID string `json:"project_id"`

	// CurrentNode is the last node completed in canonical order ("" if none).
	CurrentNode    string   `json:"current_node,omitempty"`
	CompletedNodes []string `json:"completed_nodes"`
	BlockedNodes   []string `json:"blocked_nodes"`
	SkippedNodes   []string `json:"skipped_nodes"`
	InferredNodes  []string `json:"inferred_nodes"`

	// Source identifies who is driving the workflow (e.g. "claude").
	Source string `json:"source,omitempty"`

	LastUserIntent     string `json:"last_user_intent,omitempty"`
	LastDecisionReason string `json:"last_decision_reason,omitempty"`

	// PendingInstructionID is the single outstanding instruction awaiting
	// acknowledgement. Empty when nothing is pending.
	PendingInstructionID string `json:"pending_instruction_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewWorkflowState creates the initial record for a project.
func NewWorkflowState(projectID string) *WorkflowState {
	return &WorkflowState{
		ProjectID:      projectID,
		CompletedNodes: []string{},
		BlockedNodes:   []string{},
		SkippedNodes:   []string{},
		InferredNodes:  []string{},
		UpdatedAt:      time.Now().UTC(),
	}
}

// MarkCompleted merges a node into CompletedNodes (set union, order preserved).
func (s *WorkflowState) MarkCompleted(nodeID string) {
	for _, id := range s.CompletedNodes {
		if id == nodeID {
			return
		}
	}
	s.CompletedNodes = append(s.CompletedNodes, nodeID)
}

// WorkflowIntent is the persisted per-project intent record.
type WorkflowIntent struct {
	ProjectID    string    `json:"project_id"`
	RootIntent   string    `json:"root_intent,omitempty"`   // first intent ever given
	ActiveIntent string    `json:"active_intent,omitempty"` // most recent
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewWorkflowIntent creates the initial intent record for a project.
func NewWorkflowIntent(projectID, intent string) *WorkflowIntent {
	return &WorkflowIntent{
		ProjectID:    projectID,
		RootIntent:   intent,
		ActiveIntent: intent,
		UpdatedAt:    time.Now().UTC(),
	}
}

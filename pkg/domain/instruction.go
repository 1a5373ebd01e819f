package domain

// Action is the recommended next move for the driving agent.
type Action string

const (
	// ActionGenerate instructs the agent to create the target artifact.
	ActionGenerate Action = "GENERATE"
	// ActionUpdate instructs the agent to revise an existing artifact.
	ActionUpdate Action = "UPDATE"
	// ActionNoOp means there is nothing to do (workflow complete or duplicate).
	ActionNoOp Action = "NO_OP"
	// ActionWaitForInput means the next node is blocked on a missing dependency.
	ActionWaitForInput Action = "WAIT_FOR_INPUT"
)

// Candidate is one node the workflow could advance to next.
type Candidate struct {
	NodeID  string `json:"node_id"`
	Blocked bool   `json:"blocked,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ResolvedState is the resolver's pure mapping of an artifact snapshot onto
// the canonical node order.
type ResolvedState struct {
	// CurrentNode is the last completed node in canonical order ("" if none).
	CurrentNode string `json:"current_node,omitempty"`

	CompletedNodes []string `json:"completed_nodes"`
	BlockedNodes   []string `json:"blocked_nodes"`
	// SkippableNodes are optional nodes whose dependencies are satisfied but
	// which have not been produced.
	SkippableNodes []string `json:"skippable_nodes"`

	// NextCandidates holds the primary candidate first. When the primary is
	// optional, the next required node reachable by skipping optional nodes
	// is appended as a second choice.
	NextCandidates []Candidate `json:"next_candidates"`

	RecommendedAction Action `json:"recommended_action"`

	// Reasoning is the human-readable trail of how the state was derived.
	Reasoning []string `json:"reasoning"`
}

// LinkEdge is one required relation in an instruction's expected outcome.
type LinkEdge struct {
	From     ArtifactCoordinates `json:"from"`
	To       ArtifactCoordinates `json:"to"`
	Relation string              `json:"relation"`
}

// ExpectedOutcome is the machine-checkable contract attached to an instruction.
type ExpectedOutcome struct {
	MustCreate       []ArtifactCoordinates `json:"must_create"`
	MustLink         []LinkEdge            `json:"must_link"`
	ForbiddenActions []string              `json:"forbidden_actions"`
}

// DecisionTrace records how an instruction was produced.
type DecisionTrace struct {
	DetectedState string   `json:"detected_state"`
	Reasoning     []string `json:"reasoning"`
	RulesApplied  []string `json:"rules_applied"`
	// LLMConsulted is always false for this deterministic core; the field
	// exists so callers can distinguish engine decisions from model guesses.
	LLMConsulted bool `json:"llm_consulted"`
}

// NextInstruction is the engine's answer to "what should happen next".
// It is ephemeral; only its PendingInstructionID is mirrored into the
// persisted WorkflowState.
type NextInstruction struct {
	Action Action              `json:"action"`
	Target ArtifactCoordinates `json:"target,omitempty"`

	CurrentState   string      `json:"current_state,omitempty"`
	NextCandidates []Candidate `json:"next_candidates"`

	ContextArtifacts []ArtifactSummary `json:"context_artifacts"`
	Prompt           string            `json:"prompt,omitempty"`
	Rules            []string          `json:"rules"`

	ExpectedOutcome ExpectedOutcome `json:"expected_outcome"`
	DecisionTrace   DecisionTrace   `json:"decision_trace"`

	PendingInstructionID string `json:"pending_instruction_id,omitempty"`
}

// ProgressResult is the outcome of acknowledging an instruction.
type ProgressResult struct {
	Success        bool     `json:"success"`
	CurrentNode    string   `json:"current_node,omitempty"`
	CompletedNodes []string `json:"completed_nodes,omitempty"`
}

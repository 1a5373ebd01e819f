package ports

import (
	"context"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// ProgressAck carries everything a caller reports when acknowledging an
// instruction: the coordinates of the artifact it produced and, when known,
// the instruction it is answering.
type ProgressAck struct {
	ArtifactType string `json:"artifact_type"`
	SpecName     string `json:"spec_name"`
	ArtifactName string `json:"artifact_name,omitempty"`
	ArtifactID   string `json:"artifact_id,omitempty"`

	// PendingInstructionID ties the acknowledgement to a specific offer.
	// A mismatch with the stored pending ID marks the ack as stale.
	PendingInstructionID string `json:"pending_instruction_id,omitempty"`
}

// Orchestrator is the two-call protocol every driving surface (CLI, HTTP,
// MCP) speaks: offer one instruction, then acknowledge it.
type Orchestrator interface {
	NextInstruction(ctx context.Context, projectID, userIntent, lastKnownState string) (*domain.NextInstruction, error)
	RecordProgress(ctx context.Context, projectID string, ack ProgressAck) (*domain.ProgressResult, error)
}

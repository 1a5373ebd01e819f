package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports"
)

type stubEngine struct {
	lastAck ports.ProgressAck
}

func (s *stubEngine) NextInstruction(ctx context.Context, projectID, userIntent, lastKnownState string) (*domain.NextInstruction, error) {
	return &domain.NextInstruction{
		Action: domain.ActionGenerate,
		Target: domain.ArtifactCoordinates{
			ArtifactType: domain.KindRequirements,
			SpecName:     "product",
			ArtifactName: "business-requirements",
		},
		PendingInstructionID: "pi-1",
	}, nil
}

func (s *stubEngine) RecordProgress(ctx context.Context, projectID string, ack ports.ProgressAck) (*domain.ProgressResult, error) {
	s.lastAck = ack
	return &domain.ProgressResult{Success: true, CurrentNode: "1.1"}, nil
}

func TestHandleNextInstruction(t *testing.T) {
	srv := NewServer(&stubEngine{}, domain.DefaultWorkflow(), "test")

	instr, err := srv.handleNextInstruction(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"project_id":  "proj-1",
		"user_intent": "build an MVP",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionGenerate, instr.Action)
	assert.Equal(t, "pi-1", instr.PendingInstructionID)
}

func TestHandleNextInstruction_RequiresProjectID(t *testing.T) {
	srv := NewServer(&stubEngine{}, domain.DefaultWorkflow(), "test")

	_, err := srv.handleNextInstruction(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	require.Error(t, err)
}

func TestHandleRecordProgress(t *testing.T) {
	engine := &stubEngine{}
	srv := NewServer(engine, domain.DefaultWorkflow(), "test")

	result, err := srv.handleRecordProgress(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"project_id":             "proj-1",
		"artifact_type":          "requirements",
		"spec_name":              "product",
		"artifact_name":          "business-requirements",
		"pending_instruction_id": "pi-1",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "pi-1", engine.lastAck.PendingInstructionID)
}

func TestHandleRecordProgress_RequiresCoordinates(t *testing.T) {
	srv := NewServer(&stubEngine{}, domain.DefaultWorkflow(), "test")

	_, err := srv.handleRecordProgress(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"project_id": "proj-1",
	})
	require.Error(t, err)
}

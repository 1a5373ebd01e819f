package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/waymark-ai/waymark/pkg/domain"
)

func instruction(action domain.Action, nodeID string, target domain.ArtifactCoordinates) *domain.NextInstruction {
	return &domain.NextInstruction{
		Action:         action,
		Target:         target,
		NextCandidates: []domain.Candidate{{NodeID: nodeID}},
	}
}

func TestCheck_PassiveActionsAlwaysPass(t *testing.T) {
	wf := domain.DefaultWorkflow()
	snap := &domain.GraphSnapshot{}

	assert.True(t, Check(wf, &domain.NextInstruction{Action: domain.ActionNoOp}, snap).OK)
	assert.True(t, Check(wf, &domain.NextInstruction{Action: domain.ActionWaitForInput}, snap).OK)
}

func TestCheck_RejectsDuplicateGenerate(t *testing.T) {
	wf := domain.DefaultWorkflow()
	def, _ := wf.Node("1.1")

	snap := &domain.GraphSnapshot{Artifacts: []domain.ArtifactSummary{{
		ID:           "a1",
		ArtifactType: def.ArtifactType,
		SpecName:     def.SpecName,
		ArtifactName: def.ArtifactName,
	}}}

	res := Check(wf, instruction(domain.ActionGenerate, "1.1", def.Target()), snap)
	assert.False(t, res.OK)
	assert.Equal(t, "artifact already exists", res.Reason)
	assert.Equal(t, domain.ActionNoOp, res.SuggestedAction)
}

func TestCheck_AllowsUpdateOfExistingTarget(t *testing.T) {
	wf := domain.DefaultWorkflow()
	def, _ := wf.Node("1.1")

	snap := &domain.GraphSnapshot{Artifacts: []domain.ArtifactSummary{{
		ArtifactType: def.ArtifactType,
		SpecName:     def.SpecName,
		ArtifactName: def.ArtifactName,
	}}}

	res := Check(wf, instruction(domain.ActionUpdate, "1.1", def.Target()), snap)
	assert.True(t, res.OK)
}

func TestCheck_RejectsUnmetDependencies(t *testing.T) {
	wf := domain.DefaultWorkflow()
	def, _ := wf.Node("2.1") // depends on 1.3, which is absent

	res := Check(wf, instruction(domain.ActionGenerate, "2.1", def.Target()), &domain.GraphSnapshot{})
	assert.False(t, res.OK)
	assert.Equal(t, "dependencies for next node not satisfied", res.Reason)
	assert.Equal(t, domain.ActionWaitForInput, res.SuggestedAction)
}

func TestCheck_AbsentOptionalDependencyDoesNotReject(t *testing.T) {
	wf := domain.NewWorkflow([]domain.NodeDef{
		{ID: "a", ArtifactType: "requirements", SpecName: "s", ArtifactName: "one", Optional: true},
		{ID: "b", ArtifactType: "design", SpecName: "s", ArtifactName: "two", Dependencies: []string{"a"}},
	})
	def, _ := wf.Node("b")

	res := Check(wf, instruction(domain.ActionGenerate, "b", def.Target()), &domain.GraphSnapshot{})
	assert.True(t, res.OK)
}

func TestCheck_StableAcrossRepeatedCalls(t *testing.T) {
	wf := domain.DefaultWorkflow()
	def, _ := wf.Node("1.1")
	snap := &domain.GraphSnapshot{Artifacts: []domain.ArtifactSummary{{
		ArtifactType: def.ArtifactType,
		SpecName:     def.SpecName,
		ArtifactName: def.ArtifactName,
	}}}

	first := Check(wf, instruction(domain.ActionGenerate, "1.1", def.Target()), snap)
	second := Check(wf, instruction(domain.ActionGenerate, "1.1", def.Target()), snap)
	assert.Equal(t, first, second)
}

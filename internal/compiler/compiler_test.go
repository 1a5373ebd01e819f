package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/domain"
)

var target = domain.ArtifactCoordinates{
	ArtifactType: domain.KindHighLevelDesign,
	SpecName:     "architecture",
	ArtifactName: "system-architecture",
}

func TestCompile_Generate(t *testing.T) {
	ctx := []domain.ArtifactSummary{
		{ArtifactType: domain.KindRequirements, SpecName: "product", ArtifactName: "functional-requirements"},
	}
	rules := []string{"Emit only the artifact content."}

	prompt, outcome := Compile(domain.ActionGenerate, target, ctx, rules)

	assert.Contains(t, prompt, `Generate the "high_level_design" artifact`)
	assert.Contains(t, prompt, "@{requirements/product/functional-requirements}")
	assert.Contains(t, prompt, "Emit only the artifact content.")

	require.Len(t, outcome.MustCreate, 1)
	assert.Equal(t, target, outcome.MustCreate[0])
	require.Len(t, outcome.MustLink, 1)
	assert.Equal(t, "depends_on", outcome.MustLink[0].Relation)
	assert.Equal(t, target, outcome.MustLink[0].From)
	assert.Contains(t, outcome.ForbiddenActions, "create a duplicate of an existing artifact")
	assert.Contains(t, outcome.ForbiddenActions, "ignore a required context mention")
}

func TestCompile_UpdateUsesUpdateVerb(t *testing.T) {
	prompt, outcome := Compile(domain.ActionUpdate, target, nil, nil)
	assert.Contains(t, prompt, "Update the")
	assert.Len(t, outcome.MustCreate, 1)
}

func TestCompile_NonGenerativeActionsHaveNoPrompt(t *testing.T) {
	for _, action := range []domain.Action{domain.ActionNoOp, domain.ActionWaitForInput} {
		prompt, outcome := Compile(action, target, nil, nil)
		assert.Empty(t, prompt)
		assert.Empty(t, outcome.MustCreate)
		assert.Empty(t, outcome.MustLink)
		assert.NotEmpty(t, outcome.ForbiddenActions)
	}
}

package domain_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/domain"
)

func node(id string, deps ...string) domain.NodeDef {
	return domain.NodeDef{
		ID:           id,
		ArtifactType: domain.KindRequirements,
		SpecName:     "product",
		ArtifactName: "artifact-" + id,
		Dependencies: deps,
	}
}

func TestValidate_AcceptsDefaultWorkflow(t *testing.T) {
	require.NoError(t, domain.DefaultWorkflow().Validate())
}

func TestValidate_RejectsEmptyTable(t *testing.T) {
	err := domain.NewWorkflow(nil).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no nodes")
}

func TestValidate_RejectsForwardDependency(t *testing.T) {
	wf := domain.NewWorkflow([]domain.NodeDef{
		node("1.1", "1.2"),
		node("1.2"),
	})

	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not precede")
}

func TestValidate_RejectsCycle(t *testing.T) {
	// A cycle always contains at least one forward edge, so the
	// backwards-only rule catches it.
	wf := domain.NewWorkflow([]domain.NodeDef{
		node("1.1", "1.2"),
		node("1.2", "1.1"),
	})

	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not precede")
}

func TestValidate_RejectsUnknownDependency(t *testing.T) {
	wf := domain.NewWorkflow([]domain.NodeDef{
		node("1.1"),
		node("1.2", "9.9"),
	})

	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestValidate_RejectsDuplicateID(t *testing.T) {
	wf := domain.NewWorkflow([]domain.NodeDef{
		node("1.1"),
		node("1.1"),
	})

	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node id")
}

func TestValidate_RejectsEmptyID(t *testing.T) {
	wf := domain.NewWorkflow([]domain.NodeDef{node("")})

	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestValidate_RejectsMissingCoordinates(t *testing.T) {
	wf := domain.NewWorkflow([]domain.NodeDef{
		{ID: "1.1", ArtifactType: domain.KindRequirements},
	})

	err := wf.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing artifact coordinates")
}

func writeWorkflowFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadWorkflow(t *testing.T) {
	path := writeWorkflowFile(t, `
nodes:
  - id: "1.1"
    artifact_type: requirements
    spec_name: product
    artifact_name: brief
  - id: "1.2"
    artifact_type: high_level_design
    spec_name: architecture
    artifact_name: sketch
    dependencies: ["1.1"]
    optional: true
  - id: "1.3"
    artifact_type: test
    spec_name: qa
    artifact_name: checks
    dependencies: ["1.1"]
    any_in_spec: true
    multi_file: true
`)

	wf, err := domain.LoadWorkflow(path)
	require.NoError(t, err)
	require.Len(t, wf.Nodes, 3)

	sketch, ok := wf.Node("1.2")
	require.True(t, ok)
	assert.True(t, sketch.Optional)
	assert.Equal(t, []string{"1.1"}, sketch.Dependencies)

	checks, ok := wf.Node("1.3")
	require.True(t, ok)
	assert.True(t, checks.AnyInSpec)
	assert.True(t, checks.MultiFile)
	assert.Equal(t, 2, wf.IndexOf("1.3"))
}

func TestLoadWorkflow_RejectsInvalidTable(t *testing.T) {
	path := writeWorkflowFile(t, `
nodes:
  - id: "1.1"
    artifact_type: requirements
    spec_name: product
    artifact_name: brief
    dependencies: ["1.2"]
  - id: "1.2"
    artifact_type: requirements
    spec_name: product
    artifact_name: detail
`)

	_, err := domain.LoadWorkflow(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid workflow table")
}

func TestLoadWorkflow_RejectsBadYAML(t *testing.T) {
	path := writeWorkflowFile(t, "nodes: [unclosed")

	_, err := domain.LoadWorkflow(path)
	require.Error(t, err)
}

func TestLoadWorkflow_MissingFile(t *testing.T) {
	_, err := domain.LoadWorkflow(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

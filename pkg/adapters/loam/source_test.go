package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/adapters/loam"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// seedArtifact writes a frontmatter markdown document into the repo layout.
func seedArtifact(t *testing.T, root, relPath, frontmatter, body string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	content := "---\n" + frontmatter + "---\n" + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSource_FetchKind(t *testing.T) {
	root := t.TempDir()

	seedArtifact(t, root, "proj-1/business-requirements.md", `
id: req-1
artifact_type: requirements
spec_name: project
artifact_name: business-requirements
is_llm_context: true
`, "The business requirements.")

	seedArtifact(t, root, "proj-1/old-requirements.md", `
id: req-0
artifact_type: requirements
spec_name: project
artifact_name: business-requirements
version: 1
is_latest: false
`, "Superseded.")

	seedArtifact(t, root, "proj-2/business-requirements.md", `
artifact_type: requirements
spec_name: project
artifact_name: business-requirements
`, "Different project.")

	source, err := loam.Open(root)
	require.NoError(t, err)

	artifacts, err := source.FetchKind(context.Background(), "proj-1", domain.KindRequirements)
	require.NoError(t, err)

	// Superseded version and other project must be filtered out.
	require.Len(t, artifacts, 1)
	assert.Equal(t, "req-1", artifacts[0].ID)
	assert.Equal(t, "business-requirements", artifacts[0].ArtifactName)
	assert.True(t, artifacts[0].IsLLMContext)
	assert.True(t, artifacts[0].IsLatest)
	assert.Equal(t, 1, artifacts[0].Version)
}

func TestSource_ArtifactNameFallsBackToFilename(t *testing.T) {
	root := t.TempDir()

	seedArtifact(t, root, "proj-1/high-level-design.md", `
artifact_type: high_level_design
spec_name: project
`, "Design.")

	source, err := loam.Open(root)
	require.NoError(t, err)

	artifacts, err := source.FetchKind(context.Background(), "proj-1", domain.KindHighLevelDesign)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, "high-level-design", artifacts[0].ArtifactName)
	assert.Equal(t, "proj-1/high-level-design", artifacts[0].ID)
}

func TestSource_WatchClosesOnCancel(t *testing.T) {
	root := t.TempDir()

	seedArtifact(t, root, "proj-1/business-requirements.md", `
artifact_type: requirements
spec_name: project
artifact_name: business-requirements
`, "The business requirements.")

	source, err := loam.Open(root)
	require.NoError(t, err)

	var _ ports.Watchable = source

	ctx, cancel := context.WithCancel(context.Background())
	events, err := source.Watch(ctx)
	require.NoError(t, err)

	cancel()

	// After cancellation the event channel drains and closes.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("watch channel still open after cancellation")
		}
	}
}

func TestSource_FetchLinks(t *testing.T) {
	root := t.TempDir()

	seedArtifact(t, root, "proj-1/functional-requirements.md", `
id: freq-1
artifact_type: requirements
spec_name: project
artifact_name: functional-requirements
links:
  - to: proj-1/business-requirements.md
    relation: derived_from
`, "Functional requirements.")

	source, err := loam.Open(root)
	require.NoError(t, err)

	links, err := source.FetchLinks(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, domain.ArtifactLinkRecord{
		FromID:   "freq-1",
		ToID:     "proj-1/business-requirements",
		Relation: "derived_from",
	}, links[0])
}

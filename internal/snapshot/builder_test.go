package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/adapters/memory"
	"github.com/waymark-ai/waymark/pkg/domain"
)

func TestBuild_MergesKindsInOrder(t *testing.T) {
	source := memory.NewSource()
	source.Add("p1",
		domain.ArtifactSummary{ID: "t1", ArtifactType: domain.KindTask, SpecName: "planning", ArtifactName: "task-breakdown"},
		domain.ArtifactSummary{ID: "r1", ArtifactType: domain.KindRequirements, SpecName: "product", ArtifactName: "business-requirements"},
	)
	source.AddLink("p1", domain.ArtifactLinkRecord{FromID: "t1", ToID: "r1", Relation: "depends_on"})

	snap, err := New(source, nil).Build(context.Background(), "p1")
	require.NoError(t, err)

	// Kind order is fixed: requirements before tasks regardless of insertion.
	require.Len(t, snap.Artifacts, 2)
	assert.Equal(t, "r1", snap.Artifacts[0].ID)
	assert.Equal(t, "t1", snap.Artifacts[1].ID)
	require.Len(t, snap.Links, 1)
}

func TestBuild_EmptyProject(t *testing.T) {
	snap, err := New(memory.NewSource(), nil).Build(context.Background(), "empty")
	require.NoError(t, err)
	assert.True(t, snap.Empty())
	assert.NotNil(t, snap.Artifacts)
}

type failingSource struct {
	*memory.Source
	failKind string
}

func (f *failingSource) FetchKind(ctx context.Context, projectID, kind string) ([]domain.ArtifactSummary, error) {
	if kind == f.failKind {
		return nil, errors.New("store unavailable")
	}
	return f.Source.FetchKind(ctx, projectID, kind)
}

func TestBuild_FailsOnPartialFetch(t *testing.T) {
	source := &failingSource{Source: memory.NewSource(), failKind: domain.KindDiagram}

	_, err := New(source, nil).Build(context.Background(), "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diagram")
}

package ports

import (
	"context"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// ArtifactSource provides the current set of artifacts for a project.
// The snapshot builder calls FetchKind once per artifact kind, in parallel;
// implementations must be safe for concurrent use.
type ArtifactSource interface {
	FetchKind(ctx context.Context, projectID, kind string) ([]domain.ArtifactSummary, error)

	// FetchLinks returns the known relations between artifacts.
	// Sources without link data return an empty slice.
	FetchLinks(ctx context.Context, projectID string) ([]domain.ArtifactLinkRecord, error)
}

// Watchable is an optional extension for sources that can signal changes to
// the underlying artifact set (e.g. a local directory being edited).
type Watchable interface {
	Watch(ctx context.Context) (<-chan string, error)
}

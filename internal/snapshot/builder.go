// Package snapshot assembles the point-in-time artifact view the resolver
// works on. One round of parallel reads against the artifact source; the
// result is never persisted.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/waymark-ai/waymark/internal/logging"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// Builder fetches and normalizes a project's artifact graph.
type Builder struct {
	source ports.ArtifactSource
	logger *slog.Logger
}

// New creates a snapshot builder over the given source.
func New(source ports.ArtifactSource, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{source: source, logger: logger}
}

// Build fetches every artifact kind in parallel and merges the results in
// kind order, so two builds over an unchanged source yield identical
// snapshots. Any single fetch failure fails the whole build: the resolver
// must never run on a partial view, or it would offer work that is already
// done in the kinds that were dropped.
func (b *Builder) Build(ctx context.Context, projectID string) (*domain.GraphSnapshot, error) {
	start := time.Now()
	kinds := domain.Kinds()

	results := make([][]domain.ArtifactSummary, len(kinds))
	errs := make([]error, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind string) {
			defer wg.Done()
			artifacts, err := b.source.FetchKind(ctx, projectID, kind)
			if err != nil {
				errs[i] = fmt.Errorf("fetch %s artifacts: %w", kind, err)
				return
			}
			results[i] = artifacts
		}(i, kind)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	snap := &domain.GraphSnapshot{
		ProjectID: projectID,
		Artifacts: []domain.ArtifactSummary{},
		Links:     []domain.ArtifactLinkRecord{},
	}
	for _, batch := range results {
		snap.Artifacts = append(snap.Artifacts, batch...)
	}

	links, err := b.source.FetchLinks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact links: %w", err)
	}
	snap.Links = links

	b.logger.Debug("snapshot built",
		"project_id", projectID,
		"artifacts", len(snap.Artifacts),
		"links", len(snap.Links),
		"took", time.Since(start),
	)

	return snap, nil
}

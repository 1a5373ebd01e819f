package memory

import (
	"context"
	"sync"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// Source implements ports.ArtifactSource over a static in-memory artifact
// set. Useful for tests and for driving the engine from a prebuilt snapshot.
type Source struct {
	mu        sync.RWMutex
	artifacts map[string][]domain.ArtifactSummary // projectID -> artifacts
	links     map[string][]domain.ArtifactLinkRecord
}

// NewSource creates an empty source.
func NewSource() *Source {
	return &Source{
		artifacts: make(map[string][]domain.ArtifactSummary),
		links:     make(map[string][]domain.ArtifactLinkRecord),
	}
}

// Add registers artifacts for a project.
func (s *Source) Add(projectID string, artifacts ...domain.ArtifactSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[projectID] = append(s.artifacts[projectID], artifacts...)
}

// AddLink registers a link record for a project.
func (s *Source) AddLink(projectID string, link domain.ArtifactLinkRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[projectID] = append(s.links[projectID], link)
}

// Reset drops all artifacts and links for a project.
func (s *Source) Reset(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.artifacts, projectID)
	delete(s.links, projectID)
}

// FetchKind returns the project's artifacts of one kind.
func (s *Source) FetchKind(ctx context.Context, projectID, kind string) ([]domain.ArtifactSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.ArtifactSummary
	for _, a := range s.artifacts[projectID] {
		if a.ArtifactType == kind {
			out = append(out, a)
		}
	}
	return out, nil
}

// FetchLinks returns the project's link records.
func (s *Source) FetchLinks(ctx context.Context, projectID string) ([]domain.ArtifactLinkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ArtifactLinkRecord{}, s.links[projectID]...), nil
}

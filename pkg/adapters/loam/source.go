// Package loam reads project artifacts from a Loam document repository on
// the local filesystem. Each artifact is a markdown (or JSON/YAML) document
// whose frontmatter carries the graph metadata; the body is the artifact
// content itself.
//
// Layout: <repo root>/<projectID>/<...>.md. The document path supplies the
// project scope, the frontmatter supplies everything else.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/waymark-ai/waymark/pkg/domain"
)

// ArtifactMetadata is the frontmatter header of an artifact document.
// It uses "mapstructure" tags to match standard frontmatter/YAML keys.
type ArtifactMetadata struct {
	ID           string `json:"id" mapstructure:"id"`
	RootID       string `json:"root_id" mapstructure:"root_id"`
	ArtifactType string `json:"artifact_type" mapstructure:"artifact_type"`
	SpecName     string `json:"spec_name" mapstructure:"spec_name"`
	ArtifactName string `json:"artifact_name" mapstructure:"artifact_name"`
	Version      int    `json:"version" mapstructure:"version"`
	IsLatest     *bool  `json:"is_latest" mapstructure:"is_latest"`
	IsLLMContext bool   `json:"is_llm_context" mapstructure:"is_llm_context"`

	// Links lists outgoing edges to other artifacts by document ID.
	Links []LinkMetadata `json:"links" mapstructure:"links"`
}

// LinkMetadata is one outgoing edge in an artifact's frontmatter.
type LinkMetadata struct {
	To       string `json:"to" mapstructure:"to"`
	Relation string `json:"relation" mapstructure:"relation"`
}

// Source adapts a Loam repository to the engine's ArtifactSource port.
type Source struct {
	Repo *loam.TypedRepository[ArtifactMetadata]
}

// New creates a Source from an initialized typed repository.
func New(repo *loam.TypedRepository[ArtifactMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a Loam repository at rootPath and wraps it as a Source.
// Strict mode keeps numeric frontmatter types consistent across serializers;
// read-only keeps Loam from versioning a directory the engine never writes.
func Open(rootPath string) (*Source, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact root: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[ArtifactMetadata](repo)), nil
}

// FetchKind returns the project's artifacts of one kind, latest versions only.
func (s *Source) FetchKind(ctx context.Context, projectID, kind string) ([]domain.ArtifactSummary, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	var artifacts []domain.ArtifactSummary
	for _, doc := range docs {
		if !inProject(doc.ID, projectID) {
			continue
		}
		if doc.Data.ArtifactType != kind {
			continue
		}
		// Superseded versions stay on disk; only the latest participates
		// in the graph.
		if doc.Data.IsLatest != nil && !*doc.Data.IsLatest {
			continue
		}

		artifacts = append(artifacts, toSummary(doc.ID, doc.Data))
	}

	return artifacts, nil
}

// FetchLinks returns every link edge declared by the project's artifacts.
func (s *Source) FetchLinks(ctx context.Context, projectID string) ([]domain.ArtifactLinkRecord, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	var links []domain.ArtifactLinkRecord
	for _, doc := range docs {
		if !inProject(doc.ID, projectID) {
			continue
		}
		fromID := documentID(doc.ID, doc.Data)
		for _, link := range doc.Data.Links {
			links = append(links, domain.ArtifactLinkRecord{
				FromID:   fromID,
				ToID:     trimExtension(link.To),
				Relation: link.Relation,
			})
		}
	}

	return links, nil
}

// Watch implements ports.Watchable. Each event carries the changed
// document's ID.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces internally; pass the changed ID up the
				// chain, respecting context cancellation.
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func toSummary(docID string, meta ArtifactMetadata) domain.ArtifactSummary {
	version := meta.Version
	if version == 0 {
		version = 1
	}

	isLatest := true
	if meta.IsLatest != nil {
		isLatest = *meta.IsLatest
	}

	summary := domain.ArtifactSummary{
		ID:           documentID(docID, meta),
		RootID:       meta.RootID,
		ArtifactType: meta.ArtifactType,
		SpecName:     meta.SpecName,
		ArtifactName: meta.ArtifactName,
		Version:      version,
		IsLatest:     isLatest,
		IsLLMContext: meta.IsLLMContext,
	}
	if summary.RootID == "" {
		summary.RootID = summary.ID
	}
	// Fall back to the filename when frontmatter omits the artifact name.
	if summary.ArtifactName == "" {
		summary.ArtifactName = path.Base(trimExtension(docID))
	}
	return summary
}

func documentID(docID string, meta ArtifactMetadata) string {
	if meta.ID != "" {
		return meta.ID
	}
	return trimExtension(docID)
}

func inProject(docID, projectID string) bool {
	return strings.HasPrefix(filepath.ToSlash(docID), projectID+"/")
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

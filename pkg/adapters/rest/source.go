// Package rest fetches project artifacts from a remote artifact store over
// HTTP. It is the production counterpart of the loam adapter: the artifact
// store owns content and versioning, the engine only reads summaries.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/waymark-ai/waymark/pkg/domain"
)

// Source implements ports.ArtifactSource against an artifact-store API.
//
// Endpoints:
//
//	GET {base}/projects/{id}/artifacts?artifact_type={kind}&latest=true
//	GET {base}/projects/{id}/links
type Source struct {
	baseURL string
	client  *http.Client
	token   string
}

type Option func(*Source)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Source) {
		s.client = client
	}
}

// WithBearerToken attaches a bearer token to every request.
func WithBearerToken(token string) Option {
	return func(s *Source) {
		s.token = token
	}
}

// New creates a Source for the artifact store at baseURL.
func New(baseURL string, opts ...Option) *Source {
	s := &Source{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchKind returns the project's latest artifacts of one kind.
func (s *Source) FetchKind(ctx context.Context, projectID, kind string) ([]domain.ArtifactSummary, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/artifacts?artifact_type=%s&latest=true",
		s.baseURL, url.PathEscape(projectID), url.QueryEscape(kind))

	var artifacts []domain.ArtifactSummary
	if err := s.getList(ctx, endpoint, &artifacts); err != nil {
		return nil, fmt.Errorf("fetch %s artifacts: %w", kind, err)
	}
	return artifacts, nil
}

// FetchLinks returns the project's artifact link records.
func (s *Source) FetchLinks(ctx context.Context, projectID string) ([]domain.ArtifactLinkRecord, error) {
	endpoint := fmt.Sprintf("%s/projects/%s/links", s.baseURL, url.PathEscape(projectID))

	var links []domain.ArtifactLinkRecord
	if err := s.getList(ctx, endpoint, &links); err != nil {
		return nil, fmt.Errorf("fetch artifact links: %w", err)
	}
	return links, nil
}

// getList fetches a JSON list endpoint into out. Artifact-store deployments
// disagree on response shape: some return a bare array, some wrap it in a
// {"data": [...]} envelope. Both are accepted here.
func (s *Source) getList(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		// Unknown project means no artifacts, not a failure.
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	items := raw
	if envelope, ok := raw.(map[string]any); ok {
		data, ok := envelope["data"]
		if !ok {
			return fmt.Errorf("object response missing data field")
		}
		items = data
	}
	if items == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true, // tolerate string versions and numeric booleans
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := decoder.Decode(items); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

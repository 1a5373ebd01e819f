// Package file persists workflow records as JSON files on the local
// filesystem, one directory per project.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/waymark-ai/waymark/pkg/domain"
)

const (
	stateFile  = "workflow-state.json"
	intentFile = "workflow-intent.json"
)

// Store implements ports.Store using the local filesystem.
// Layout: <BasePath>/<projectID>/workflow-state.json and workflow-intent.json.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".waymark/projects".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".waymark", "projects")
	}
	return &Store{BasePath: basePath}
}

// LoadState reads the project's state record. An absent or unreadable file
// is reported as domain.ErrStateNotFound: a corrupted record must behave
// like "no prior state", never like a crash.
func (s *Store) LoadState(ctx context.Context, projectID string) (*domain.WorkflowState, error) {
	var state domain.WorkflowState
	if err := s.load(projectID, stateFile, &state); err != nil {
		if err == errRecordUnusable {
			return nil, domain.ErrStateNotFound
		}
		return nil, err
	}
	return &state, nil
}

// SaveState overwrites the project's state record.
func (s *Store) SaveState(ctx context.Context, state *domain.WorkflowState) error {
	return s.save(state.ProjectID, stateFile, state)
}

// DeleteState removes the state record. Missing records are not an error.
func (s *Store) DeleteState(ctx context.Context, projectID string) error {
	if projectID == "" {
		return fmt.Errorf("projectID cannot be empty")
	}
	err := os.Remove(filepath.Join(s.BasePath, projectID, stateFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// LoadIntent reads the project's intent record, with the same
// absent/corrupt semantics as LoadState.
func (s *Store) LoadIntent(ctx context.Context, projectID string) (*domain.WorkflowIntent, error) {
	var intent domain.WorkflowIntent
	if err := s.load(projectID, intentFile, &intent); err != nil {
		if err == errRecordUnusable {
			return nil, domain.ErrIntentNotFound
		}
		return nil, err
	}
	return &intent, nil
}

// SaveIntent overwrites the project's intent record.
func (s *Store) SaveIntent(ctx context.Context, intent *domain.WorkflowIntent) error {
	return s.save(intent.ProjectID, intentFile, intent)
}

// errRecordUnusable marks absent or corrupt records internally; callers map
// it to the record-specific sentinel.
var errRecordUnusable = fmt.Errorf("record absent or unusable")

func (s *Store) load(projectID, name string, v any) error {
	if projectID == "" {
		return fmt.Errorf("projectID cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, projectID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return errRecordUnusable
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		// Corrupt record: treat as absent rather than propagating a parse
		// error up into the engine.
		return errRecordUnusable
	}
	return nil
}

// save writes atomically: temp file in the same directory, fsync, rename.
func (s *Store) save(projectID, name string, v any) error {
	if projectID == "" {
		return fmt.Errorf("projectID cannot be empty")
	}

	dir := filepath.Join(s.BasePath, projectID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure project directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op if already renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := filepath.Join(dir, name)
	// On Windows, rename fails if dest exists; remove first. The brief
	// window is acceptable compared to a partially written record.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing record for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// ListProjects returns the IDs of projects with persisted records.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}
	return projects, nil
}

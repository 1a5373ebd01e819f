// Package memory provides in-process adapters used by tests and by callers
// that do not need durability.
package memory

import (
	"context"
	"sync"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// Store implements ports.Store entirely in memory.
type Store struct {
	mu      sync.RWMutex
	states  map[string]domain.WorkflowState
	intents map[string]domain.WorkflowIntent
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		states:  make(map[string]domain.WorkflowState),
		intents: make(map[string]domain.WorkflowIntent),
	}
}

// LoadState returns a copy of the stored record.
func (s *Store) LoadState(ctx context.Context, projectID string) (*domain.WorkflowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[projectID]
	if !ok {
		return nil, domain.ErrStateNotFound
	}
	copied := state
	return &copied, nil
}

// SaveState stores a copy of the record.
func (s *Store) SaveState(ctx context.Context, state *domain.WorkflowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.ProjectID] = *state
	return nil
}

// DeleteState removes the record. Missing records are not an error.
func (s *Store) DeleteState(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, projectID)
	return nil
}

// LoadIntent returns a copy of the stored intent.
func (s *Store) LoadIntent(ctx context.Context, projectID string) (*domain.WorkflowIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	intent, ok := s.intents[projectID]
	if !ok {
		return nil, domain.ErrIntentNotFound
	}
	copied := intent
	return &copied, nil
}

// SaveIntent stores a copy of the intent.
func (s *Store) SaveIntent(ctx context.Context, intent *domain.WorkflowIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents[intent.ProjectID] = *intent
	return nil
}

package ports

import (
	"context"

	"github.com/waymark-ai/waymark/pkg/domain"
)

// StateStore persists the per-project workflow state record.
//
// Load returns domain.ErrStateNotFound when the record is absent. Adapters
// must also map unreadable or corrupt records to domain.ErrStateNotFound so a
// damaged store behaves like "no prior state" instead of crashing the engine.
// Save is a full overwrite and creates the project namespace if missing.
type StateStore interface {
	LoadState(ctx context.Context, projectID string) (*domain.WorkflowState, error)
	SaveState(ctx context.Context, state *domain.WorkflowState) error
	DeleteState(ctx context.Context, projectID string) error
}

// IntentStore persists the per-project intent record, with the same
// absent/corrupt semantics as StateStore (domain.ErrIntentNotFound).
type IntentStore interface {
	LoadIntent(ctx context.Context, projectID string) (*domain.WorkflowIntent, error)
	SaveIntent(ctx context.Context, intent *domain.WorkflowIntent) error
}

// Store combines both per-project records. Every adapter in this repository
// implements the full pair.
type Store interface {
	StateStore
	IntentStore
}

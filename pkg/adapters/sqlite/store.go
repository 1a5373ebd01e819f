// Package sqlite persists workflow records in an embedded SQLite database.
// It suits single-host deployments that outgrow flat files but do not want
// a Redis dependency.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/waymark-ai/waymark/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS workflow_states (
	project_id       TEXT PRIMARY KEY,
	current_node     TEXT NOT NULL,
	completed_nodes  TEXT NOT NULL,
	blocked_nodes    TEXT NOT NULL,
	skipped_nodes    TEXT NOT NULL,
	inferred_nodes   TEXT NOT NULL,
	source           TEXT NOT NULL,
	last_user_intent TEXT NOT NULL,
	last_reason      TEXT NOT NULL,
	pending_id       TEXT NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS workflow_intents (
	project_id    TEXT PRIMARY KEY,
	root_intent   TEXT NOT NULL,
	active_intent TEXT NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
`

// Store implements ports.Store backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and applies migrations.
func New(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// LoadState retrieves the project's workflow state. Missing rows and rows
// whose node lists no longer decode are both ErrStateNotFound.
func (s *Store) LoadState(ctx context.Context, projectID string) (*domain.WorkflowState, error) {
	state := &domain.WorkflowState{ProjectID: projectID}
	var completed, blocked, skipped, inferred string

	err := s.db.QueryRowContext(ctx,
		`SELECT current_node, completed_nodes, blocked_nodes, skipped_nodes, inferred_nodes,
		        source, last_user_intent, last_reason, pending_id, updated_at
		 FROM workflow_states WHERE project_id = ?`, projectID,
	).Scan(
		&state.CurrentNode, &completed, &blocked, &skipped, &inferred,
		&state.Source, &state.LastUserIntent, &state.LastDecisionReason,
		&state.PendingInstructionID, &state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("query state: %w", err)
	}

	for _, pair := range []struct {
		raw string
		dst *[]string
	}{
		{completed, &state.CompletedNodes},
		{blocked, &state.BlockedNodes},
		{skipped, &state.SkippedNodes},
		{inferred, &state.InferredNodes},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dst); err != nil {
			return nil, domain.ErrStateNotFound
		}
	}

	return state, nil
}

// SaveState upserts the project's workflow state.
func (s *Store) SaveState(ctx context.Context, state *domain.WorkflowState) error {
	completed, err := encodeNodes(state.CompletedNodes)
	if err != nil {
		return err
	}
	blocked, err := encodeNodes(state.BlockedNodes)
	if err != nil {
		return err
	}
	skipped, err := encodeNodes(state.SkippedNodes)
	if err != nil {
		return err
	}
	inferred, err := encodeNodes(state.InferredNodes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflow_states (project_id, current_node, completed_nodes, blocked_nodes,
		   skipped_nodes, inferred_nodes, source, last_user_intent, last_reason, pending_id, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(project_id) DO UPDATE SET
		   current_node=excluded.current_node, completed_nodes=excluded.completed_nodes,
		   blocked_nodes=excluded.blocked_nodes, skipped_nodes=excluded.skipped_nodes,
		   inferred_nodes=excluded.inferred_nodes, source=excluded.source,
		   last_user_intent=excluded.last_user_intent, last_reason=excluded.last_reason,
		   pending_id=excluded.pending_id, updated_at=excluded.updated_at`,
		state.ProjectID, state.CurrentNode, completed, blocked,
		skipped, inferred, state.Source, state.LastUserIntent,
		state.LastDecisionReason, state.PendingInstructionID, state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}

// DeleteState removes the state row. Missing rows are not an error.
func (s *Store) DeleteState(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM workflow_states WHERE project_id = ?`, projectID)
	return err
}

// LoadIntent retrieves the project's intent record.
func (s *Store) LoadIntent(ctx context.Context, projectID string) (*domain.WorkflowIntent, error) {
	intent := &domain.WorkflowIntent{ProjectID: projectID}

	err := s.db.QueryRowContext(ctx,
		`SELECT root_intent, active_intent, updated_at FROM workflow_intents WHERE project_id = ?`,
		projectID,
	).Scan(&intent.RootIntent, &intent.ActiveIntent, &intent.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrIntentNotFound
		}
		return nil, fmt.Errorf("query intent: %w", err)
	}

	return intent, nil
}

// SaveIntent upserts the project's intent record.
func (s *Store) SaveIntent(ctx context.Context, intent *domain.WorkflowIntent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO workflow_intents (project_id, root_intent, active_intent, updated_at)
		 VALUES (?,?,?,?)
		 ON CONFLICT(project_id) DO UPDATE SET
		   root_intent=excluded.root_intent, active_intent=excluded.active_intent,
		   updated_at=excluded.updated_at`,
		intent.ProjectID, intent.RootIntent, intent.ActiveIntent, intent.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert intent: %w", err)
	}
	return nil
}

// ListProjects returns every project with a persisted state row.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT project_id FROM workflow_states ORDER BY project_id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		projects = append(projects, id)
	}
	return projects, rows.Err()
}

// encodeNodes marshals a node list, normalizing nil to [] so loads always
// decode cleanly.
func encodeNodes(nodes []string) (string, error) {
	if nodes == nil {
		nodes = []string{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("marshal node list: %w", err)
	}
	return string(data), nil
}

// Package redis persists workflow records in Redis and provides a
// distributed lock for multi-instance deployments.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
	"github.com/waymark-ai/waymark/pkg/domain"
)

// Store implements ports.Store using Redis.
//
// Records are JSON blobs under <prefix>state:<projectID> and
// <prefix>intent:<projectID>. Project IDs are additionally indexed in a
// ZSET so deployments with TTLs can list live projects cheaply.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for workflow records. Zero means no expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for workflow records.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "waymark:",
		ttl:    0,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) stateKey(projectID string) string {
	return s.prefix + "state:" + projectID
}

func (s *Store) intentKey(projectID string) string {
	return s.prefix + "intent:" + projectID
}

func (s *Store) indexKey() string {
	return s.prefix + "projects"
}

// LoadState retrieves the project's workflow state. Absent and corrupt
// records both come back as domain.ErrStateNotFound so a damaged blob
// restarts the workflow instead of wedging it.
func (s *Store) LoadState(ctx context.Context, projectID string) (*domain.WorkflowState, error) {
	val, err := s.client.Get(ctx, s.stateKey(projectID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to get state from redis: %w", err)
	}

	var state domain.WorkflowState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return nil, domain.ErrStateNotFound
	}

	return &state, nil
}

// SaveState persists the state and refreshes the project index.
func (s *Store) SaveState(ctx context.Context, state *domain.WorkflowState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	return s.save(ctx, s.stateKey(state.ProjectID), state.ProjectID, data)
}

// DeleteState removes the state record and its index entry.
func (s *Store) DeleteState(ctx context.Context, projectID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.stateKey(projectID))
	pipe.ZRem(ctx, s.indexKey(), projectID)

	_, err := pipe.Exec(ctx)
	return err
}

// LoadIntent retrieves the project's intent record, with the same
// absent/corrupt semantics as LoadState.
func (s *Store) LoadIntent(ctx context.Context, projectID string) (*domain.WorkflowIntent, error) {
	val, err := s.client.Get(ctx, s.intentKey(projectID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrIntentNotFound
		}
		return nil, fmt.Errorf("failed to get intent from redis: %w", err)
	}

	var intent domain.WorkflowIntent
	if err := json.Unmarshal([]byte(val), &intent); err != nil {
		return nil, domain.ErrIntentNotFound
	}

	return &intent, nil
}

// SaveIntent persists the intent record.
func (s *Store) SaveIntent(ctx context.Context, intent *domain.WorkflowIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}
	return s.save(ctx, s.intentKey(intent.ProjectID), intent.ProjectID, data)
}

func (s *Store) save(ctx context.Context, key, projectID string, data []byte) error {
	pipe := s.client.Pipeline()

	pipe.Set(ctx, key, data, s.ttl)

	// Index score = expiry time. With no TTL, park it far in the future so
	// lazy pruning never touches it.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: projectID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// ListProjects returns live project IDs, pruning expired index entries
// lazily on the way.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired projects: %w", err)
	}

	projects, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

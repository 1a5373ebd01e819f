package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/waymark-ai/waymark/pkg/adapters/redis"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports/tests"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	return backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
}

func TestRedisStore_Contract(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	tests.RunStoreContract(t, store)
}

func TestRedisStore_CorruptBlobBehavesLikeAbsent(t *testing.T) {
	client := newTestClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	if err := client.Set(ctx, "waymark:state:p1", "not-json{", 0).Err(); err != nil {
		t.Fatalf("Failed to seed corrupt blob: %v", err)
	}

	_, err := store.LoadState(ctx, "p1")
	if err != domain.ErrStateNotFound {
		t.Errorf("Expected ErrStateNotFound for corrupt blob, got %v", err)
	}
}

func TestRedisStore_ListProjects(t *testing.T) {
	store := redis.NewFromClient(newTestClient(t))
	ctx := context.Background()

	for _, id := range []string{"alpha", "beta"} {
		if err := store.SaveState(ctx, domain.NewWorkflowState(id)); err != nil {
			t.Fatalf("SaveState(%s) failed: %v", id, err)
		}
	}

	projects, err := store.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("Expected 2 projects, got %d: %v", len(projects), projects)
	}
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	client := newTestClient(t)
	locker := redis.NewLocker(client, "waymark:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "proj-1", 5*time.Second)
	if err != nil {
		t.Fatalf("First Lock failed: %v", err)
	}

	// Second acquisition must block until the first holder releases.
	shortCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(shortCtx, "proj-1", 5*time.Second); err == nil {
		t.Fatal("Expected second Lock to time out while lock is held")
	}

	if err := unlock(ctx); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	unlock2, err := locker.Lock(ctx, "proj-1", 5*time.Second)
	if err != nil {
		t.Fatalf("Lock after release failed: %v", err)
	}
	_ = unlock2(ctx)
}

package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates per-project mutations across replicas.
// The in-process lock manager handles single-instance serialization; a
// DistributedLocker extends the same guarantee to multi-instance deployments.
type DistributedLocker interface {
	// Lock blocks until the lock for the key is acquired, the context is
	// canceled, or the TTL expires (implementation specific).
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.IdempotencyStore = (*redisIdempotency)(nil)

const (
	lockKeyPrefix = "practice:event:lock:"
	lockTTL       = 10 * time.Minute
	doneTTL       = 24 * time.Hour
)

type redisIdempotency struct {
	client *goredis.Client
}

// NewRedisIdempotencyStore creates a Redis-backed idempotency store using SETNX.
func NewRedisIdempotencyStore(client *goredis.Client) repository.IdempotencyStore {
	return &redisIdempotency{client: client}
}

// AcquireLock uses Redis SETNX to atomically acquire a processing lock.
func (r *redisIdempotency) AcquireLock(ctx context.Context, eventID uuid.UUID) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey(eventID), time.Now().Unix(), lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire lock: %w", err)
	}
	return ok, nil
}

// MarkDone extends the lock to the dedup window.
func (r *redisIdempotency) MarkDone(ctx context.Context, eventID uuid.UUID) error {
	if err := r.client.Expire(ctx, lockKey(eventID), doneTTL).Err(); err != nil {
		return fmt.Errorf("redis: mark done: %w", err)
	}
	return nil
}

// ReleaseLock deletes the lock.
func (r *redisIdempotency) ReleaseLock(ctx context.Context, eventID uuid.UUID) error {
	if err := r.client.Del(ctx, lockKey(eventID)).Err(); err != nil {
		return fmt.Errorf("redis: release lock: %w", err)
	}
	return nil
}

func lockKey(id uuid.UUID) string {
	return lockKeyPrefix + id.String()
}

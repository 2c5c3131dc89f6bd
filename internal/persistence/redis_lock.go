package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Songmu/retry"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned when the lock is still held after all attempts.
var ErrLockNotAcquired = errors.New("lock not acquired")

// Locker serializes a critical section across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// releaseScript deletes the key only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker is an advisory lock built on SET NX PX.
type RedisLocker struct {
	client   *redis.Client
	ttl      time.Duration
	attempts uint
	interval time.Duration
}

// NewRedisLocker returns a locker, or nil when Redis is not configured.
func NewRedisLocker(r *Redis, ttl time.Duration) *RedisLocker {
	if r == nil || r.Client == nil {
		return nil
	}
	return &RedisLocker{
		client:   r.Client,
		ttl:      ttl,
		attempts: 50,
		interval: 100 * time.Millisecond,
	}
}

// Lock blocks until the key is acquired, the attempts run out, or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	var lastErr error
	err := retry.Retry(l.attempts, l.interval, func() error {
		lastErr = l.tryAcquire(ctx, key, token)
		return lastErr
	})
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, lastErr)
	}

	return func() {
		// the request context may already be cancelled; release regardless
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}

func (l *RedisLocker) tryAcquire(ctx context.Context, key, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotAcquired
	}
	return nil
}

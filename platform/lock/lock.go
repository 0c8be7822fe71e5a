// Package lock provides a short-lived distributed mutex on Redis.
// This is part of the platform layer and contains no business logic.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when another holder owns the key.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires keyed locks. The returned release func is safe to call once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// releaseScript deletes the key only if it still holds our token, so an
// expired holder never releases a lock that has since been re-acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock implements Locker with SET NX PX.
type RedisLock struct {
	client redis.UniversalClient
}

// NewRedisLock connects to redisURL and verifies the connection.
func NewRedisLock(ctx context.Context, redisURL string) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client}, nil
}

// NewRedisLockFromClient wraps an existing client.
func NewRedisLockFromClient(client redis.UniversalClient) *RedisLock {
	return &RedisLock{client: client}
}

// Acquire takes lock:<key> for ttl or returns ErrNotAcquired.
func (r *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	const op = "lock.RedisLock.Acquire"

	lockKey := "lock:" + key
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{lockKey}, token).Err(); err != nil {
			return fmt.Errorf("lock.RedisLock.Release: %w", err)
		}
		return nil
	}
	return release, nil
}

// Close closes the underlying client.
func (r *RedisLock) Close() error {
	return r.client.Close()
}

// Noop is used when Redis is not configured; the database guard still applies.
type Noop struct{}

func (Noop) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

var (
	_ Locker = (*RedisLock)(nil)
	_ Locker = Noop{}
)

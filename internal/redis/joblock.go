package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobLock is a best-effort distributed lock so that a daily job runs on
// exactly one instance when several replicas share the same database.
type JobLock interface {
	// Acquire tries to take the named lock for the holder. Returns true
	// if this holder now owns it (fresh acquisition or renewal).
	Acquire(ctx context.Context, name, holder string) (bool, error)
	// Release drops the lock if the holder still owns it.
	Release(ctx context.Context, name, holder string) error
}

type jobLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewJobLock returns a Redis-backed job lock with the given holder TTL.
func NewJobLock(client *redis.Client, ttl time.Duration) JobLock {
	return &jobLock{client: client, ttl: ttl}
}

func lockKey(name string) string { return "joblock:" + name }

func (l *jobLock) Acquire(ctx context.Context, name, holder string) (bool, error) {
	ok, err := l.client.SetNX(ctx, lockKey(name), holder, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("job lock SetNX for %q: %w", name, err)
	}
	if ok {
		return true, nil
	}

	// Already held — renew only if we own it (atomic Lua script avoids races).
	renewScript := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return 0
	`)
	result, err := renewScript.Run(
		ctx, l.client,
		[]string{lockKey(name)},
		holder,
		l.ttl.Milliseconds(),
	).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("job lock renewal for %q: %w", name, err)
	}
	return result == 1, nil
}

func (l *jobLock) Release(ctx context.Context, name, holder string) error {
	releaseScript := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`)
	if err := releaseScript.Run(ctx, l.client, []string{lockKey(name)}, holder).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("job lock release for %q: %w", name, err)
	}
	return nil
}

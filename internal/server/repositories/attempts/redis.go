package attempts

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	attemptKeyPrefix = "auth:attempts:"
	failureKeyPrefix = "auth:failures:"
	lockKeyPrefix    = "auth:lock:"

	// failureTTL bounds how long an abandoned failure streak lingers.
	failureTTL = 24 * time.Hour
)

// RedisRepository keeps attempt state in Redis, for deployments where
// several instances must share throttling decisions. Counters rely on
// INCR being atomic; windows and locks are expressed as key TTLs, so
// Evict is a no-op and eviction rides on Redis expiry.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) RecordAttempt(ctx context.Context, identity string, now time.Time, window time.Duration) (int, time.Time, error) {
	key := attemptKeyPrefix + identity

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis error: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("redis error: %w", err)
		}
		return int(count), now, nil
	}

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis error: %w", err)
	}
	if ttl < 0 {
		// Key exists without a TTL (lost between INCR and EXPIRE); repair.
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("redis error: %w", err)
		}
		ttl = window
	}
	return int(count), now.Add(ttl - window), nil
}

func (r *RedisRepository) RecordFailure(ctx context.Context, identity string, now time.Time) (int, error) {
	key := failureKeyPrefix + identity

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, failureTTL).Err(); err != nil {
			return 0, fmt.Errorf("redis error: %w", err)
		}
	}
	return int(count), nil
}

func (r *RedisRepository) Lock(ctx context.Context, identity string, now, until time.Time) error {
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	value := strconv.FormatInt(until.UnixMilli(), 10)
	if err := r.client.Set(ctx, lockKeyPrefix+identity, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if err := r.client.Del(ctx, failureKeyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) LockedUntil(ctx context.Context, identity string) (time.Time, error) {
	value, err := r.client.Get(ctx, lockKeyPrefix+identity).Result()
	if err != nil {
		if err == redis.Nil {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("redis error: %w", err)
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed lock value: %w", err)
	}
	return time.UnixMilli(ms), nil
}

func (r *RedisRepository) Reset(ctx context.Context, identity string) error {
	if err := r.client.Del(ctx, failureKeyPrefix+identity, lockKeyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Evict is a no-op: every key carries a TTL.
func (r *RedisRepository) Evict(ctx context.Context, cutoff time.Time) error {
	return nil
}

var _ Repository = (*RedisRepository)(nil)

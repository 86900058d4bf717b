package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voyago/internal/config"
	"voyago/internal/models"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisSessionRepository keeps per-session sync state in redis so that
// last-writer-wins checks hold across process restarts and instances.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl}
}

func (r *RedisSessionRepository) GetLastApplied(ctx context.Context, sessionID string) (time.Time, error) {
	if r.client == nil {
		return time.Time{}, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("sync:last_applied:%s", sessionID)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get last applied from redis: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last applied timestamp: %w", err)
	}
	return ts, nil
}

func (r *RedisSessionRepository) SetLastApplied(ctx context.Context, sessionID string, ts time.Time) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("sync:last_applied:%s", sessionID)
	if err := r.client.Set(ctx, key, ts.Format(time.RFC3339Nano), r.ttl).Err(); err != nil {
		return fmt.Errorf("set last applied in redis: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	redisKey := fmt.Sprintf("sync:rate_limit:%s", key)
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

// RedisDeadLetterSink mirrors dead letters to a capped redis list for
// operator tooling next to the durable dead_letters table.
type RedisDeadLetterSink struct {
	client *redis.Client
	key    string
	max    int64
}

func NewRedisDeadLetterSink(client *redis.Client) *RedisDeadLetterSink {
	return &RedisDeadLetterSink{client: client, key: "sync:deadletter", max: 1000}
}

func (s *RedisDeadLetterSink) Push(ctx context.Context, letter models.DeadLetter) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("encode dead letter: %w", err)
	}
	if err := s.client.LPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("push dead letter: %w", err)
	}
	s.client.LTrim(ctx, s.key, 0, s.max-1)
	return nil
}

// Ping verifies the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}

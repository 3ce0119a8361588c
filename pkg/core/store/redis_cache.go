package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dupont_dashboard/pkg/core/analysis"

	"github.com/redis/go-redis/v9"
)

// RedisResultCache is an alternate persisted tier for deployments without
// Postgres. Entries are namespaced by their key prefix and kept without TTL;
// an expiry can be set for installations that prefer weekly regeneration.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ResultCache = (*RedisResultCache)(nil)

// NewRedisResultCache wraps an existing client. ttl of zero means entries
// never expire.
func NewRedisResultCache(client *redis.Client, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl}
}

// DialRedis builds a client with the connection settings the cache needs.
func DialRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
}

func (r *RedisResultCache) Get(ctx context.Context, key string) (*analysis.AnalysisResult, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis lookup for %s failed: %w", key, err)
	}

	var result analysis.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached payload for %s: %w", key, err)
	}
	return &result, true, nil
}

func (r *RedisResultCache) Set(ctx context.Context, key string, result *analysis.AnalysisResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result for %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	return nil
}

func (r *RedisResultCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis existence check for %s failed: %w", key, err)
	}
	return n > 0, nil
}

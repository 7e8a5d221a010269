package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/adpilot/adpilot/internal/graph"
	"github.com/adpilot/adpilot/internal/metrics"
)

const (
	// latestResultKey is the fixed slot holding the most recent
	// publish result; each successful publish overwrites it.
	latestResultKey = "latest_campaign"

	resultCacheTTL = 30 * time.Minute
)

// ResultCache keeps the most recent publish result in a fixed slot.
type ResultCache interface {
	StoreLatest(ctx context.Context, result *graph.PublishResult) error
	// Latest returns the cached result, or nil when the slot is
	// empty or expired.
	Latest(ctx context.Context) (*graph.PublishResult, error)
}

// RedisResultCache implements ResultCache on Redis.
type RedisResultCache struct {
	client  *redis.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewRedisResultCache(client *redis.Client, m *metrics.Metrics, logger *zap.Logger) *RedisResultCache {
	return &RedisResultCache{client: client, metrics: m, logger: logger}
}

func (c *RedisResultCache) StoreLatest(ctx context.Context, result *graph.PublishResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode publish result: %w", err)
	}
	if err := c.client.SetEx(ctx, latestResultKey, payload, resultCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache publish result: %w", err)
	}
	return nil
}

func (c *RedisResultCache) Latest(ctx context.Context) (*graph.PublishResult, error) {
	payload, err := c.client.Get(ctx, latestResultKey).Bytes()
	if errors.Is(err, redis.Nil) {
		if c.metrics != nil {
			c.metrics.CacheMisses.Inc()
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached publish result: %w", err)
	}

	var result graph.PublishResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached publish result: %w", err)
	}
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
	return &result, nil
}

// NopResultCache is used when Redis is unavailable.
type NopResultCache struct{}

func (NopResultCache) StoreLatest(ctx context.Context, result *graph.PublishResult) error {
	return nil
}

func (NopResultCache) Latest(ctx context.Context) (*graph.PublishResult, error) {
	return nil, nil
}

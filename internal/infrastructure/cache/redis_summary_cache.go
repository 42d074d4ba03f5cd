package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

const defaultSummaryKey = "ordersync:summaries"

// RedisSummaryCache shares the summary list between processes.
type RedisSummaryCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisSummaryCache connects to Redis and verifies the connection
func NewRedisSummaryCache(cfg RedisConfig, ttl time.Duration) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSummaryCacheWithClient(client, "", ttl), nil
}

// NewRedisSummaryCacheWithClient wraps an existing client. An empty key uses the default.
func NewRedisSummaryCacheWithClient(client *redis.Client, key string, ttl time.Duration) *RedisSummaryCache {
	if key == "" {
		key = defaultSummaryKey
	}
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &RedisSummaryCache{client: client, key: key, ttl: ttl}
}

// Get reads the cached list; a missing key is a miss, not an error
func (c *RedisSummaryCache) Get(ctx context.Context) ([]ingest.SourceSummary, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read summaries from cache: %w", err)
	}

	var summaries []ingest.SourceSummary
	if err := json.Unmarshal(data, &summaries); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached summaries: %w", err)
	}
	return summaries, true, nil
}

// Set writes the list with the configured TTL
func (c *RedisSummaryCache) Set(ctx context.Context, summaries []ingest.SourceSummary) error {
	data, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("failed to encode summaries: %w", err)
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write summaries to cache: %w", err)
	}
	return nil
}

// Invalidate deletes the cached list
func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate summary cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisSummaryCache) Close() error {
	return c.client.Close()
}

var _ SummaryCache = (*RedisSummaryCache)(nil)

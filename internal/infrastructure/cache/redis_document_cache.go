package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obra/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultKeyPrefix = "obra:doc:"
	scanBatchSize    = 100
	pingTimeout      = 5 * time.Second
)

// NewRedisClient creates a client from configuration and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// RedisDocumentCache implements DocumentCache on Redis so every instance
// shares rendered documents.
type RedisDocumentCache struct {
	client     redis.UniversalClient
	keyPrefix  string
	ttl        time.Duration
	ownsClient bool
	logger     *zap.Logger
}

// RedisOption configures a RedisDocumentCache
type RedisOption func(*RedisDocumentCache)

// WithKeyPrefix overrides the key namespace
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisDocumentCache) {
		c.keyPrefix = prefix
	}
}

// WithRedisTTL sets the TTL used when Set receives zero
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisDocumentCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisLogger sets the logger
func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(c *RedisDocumentCache) {
		c.logger = logger
	}
}

// NewRedisDocumentCache connects to Redis and owns the resulting client
func NewRedisDocumentCache(cfg config.RedisConfig, opts ...RedisOption) (*RedisDocumentCache, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	c := NewRedisDocumentCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisDocumentCacheWithClient wraps an existing client. Close leaves the client open.
func NewRedisDocumentCacheWithClient(client redis.UniversalClient, opts ...RedisOption) *RedisDocumentCache {
	c := &RedisDocumentCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultDocumentTTL,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisDocumentCache) key(k string) string {
	return c.keyPrefix + k
}

// Get returns the cached document; a missing key is a miss, not an error
func (c *RedisDocumentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("document cache miss", zap.String("key", key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached document: %w", err)
	}
	c.logger.Debug("document cache hit", zap.String("key", key))
	return val, true, nil
}

// Set stores value with ttl
func (c *RedisDocumentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	if err := c.client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache document: %w", err)
	}
	return nil
}

// DeletePrefix scans for matching keys and deletes them in batches
func (c *RedisDocumentCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, c.key(prefix)+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	removed := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached documents: %w", err)
		}
		removed += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached documents: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	c.logger.Debug("documents invalidated", zap.String("prefix", prefix), zap.Int("removed", removed))
	return nil
}

// Close closes the client when the cache created it
func (c *RedisDocumentCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

var _ DocumentCache = (*RedisDocumentCache)(nil)

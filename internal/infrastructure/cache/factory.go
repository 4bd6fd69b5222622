package cache

import (
	"fmt"
	"time"

	"github.com/obra/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// DocumentCacheFactory creates document caches based on configuration
type DocumentCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*DocumentCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *DocumentCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *DocumentCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewDocumentCacheFactory creates a new factory
func NewDocumentCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...FactoryOption) *DocumentCacheFactory {
	f := &DocumentCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateInMemoryCache creates a process-local cache.
// Instances do not share entries, so each renders documents on its own.
func (f *DocumentCacheFactory) CreateInMemoryCache() *InMemoryDocumentCache {
	return NewInMemoryDocumentCache(
		WithDefaultTTL(f.ttl),
		WithInMemoryLogger(f.logger.Named("document_cache")),
	)
}

// CreateRedisCache creates a Redis-backed cache
func (f *DocumentCacheFactory) CreateRedisCache() (*RedisDocumentCache, error) {
	c, err := NewRedisDocumentCache(f.redisConfig,
		WithRedisTTL(f.ttl),
		WithRedisLogger(f.logger.Named("document_cache")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis document cache: %w", err)
	}
	return c, nil
}

// CreateCache returns a Redis cache when Redis is enabled and reachable,
// otherwise an in-memory cache if fallback is allowed
func (f *DocumentCacheFactory) CreateCache() (DocumentCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory document cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis document cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for document cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory document cache", zap.Error(err))
	return f.CreateInMemoryCache(), nil
}

package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultDocumentTTL     = 10 * time.Minute
)

// cacheEntry wraps a cached value with its expiration time
type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// InMemoryDocumentCache implements DocumentCache in process memory.
// Suitable for single-instance deployments and tests.
type InMemoryDocumentCache struct {
	entries sync.Map // map[string]*cacheEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once

	hits   atomic.Int64
	misses atomic.Int64
}

// InMemoryOption configures an InMemoryDocumentCache
type InMemoryOption func(*InMemoryDocumentCache)

// WithDefaultTTL sets the TTL used when Set receives zero
func WithDefaultTTL(ttl time.Duration) InMemoryOption {
	return func(c *InMemoryDocumentCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source used for expiry
func WithClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryDocumentCache) {
		c.now = now
	}
}

// WithInMemoryLogger sets the logger
func WithInMemoryLogger(logger *zap.Logger) InMemoryOption {
	return func(c *InMemoryDocumentCache) {
		c.logger = logger
	}
}

// NewInMemoryDocumentCache creates the cache and starts its cleanup loop.
// Call Close to stop the loop.
func NewInMemoryDocumentCache(opts ...InMemoryOption) *InMemoryDocumentCache {
	c := &InMemoryDocumentCache{
		ttl:    defaultDocumentTTL,
		now:    time.Now,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupLoop(defaultCleanupInterval)
	return c
}

// Get returns a copy of the cached document
func (c *InMemoryDocumentCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := c.entries.Load(key); ok {
		entry := v.(*cacheEntry)
		if c.now().Before(entry.expiresAt) {
			c.hits.Add(1)
			return append([]byte(nil), entry.value...), true, nil
		}
		c.entries.Delete(key)
	}
	c.misses.Add(1)
	return nil, false, nil
}

// Set stores a copy of value
func (c *InMemoryDocumentCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.entries.Store(key, &cacheEntry{
		value:     append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

// DeletePrefix removes every key starting with prefix
func (c *InMemoryDocumentCache) DeletePrefix(ctx context.Context, prefix string) error {
	removed := 0
	c.entries.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			c.entries.Delete(k)
			removed++
		}
		return true
	})
	c.logger.Debug("documents invalidated", zap.String("prefix", prefix), zap.Int("removed", removed))
	return nil
}

// Stats returns hit/miss counters and the current entry count
func (c *InMemoryDocumentCache) Stats() Stats {
	var n int64
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}

// Close stops the cleanup loop; safe to call more than once
func (c *InMemoryDocumentCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

func (c *InMemoryDocumentCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stopCh:
			return
		}
	}
}

func (c *InMemoryDocumentCache) evictExpired() {
	now := c.now()
	c.entries.Range(func(k, v any) bool {
		if !now.Before(v.(*cacheEntry).expiresAt) {
			c.entries.Delete(k)
		}
		return true
	})
}

var _ DocumentCache = (*InMemoryDocumentCache)(nil)

// Package cache stores rendered receipt documents so repeated downloads of an
// unchanged receipt skip template rendering.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DocumentCache stores rendered documents by key
type DocumentCache interface {
	// Get returns the cached value and whether it was found
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl; a zero ttl uses the cache default
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeletePrefix removes every key starting with prefix
	DeletePrefix(ctx context.Context, prefix string) error
	Close() error
}

// Stats holds cache hit/miss counters
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int64 `json:"entries"`
}

// ReceiptKeyPrefix returns the prefix shared by every cached document of a receipt
func ReceiptKeyPrefix(id uuid.UUID) string {
	return "receipt:" + id.String() + ":"
}

// DocumentKey identifies a rendered document of one receipt version.
// The version makes entries of superseded versions unreachable even before
// they are invalidated.
func DocumentKey(id uuid.UUID, version int, kind string) string {
	return ReceiptKeyPrefix(id) + "v" + strconv.Itoa(version) + ":" + kind
}

package cache

import (
	"context"
	"time"
)

const pageKeyPrefix = "page:"

// PageCache caches rendered published-page JSON keyed by company slug.
// Entries are invalidated whenever a page is published or its changes
// are discarded, so stale snapshots never outlive a mutation.
type PageCache struct {
	cache Cache
	ttl   time.Duration
}

// NewPageCache wraps a cache backend for published-page payloads.
func NewPageCache(c Cache, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PageCache{cache: c, ttl: ttl}
}

// Get returns the cached published-page JSON for a company slug.
// Returns ErrCacheMiss when no entry exists.
func (p *PageCache) Get(ctx context.Context, slug string) ([]byte, error) {
	return p.cache.Get(ctx, pageKeyPrefix+slug)
}

// Set stores the published-page JSON for a company slug.
func (p *PageCache) Set(ctx context.Context, slug string, data []byte) error {
	return p.cache.Set(ctx, pageKeyPrefix+slug, data, p.ttl)
}

// Invalidate removes the cached payload for a company slug.
func (p *PageCache) Invalidate(ctx context.Context, slug string) error {
	return p.cache.Delete(ctx, pageKeyPrefix+slug)
}

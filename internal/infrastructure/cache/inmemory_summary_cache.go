package cache

import (
	"context"
	"sync"
	"time"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// InMemorySummaryCache is a single-process SummaryCache.
type InMemorySummaryCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	value     []ingest.SourceSummary
	expiresAt time.Time
	now       func() time.Time
}

// NewInMemorySummaryCache creates an empty cache with the given TTL
func NewInMemorySummaryCache(ttl time.Duration) *InMemorySummaryCache {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	return &InMemorySummaryCache{ttl: ttl, now: time.Now}
}

// Get returns a copy of the cached list while it is fresh
func (c *InMemorySummaryCache) Get(ctx context.Context) ([]ingest.SourceSummary, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.value == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	out := make([]ingest.SourceSummary, len(c.value))
	copy(out, c.value)
	return out, true, nil
}

// Set stores a copy of summaries
func (c *InMemorySummaryCache) Set(ctx context.Context, summaries []ingest.SourceSummary) error {
	stored := make([]ingest.SourceSummary, len(summaries))
	copy(stored, summaries)

	c.mu.Lock()
	c.value = stored
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached list
func (c *InMemorySummaryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.value = nil
	c.mu.Unlock()
	return nil
}

// Close is a no-op
func (c *InMemorySummaryCache) Close() error {
	return nil
}

var _ SummaryCache = (*InMemorySummaryCache)(nil)

// Package cache provides read caches for source summaries.
package cache

import (
	"context"
	"time"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// DefaultSummaryTTL is used when no TTL is configured
const DefaultSummaryTTL = time.Minute

// SummaryCache holds the last computed summary list. Ingestion and merge
// invalidate it; readers fall back to the store on a miss.
type SummaryCache interface {
	// Get returns the cached summaries and whether they were present.
	Get(ctx context.Context) ([]ingest.SourceSummary, bool, error)
	Set(ctx context.Context, summaries []ingest.SourceSummary) error
	Invalidate(ctx context.Context) error
	Close() error
}

package ingestapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

// SourceResolver maps an export filename to its Source.
type SourceResolver struct {
	sources ingest.SourceRepository
}

// NewSourceResolver creates a new SourceResolver
func NewSourceResolver(sources ingest.SourceRepository) *SourceResolver {
	return &SourceResolver{sources: sources}
}

// Resolve finds or creates the source named by path. Only persistence
// failures are returned as errors.
func (r *SourceResolver) Resolve(ctx context.Context, path string) (*ingest.Source, error) {
	name := ingest.SourceNameFromFilename(path)
	src, err := r.sources.FindOrCreate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve source %q: %w", name, err)
	}
	return src, nil
}

// Lookup returns the existing source named by path without creating one.
// A source that does not exist yet is reported as nil.
func (r *SourceResolver) Lookup(ctx context.Context, path string) (*ingest.Source, error) {
	name := ingest.SourceNameFromFilename(path)
	src, err := r.sources.FindByName(ctx, name)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("look up source %q: %w", name, err)
	}
	return src, nil
}

// SourceKey is the scheduler key for path: files of one source share a worker.
func SourceKey(path string) string {
	return ingest.SourceNameFromFilename(path)
}

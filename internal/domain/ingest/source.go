// Package ingest holds the domain model of the order-export ingestion
// pipeline: shops (sources), their customers, orders and ingested files.
package ingest

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
)

// ingestPrefix matches the upload timestamp token, e.g. "2025-08-03T23-20-16-775Z_".
var ingestPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-\d{3}Z_`)

// Source is a shop, the logical origin of ingested files.
// Name is the canonical name and is unique across live sources.
type Source struct {
	shared.BaseEntity
	Name        string
	DisplayName string
	LastSync    *time.Time
}

// NewSource creates a source whose display name equals its canonical name.
func NewSource(name string) (*Source, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_NAME", "Source name cannot be empty")
	}
	return &Source{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		DisplayName: name,
	}, nil
}

// Rename sets both the canonical and the display name.
func (s *Source) Rename(name string) {
	s.Name = name
	s.DisplayName = name
	s.Touch()
}

// MarkSynced records a completed ingestion.
func (s *Source) MarkSynced(at time.Time) {
	s.LastSync = &at
	s.Touch()
}

// HasIngestPrefix reports whether name starts with an upload timestamp token.
func HasIngestPrefix(name string) bool {
	return ingestPrefix.MatchString(name)
}

// StripIngestPrefix removes a leading upload timestamp token, if any.
func StripIngestPrefix(name string) string {
	return ingestPrefix.ReplaceAllString(name, "")
}

// CanonicalName is the grouping key used when consolidating duplicate sources.
func CanonicalName(name string) string {
	return norm.NFC.String(StripIngestPrefix(name))
}

// SourceNameFromFilename derives the canonical shop name from an export filename
// of the form "[<timestamp>_]<Name>[ (<id>)].csv".
func SourceNameFromFilename(filename string) string {
	base := StripIngestPrefix(filepath.Base(filename))

	if idx := strings.Index(base, "("); idx > 0 {
		if name := strings.TrimSpace(base[:idx]); name != "" {
			return norm.NFC.String(name)
		}
	}
	return norm.NFC.String(strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base))))
}

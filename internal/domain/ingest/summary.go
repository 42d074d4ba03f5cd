package ingest

import (
	"time"

	"github.com/google/uuid"
)

// RowFailure is a per-row persistence failure. Row is the 1-based data row index.
type RowFailure struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// IngestionSummary is the outcome of one ingestion pass over a file.
// TotalRows == Inserted + Updated + Errored always holds.
type IngestionSummary struct {
	TotalRows   int          `json:"total_rows"`
	Inserted    int          `json:"inserted"`
	Updated     int          `json:"updated"`
	Errored     int          `json:"errored"`
	Errors      []RowFailure `json:"errors"`
	IsTruncated bool         `json:"is_truncated,omitempty"`
	// Skipped is set when the content was already ingested and nothing was parsed.
	Skipped bool `json:"skipped,omitempty"`
}

// FileSummary is the read projection of an ingested file.
type FileSummary struct {
	Filename    string     `json:"filename"`
	Status      FileStatus `json:"status"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	Total       int        `json:"records_total"`
	Inserted    int        `json:"records_inserted"`
	Updated     int        `json:"records_updated"`
	Errored     int        `json:"records_errors"`
}

// SourceSummary is the read projection of a source for reporting.
type SourceSummary struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	DisplayName   string        `json:"display_name"`
	LastSync      *time.Time    `json:"last_sync,omitempty"`
	OrderCount    int64         `json:"orders_count"`
	CustomerCount int64         `json:"customers_count"`
	FileCount     int64         `json:"files_count"`
	RecentFiles   []FileSummary `json:"recent_files"`
}

// MergeReport is the outcome of a duplicate-source consolidation run.
// The *Deleted counters are conflict resolutions, not failures.
type MergeReport struct {
	GroupsFound      int      `json:"groups_found"`
	SourcesRemoved   int      `json:"sources_removed"`
	SourcesRenamed   int      `json:"sources_renamed"`
	OrdersMoved      int      `json:"orders_moved"`
	OrdersDeleted    int      `json:"orders_deleted"`
	CustomersMoved   int      `json:"customers_moved"`
	CustomersDeleted int      `json:"customers_deleted"`
	FilesMoved       int      `json:"files_moved"`
	FilesDeleted     int      `json:"files_deleted"`
	LogsMoved        int      `json:"logs_moved"`
	Kept             []string `json:"kept,omitempty"`
}

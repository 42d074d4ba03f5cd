package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

// FileStatus is the lifecycle state of an ingested file
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusFailed     FileStatus = "failed"
)

// IsValid checks if the status is a known value
func (s FileStatus) IsValid() bool {
	switch s {
	case FileStatusPending, FileStatusProcessing, FileStatusCompleted, FileStatusFailed:
		return true
	}
	return false
}

// IngestedFile is one file content seen for a source. Fingerprint is the
// hex SHA-256 of the file bytes and is unique per source.
type IngestedFile struct {
	shared.BaseEntity
	SourceID     uuid.UUID
	Filename     string
	FilePath     string
	FileSize     int64
	Fingerprint  string
	Status       FileStatus
	Total        int
	Inserted     int
	Updated      int
	Errored      int
	ErrorMessage string
	ProcessedAt  *time.Time
}

// NewIngestedFile creates a file record in the processing state.
func NewIngestedFile(sourceID uuid.UUID, filename, path string, size int64, fingerprint string) *IngestedFile {
	return &IngestedFile{
		BaseEntity:  shared.NewBaseEntity(),
		SourceID:    sourceID,
		Filename:    filename,
		FilePath:    path,
		FileSize:    size,
		Fingerprint: fingerprint,
		Status:      FileStatusProcessing,
	}
}

// IsCompleted reports whether the content was already fully ingested.
func (f *IngestedFile) IsCompleted() bool {
	return f.Status == FileStatusCompleted
}

// StartProcessing moves a pending or failed record back into processing.
func (f *IngestedFile) StartProcessing() error {
	if f.Status == FileStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Cannot reprocess a completed file")
	}
	f.Status = FileStatusProcessing
	f.ErrorMessage = ""
	f.Touch()
	return nil
}

// Complete records the aggregate counts of a finished pass.
// A pass with row errors is still completed; the error count is kept in the message.
func (f *IngestedFile) Complete(summary *IngestionSummary, at time.Time) {
	f.Status = FileStatusCompleted
	f.Total = summary.TotalRows
	f.Inserted = summary.Inserted
	f.Updated = summary.Updated
	f.Errored = summary.Errored
	f.ErrorMessage = ""
	if summary.Errored > 0 {
		f.ErrorMessage = fmt.Sprintf("%d processing errors", summary.Errored)
	}
	f.ProcessedAt = &at
	f.Touch()
}

// Fail marks the file as failed with a short reason.
func (f *IngestedFile) Fail(reason string) {
	f.Status = FileStatusFailed
	f.ErrorMessage = reason
	f.Touch()
}

// StoredSummary rebuilds the summary of a completed pass from the stored counts.
func (f *IngestedFile) StoredSummary() *IngestionSummary {
	return &IngestionSummary{
		TotalRows: f.Total,
		Inserted:  f.Inserted,
		Updated:   f.Updated,
		Errored:   f.Errored,
		Errors:    []RowFailure{},
		Skipped:   true,
	}
}

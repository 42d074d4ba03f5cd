package ingest

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LogLevel is the severity of a processing log entry
type LogLevel string

const (
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ProcessingLogEntry is an append-only diagnostic record, optionally tied to a source.
type ProcessingLogEntry struct {
	ID        uuid.UUID
	SourceID  *uuid.UUID
	Level     LogLevel
	Message   string
	Context   string
	CreatedAt time.Time
}

// NewProcessingLogEntry builds an entry; context is serialized to JSON when non-nil.
func NewProcessingLogEntry(sourceID *uuid.UUID, level LogLevel, message string, context map[string]any) *ProcessingLogEntry {
	entry := &ProcessingLogEntry{
		ID:        uuid.New(),
		SourceID:  sourceID,
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if len(context) > 0 {
		if data, err := json.Marshal(context); err == nil {
			entry.Context = string(data)
		}
	}
	return entry
}

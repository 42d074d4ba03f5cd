package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// ProcessingLogModel is the append-only diagnostic log row
type ProcessingLogModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ShopID    *uuid.UUID `gorm:"type:uuid;index"`
	Level     string     `gorm:"type:varchar(10);not null"`
	Message   string     `gorm:"type:text;not null"`
	Context   string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ProcessingLogModel) TableName() string {
	return "processing_logs"
}

// ToDomain converts the persistence model to a domain entry
func (m *ProcessingLogModel) ToDomain() *ingest.ProcessingLogEntry {
	return &ingest.ProcessingLogEntry{
		ID:        m.ID,
		SourceID:  m.ShopID,
		Level:     ingest.LogLevel(m.Level),
		Message:   m.Message,
		Context:   m.Context,
		CreatedAt: m.CreatedAt,
	}
}

// ProcessingLogModelFromDomain creates a persistence model from a domain entry
func ProcessingLogModelFromDomain(e *ingest.ProcessingLogEntry) *ProcessingLogModel {
	return &ProcessingLogModel{
		ID:        e.ID,
		ShopID:    e.SourceID,
		Level:     string(e.Level),
		Message:   e.Message,
		Context:   e.Context,
		CreatedAt: e.CreatedAt,
	}
}

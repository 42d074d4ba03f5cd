package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// CSVFileModel is the persistence model for an ingested file, unique per (shop, hash)
type CSVFileModel struct {
	BaseModel
	ShopID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_csv_files_shop_hash,priority:1"`
	Filename        string     `gorm:"type:varchar(512);not null"`
	FilePath        string     `gorm:"type:text"`
	FileSize        int64      `gorm:"not null;default:0"`
	FileHash        string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_csv_files_shop_hash,priority:2"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	RecordsTotal    int        `gorm:"not null;default:0"`
	RecordsInserted int        `gorm:"not null;default:0"`
	RecordsUpdated  int        `gorm:"not null;default:0"`
	RecordsErrors   int        `gorm:"not null;default:0"`
	ErrorMessage    string     `gorm:"type:text"`
	ProcessedAt     *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (CSVFileModel) TableName() string {
	return "csv_files"
}

// ToDomain converts the persistence model to a domain IngestedFile
func (m *CSVFileModel) ToDomain() *ingest.IngestedFile {
	return &ingest.IngestedFile{
		BaseEntity:   m.BaseModel.ToDomain(),
		SourceID:     m.ShopID,
		Filename:     m.Filename,
		FilePath:     m.FilePath,
		FileSize:     m.FileSize,
		Fingerprint:  m.FileHash,
		Status:       ingest.FileStatus(m.Status),
		Total:        m.RecordsTotal,
		Inserted:     m.RecordsInserted,
		Updated:      m.RecordsUpdated,
		Errored:      m.RecordsErrors,
		ErrorMessage: m.ErrorMessage,
		ProcessedAt:  m.ProcessedAt,
	}
}

// CSVFileModelFromDomain creates a persistence model from a domain IngestedFile
func CSVFileModelFromDomain(f *ingest.IngestedFile) *CSVFileModel {
	m := &CSVFileModel{
		ShopID:          f.SourceID,
		Filename:        f.Filename,
		FilePath:        f.FilePath,
		FileSize:        f.FileSize,
		FileHash:        f.Fingerprint,
		Status:          string(f.Status),
		RecordsTotal:    f.Total,
		RecordsInserted: f.Inserted,
		RecordsUpdated:  f.Updated,
		RecordsErrors:   f.Errored,
		ErrorMessage:    f.ErrorMessage,
		ProcessedAt:     f.ProcessedAt,
	}
	m.FromDomainBaseEntity(f.BaseEntity)
	return m
}

// ToSummary projects the model for reporting
func (m *CSVFileModel) ToSummary() ingest.FileSummary {
	return ingest.FileSummary{
		Filename:    m.Filename,
		Status:      ingest.FileStatus(m.Status),
		ProcessedAt: m.ProcessedAt,
		Total:       m.RecordsTotal,
		Inserted:    m.RecordsInserted,
		Updated:     m.RecordsUpdated,
		Errored:     m.RecordsErrors,
	}
}

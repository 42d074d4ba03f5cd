package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCSVFileRepository implements ingest.IngestedFileRepository using GORM
type GormCSVFileRepository struct {
	db *gorm.DB
}

// NewGormCSVFileRepository creates a new GormCSVFileRepository
func NewGormCSVFileRepository(db *gorm.DB) *GormCSVFileRepository {
	return &GormCSVFileRepository{db: db}
}

// FindByFingerprint finds the record of a file content for a shop
func (r *GormCSVFileRepository) FindByFingerprint(ctx context.Context, sourceID uuid.UUID, fingerprint string) (*ingest.IngestedFile, error) {
	var model models.CSVFileModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND file_hash = ?", sourceID, fingerprint).
		Take(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a new file record
func (r *GormCSVFileRepository) Create(ctx context.Context, f *ingest.IngestedFile) (ingest.WriteResult, error) {
	if err := r.db.WithContext(ctx).Create(models.CSVFileModelFromDomain(f)).Error; err != nil {
		if isDuplicate(err) {
			return ingest.ConflictOn(ingest.ConflictFingerprint), nil
		}
		return ingest.WriteResult{}, translateError(err)
	}
	return ingest.Created(f.ID), nil
}

// Save persists status and counts of an existing record
func (r *GormCSVFileRepository) Save(ctx context.Context, f *ingest.IngestedFile) error {
	return translateError(r.db.WithContext(ctx).Save(models.CSVFileModelFromDomain(f)).Error)
}

// ListIDsBySource returns the ids of all file records of a shop
func (r *GormCSVFileRepository) ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.CSVFileModel{}).
		Where("shop_id = ?", sourceID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

// Reassign moves a file record to another shop
func (r *GormCSVFileRepository) Reassign(ctx context.Context, id, sourceID uuid.UUID) (ingest.WriteResult, error) {
	return reassign(r.db.WithContext(ctx), &models.CSVFileModel{}, id, sourceID, ingest.ConflictFingerprint)
}

// Delete removes a file record
func (r *GormCSVFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CSVFileModel{}).Error)
}

// GormProcessingLogRepository implements ingest.ProcessingLogRepository using GORM
type GormProcessingLogRepository struct {
	db *gorm.DB
}

// NewGormProcessingLogRepository creates a new GormProcessingLogRepository
func NewGormProcessingLogRepository(db *gorm.DB) *GormProcessingLogRepository {
	return &GormProcessingLogRepository{db: db}
}

// Append writes a log entry
func (r *GormProcessingLogRepository) Append(ctx context.Context, entry *ingest.ProcessingLogEntry) error {
	return translateError(r.db.WithContext(ctx).Create(models.ProcessingLogModelFromDomain(entry)).Error)
}

// ReassignSource moves every entry of one shop to another
func (r *GormProcessingLogRepository) ReassignSource(ctx context.Context, fromSourceID, toSourceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.ProcessingLogModel{}).
		Where("shop_id = ?", fromSourceID).
		Update("shop_id", toSourceID)
	return result.RowsAffected, translateError(result.Error)
}

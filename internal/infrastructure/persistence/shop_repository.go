package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShopRepository implements ingest.SourceRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindOrCreate returns the shop named name, creating it when absent
func (r *GormShopRepository) FindOrCreate(ctx context.Context, name string) (*ingest.Source, error) {
	db := r.db.WithContext(ctx)

	var model models.ShopModel
	err := db.Where("name = ?", name).Take(&model).Error
	if err == nil {
		now := time.Now()
		if err := db.Model(&model).Update("updated_at", now).Error; err != nil {
			return nil, translateError(err)
		}
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translateError(err)
	}

	source, err := ingest.NewSource(name)
	if err != nil {
		return nil, err
	}
	model = *models.ShopModelFromDomain(source)
	if err := db.Create(&model).Error; err != nil {
		if !isDuplicate(err) {
			return nil, translateError(err)
		}
		// created concurrently by another process
		if err := db.Where("name = ?", name).Take(&model).Error; err != nil {
			return nil, notFound(err)
		}
	}
	return model.ToDomain(), nil
}

// FindByName finds a shop by canonical name
func (r *GormShopRepository) FindByName(ctx context.Context, name string) (*ingest.Source, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every shop, oldest first
func (r *GormShopRepository) FindAll(ctx context.Context) ([]*ingest.Source, error) {
	var shopModels []models.ShopModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&shopModels).Error; err != nil {
		return nil, translateError(err)
	}
	sources := make([]*ingest.Source, len(shopModels))
	for i := range shopModels {
		sources[i] = shopModels[i].ToDomain()
	}
	return sources, nil
}

// Rename sets the canonical and display name of a shop
func (r *GormShopRepository) Rename(ctx context.Context, id uuid.UUID, name string) (ingest.WriteResult, error) {
	err := r.db.WithContext(ctx).Model(&models.ShopModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "display_name": name, "updated_at": time.Now()}).Error
	if err != nil {
		if isDuplicate(err) {
			return ingest.ConflictOn(ingest.ConflictSourceName), nil
		}
		return ingest.WriteResult{}, translateError(err)
	}
	return ingest.Updated(id), nil
}

// MarkSynced sets last_sync
func (r *GormShopRepository) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return translateError(r.db.WithContext(ctx).Model(&models.ShopModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"last_sync": at, "updated_at": time.Now()}).Error)
}

// Delete removes a shop. Its children must have been moved or deleted first.
func (r *GormShopRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShopModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound)
	}
	return nil
}

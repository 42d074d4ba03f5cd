package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCustomerRepository implements ingest.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Upsert creates or updates the customer keyed by (shop, external id)
func (r *GormCustomerRepository) Upsert(ctx context.Context, c *ingest.Customer) (ingest.WriteResult, error) {
	db := r.db.WithContext(ctx)

	var existing models.CustomerModel
	err := db.Where("shop_id = ? AND external_id = ?", c.SourceID, c.ExternalID).Take(&existing).Error
	switch {
	case err == nil:
		err = db.Model(&existing).Updates(map[string]any{
			"email":             c.Email,
			"first_name":        c.FirstName,
			"last_name":         c.LastName,
			"phone":             c.Phone,
			"accepts_marketing": c.AcceptsMarketing,
			"updated_at":        time.Now(),
		}).Error
		if err != nil {
			return ingest.WriteResult{}, translateError(err)
		}
		c.BaseEntity = existing.BaseModel.ToDomain()
		return ingest.Updated(existing.ID), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return ingest.WriteResult{}, translateError(err)
	}

	if c.ID == uuid.Nil {
		c.BaseEntity = shared.NewBaseEntity()
	}
	if err := db.Create(models.CustomerModelFromDomain(c)).Error; err != nil {
		if isDuplicate(err) {
			return ingest.ConflictOn(ingest.ConflictCustomerExternalID), nil
		}
		return ingest.WriteResult{}, translateError(err)
	}
	return ingest.Created(c.ID), nil
}

// FindByID finds a customer by id
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingest.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a customer of a shop by its external id
func (r *GormCustomerRepository) FindByExternalID(ctx context.Context, sourceID uuid.UUID, externalID string) (*ingest.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND external_id = ?", sourceID, externalID).
		Take(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// AddAddress appends an address; addresses are never deduplicated
func (r *GormCustomerRepository) AddAddress(ctx context.Context, a *ingest.Address) error {
	if a.ID == uuid.Nil {
		a.BaseEntity = shared.NewBaseEntity()
	}
	return translateError(r.db.WithContext(ctx).Create(models.AddressModelFromDomain(a)).Error)
}

// ListIDsBySource returns the ids of all customers of a shop
func (r *GormCustomerRepository) ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("shop_id = ?", sourceID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

// Reassign moves a customer to another shop
func (r *GormCustomerRepository) Reassign(ctx context.Context, id, sourceID uuid.UUID) (ingest.WriteResult, error) {
	return reassign(r.db.WithContext(ctx), &models.CustomerModel{}, id, sourceID, ingest.ConflictCustomerExternalID)
}

// Delete removes the customer and its addresses and unlinks its orders
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.OrderModel{}).Where("customer_id = ?", id).Update("customer_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.AddressModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.CustomerModel{}).Error
	})
	return translateError(err)
}

// reassign re-points one row's shop_id and reports a unique-key collision as a conflict
func reassign(db *gorm.DB, model any, id, sourceID uuid.UUID, key ingest.ConflictKey) (ingest.WriteResult, error) {
	result := db.Model(model).Where("id = ?", id).
		Updates(map[string]any{"shop_id": sourceID, "updated_at": time.Now()})
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return ingest.ConflictOn(key), nil
		}
		return ingest.WriteResult{}, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ingest.WriteResult{}, shared.ErrNotFound
	}
	return ingest.Updated(id), nil
}

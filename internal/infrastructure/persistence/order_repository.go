package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements ingest.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Upsert creates or updates the order keyed by (shop, external id)
func (r *GormOrderRepository) Upsert(ctx context.Context, o *ingest.Order) (ingest.WriteResult, error) {
	db := r.db.WithContext(ctx)

	var existing models.OrderModel
	err := db.Where("shop_id = ? AND external_id = ?", o.SourceID, o.ExternalID).Take(&existing).Error
	switch {
	case err == nil:
		o.ID = existing.ID
		o.CreatedAt = existing.CreatedAt
		if o.CustomerID == nil {
			// rows without customer data keep the existing link
			o.CustomerID = existing.CustomerID
		}
		o.Touch()
		if err := db.Save(models.OrderModelFromDomain(o)).Error; err != nil {
			if isDuplicate(err) {
				return ingest.ConflictOn(ingest.ConflictExternalOrderID), nil
			}
			return ingest.WriteResult{}, translateError(err)
		}
		return ingest.Updated(o.ID), nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return ingest.WriteResult{}, translateError(err)
	}

	if o.ID == uuid.Nil {
		o.BaseEntity = shared.NewBaseEntity()
	}
	if err := db.Create(models.OrderModelFromDomain(o)).Error; err != nil {
		if isDuplicate(err) {
			return ingest.ConflictOn(ingest.ConflictExternalOrderID), nil
		}
		return ingest.WriteResult{}, translateError(err)
	}
	return ingest.Created(o.ID), nil
}

// AddLineItem appends a line item to an order
func (r *GormOrderRepository) AddLineItem(ctx context.Context, item *ingest.OrderLineItem) error {
	if item.ID == uuid.Nil {
		item.BaseEntity = shared.NewBaseEntity()
	}
	return translateError(r.db.WithContext(ctx).Create(models.LineItemModelFromDomain(item)).Error)
}

// DeleteLineItems removes every line item of an order
func (r *GormOrderRepository) DeleteLineItems(ctx context.Context, orderID uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Where("order_id = ?", orderID).Delete(&models.LineItemModel{}).Error)
}

// ListIDsBySource returns the ids of all orders of a shop
func (r *GormOrderRepository) ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("shop_id = ?", sourceID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

// Reassign moves an order to another shop
func (r *GormOrderRepository) Reassign(ctx context.Context, id, sourceID uuid.UUID) (ingest.WriteResult, error) {
	return reassign(r.db.WithContext(ctx), &models.OrderModel{}, id, sourceID, ingest.ConflictExternalOrderID)
}

// RelinkCustomer points every order of one customer at another
func (r *GormOrderRepository) RelinkCustomer(ctx context.Context, fromCustomerID, toCustomerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("customer_id = ?", fromCustomerID).
		Update("customer_id", toCustomerID)
	return result.RowsAffected, translateError(result.Error)
}

// Delete removes the order and its line items
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.OrderModel{}).Error
	})
	return translateError(err)
}

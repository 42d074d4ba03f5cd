package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence/models"
)

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	tx := NewGormTransactor(db)
	ctx := context.Background()
	shop := createShop(t, db, "Acme")

	boom := errors.New("row failed")
	err := tx.WithinTx(ctx, func(store ingest.RowStore) error {
		c := &ingest.Customer{SourceID: shop.ID, ExternalID: "1", Email: "a@x.io"}
		if _, err := store.Customers().Upsert(ctx, c); err != nil {
			return err
		}
		if _, err := store.Orders().Upsert(ctx, &ingest.Order{SourceID: shop.ID, ExternalID: "1", CustomerID: &c.ID, Currency: "USD"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var customers, orders int64
	db.Model(&models.CustomerModel{}).Count(&customers)
	db.Model(&models.OrderModel{}).Count(&orders)
	assert.Zero(t, customers)
	assert.Zero(t, orders)
}

func TestTransactor_Commits(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	shop := createShop(t, db, "Acme")

	err := NewGormTransactor(db).WithinTx(ctx, func(store ingest.RowStore) error {
		_, err := store.Orders().Upsert(ctx, &ingest.Order{SourceID: shop.ID, ExternalID: "1", Currency: "USD"})
		return err
	})
	require.NoError(t, err)

	var orders int64
	db.Model(&models.OrderModel{}).Count(&orders)
	assert.Equal(t, int64(1), orders)
}

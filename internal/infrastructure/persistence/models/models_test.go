package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "shops", ShopModel{}.TableName())
	assert.Equal(t, "customers", CustomerModel{}.TableName())
	assert.Equal(t, "customer_addresses", AddressModel{}.TableName())
	assert.Equal(t, "orders", OrderModel{}.TableName())
	assert.Equal(t, "order_line_items", LineItemModel{}.TableName())
	assert.Equal(t, "csv_files", CSVFileModel{}.TableName())
	assert.Equal(t, "processing_logs", ProcessingLogModel{}.TableName())
	assert.Len(t, All(), 7)
}

func TestOrderModel_ChannelMapsToSourceColumn(t *testing.T) {
	customerID := uuid.New()
	order := &ingest.Order{
		BaseEntity: shared.NewBaseEntity(),
		SourceID:   uuid.New(),
		CustomerID: &customerID,
		ExternalID: "1001",
		Channel:    "web",
		TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
	}

	m := OrderModelFromDomain(order)
	assert.Equal(t, "web", m.Source)
	assert.Equal(t, order.ID, m.ID)
	assert.False(t, m.SubtotalPrice.Valid)

	back := m.ToDomain()
	assert.Equal(t, "web", back.Channel)
	assert.Equal(t, order.SourceID, back.SourceID)
	assert.True(t, back.TotalPrice.Decimal.Equal(decimal.RequireFromString("12.5")))
}

func TestCSVFileModel_ToSummary(t *testing.T) {
	f := ingest.NewIngestedFile(uuid.New(), "acme.csv", "/drop/acme.csv", 42, "abc")
	f.Complete(&ingest.IngestionSummary{TotalRows: 3, Inserted: 2, Errored: 1}, f.CreatedAt)

	s := CSVFileModelFromDomain(f).ToSummary()
	assert.Equal(t, ingest.FileStatusCompleted, s.Status)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Errored)
	assert.NotNil(t, s.ProcessedAt)
}

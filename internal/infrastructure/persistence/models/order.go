package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// OrderModel is the persistence model for an order, unique per (shop, external id)
type OrderModel struct {
	BaseModel
	ShopID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_orders_shop_external,priority:1"`
	CustomerID  *uuid.UUID `gorm:"type:uuid;index"`
	ExternalID  string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_orders_shop_external,priority:2"`
	OrderNumber string     `gorm:"type:varchar(255)"`

	SubtotalPrice  decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	ShippingPrice  decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	TotalTax       decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	TotalPrice     decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	DiscountAmount decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	RefundedAmount decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	Currency       string              `gorm:"type:varchar(3);not null;default:'USD'"`

	FinancialStatus   string `gorm:"type:varchar(64)"`
	FulfillmentStatus string `gorm:"type:varchar(64)"`
	PaymentMethod     string `gorm:"type:varchar(255)"`
	PaymentReference  string `gorm:"type:varchar(255)"`
	ShippingMethod    string `gorm:"type:varchar(255)"`
	DiscountCode      string `gorm:"type:varchar(255)"`
	Tags              string `gorm:"type:text"`
	RiskLevel         string `gorm:"type:varchar(64)"`
	Source            string `gorm:"column:source;type:varchar(255)"`
	Notes             string `gorm:"type:text"`

	PaidAt      *time.Time
	FulfilledAt *time.Time
	CancelledAt *time.Time
	OrderDate   *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *ingest.Order {
	return &ingest.Order{
		BaseEntity:        m.BaseModel.ToDomain(),
		SourceID:          m.ShopID,
		CustomerID:        m.CustomerID,
		ExternalID:        m.ExternalID,
		OrderNumber:       m.OrderNumber,
		SubtotalPrice:     m.SubtotalPrice,
		ShippingPrice:     m.ShippingPrice,
		TotalTax:          m.TotalTax,
		TotalPrice:        m.TotalPrice,
		DiscountAmount:    m.DiscountAmount,
		RefundedAmount:    m.RefundedAmount,
		Currency:          m.Currency,
		FinancialStatus:   m.FinancialStatus,
		FulfillmentStatus: m.FulfillmentStatus,
		PaymentMethod:     m.PaymentMethod,
		PaymentReference:  m.PaymentReference,
		ShippingMethod:    m.ShippingMethod,
		DiscountCode:      m.DiscountCode,
		Tags:              m.Tags,
		RiskLevel:         m.RiskLevel,
		Channel:           m.Source,
		Notes:             m.Notes,
		PaidAt:            m.PaidAt,
		FulfilledAt:       m.FulfilledAt,
		CancelledAt:       m.CancelledAt,
		OrderDate:         m.OrderDate,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *ingest.Order) *OrderModel {
	m := &OrderModel{
		ShopID:            o.SourceID,
		CustomerID:        o.CustomerID,
		ExternalID:        o.ExternalID,
		OrderNumber:       o.OrderNumber,
		SubtotalPrice:     o.SubtotalPrice,
		ShippingPrice:     o.ShippingPrice,
		TotalTax:          o.TotalTax,
		TotalPrice:        o.TotalPrice,
		DiscountAmount:    o.DiscountAmount,
		RefundedAmount:    o.RefundedAmount,
		Currency:          o.Currency,
		FinancialStatus:   o.FinancialStatus,
		FulfillmentStatus: o.FulfillmentStatus,
		PaymentMethod:     o.PaymentMethod,
		PaymentReference:  o.PaymentReference,
		ShippingMethod:    o.ShippingMethod,
		DiscountCode:      o.DiscountCode,
		Tags:              o.Tags,
		RiskLevel:         o.RiskLevel,
		Source:            o.Channel,
		Notes:             o.Notes,
		PaidAt:            o.PaidAt,
		FulfilledAt:       o.FulfilledAt,
		CancelledAt:       o.CancelledAt,
		OrderDate:         o.OrderDate,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}

// LineItemModel is the persistence model for an order line item
type LineItemModel struct {
	BaseModel
	OrderID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	Title             string              `gorm:"type:varchar(512)"`
	VariantTitle      string              `gorm:"type:varchar(512)"`
	SKU               string              `gorm:"column:sku;type:varchar(255)"`
	Quantity          int                 `gorm:"not null;default:1"`
	Price             decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	CompareAtPrice    decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	TotalDiscount     decimal.Decimal     `gorm:"type:numeric(14,2);not null;default:0"`
	RequiresShipping  bool                `gorm:"not null;default:false"`
	Taxable           bool                `gorm:"not null;default:false"`
	FulfillmentStatus string              `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "order_line_items"
}

// ToDomain converts the persistence model to a domain OrderLineItem
func (m *LineItemModel) ToDomain() *ingest.OrderLineItem {
	return &ingest.OrderLineItem{
		BaseEntity:        m.BaseModel.ToDomain(),
		OrderID:           m.OrderID,
		Title:             m.Title,
		VariantTitle:      m.VariantTitle,
		SKU:               m.SKU,
		Quantity:          m.Quantity,
		Price:             m.Price,
		CompareAtPrice:    m.CompareAtPrice,
		TotalDiscount:     m.TotalDiscount,
		RequiresShipping:  m.RequiresShipping,
		Taxable:           m.Taxable,
		FulfillmentStatus: m.FulfillmentStatus,
	}
}

// LineItemModelFromDomain creates a persistence model from a domain OrderLineItem
func LineItemModelFromDomain(li *ingest.OrderLineItem) *LineItemModel {
	m := &LineItemModel{
		OrderID:           li.OrderID,
		Title:             li.Title,
		VariantTitle:      li.VariantTitle,
		SKU:               li.SKU,
		Quantity:          li.Quantity,
		Price:             li.Price,
		CompareAtPrice:    li.CompareAtPrice,
		TotalDiscount:     li.TotalDiscount,
		RequiresShipping:  li.RequiresShipping,
		Taxable:           li.Taxable,
		FulfillmentStatus: li.FulfillmentStatus,
	}
	m.FromDomainBaseEntity(li.BaseEntity)
	return m
}

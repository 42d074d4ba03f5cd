package ingest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

// DefaultCurrency is used when an export row carries no currency.
const DefaultCurrency = "USD"

// DefaultLineItemFulfillment is used when a line item carries no fulfillment status.
const DefaultLineItemFulfillment = "unfulfilled"

// Order is identified within its source by ExternalID.
// Money fields are nullable: an invalid or missing amount is absent, not zero.
type Order struct {
	shared.BaseEntity
	SourceID    uuid.UUID
	CustomerID  *uuid.UUID
	ExternalID  string
	OrderNumber string

	SubtotalPrice  decimal.NullDecimal
	ShippingPrice  decimal.NullDecimal
	TotalTax       decimal.NullDecimal
	TotalPrice     decimal.NullDecimal
	DiscountAmount decimal.NullDecimal
	RefundedAmount decimal.NullDecimal
	Currency       string

	FinancialStatus   string
	FulfillmentStatus string
	PaymentMethod     string
	PaymentReference  string
	ShippingMethod    string
	DiscountCode      string
	Tags              string
	RiskLevel         string
	Channel           string
	Notes             string

	PaidAt      *time.Time
	FulfilledAt *time.Time
	CancelledAt *time.Time
	OrderDate   *time.Time
}

// Amounts returns every money field, keyed by column name.
func (o *Order) Amounts() map[string]decimal.NullDecimal {
	return map[string]decimal.NullDecimal{
		"subtotal_price":  o.SubtotalPrice,
		"shipping_price":  o.ShippingPrice,
		"total_tax":       o.TotalTax,
		"total_price":     o.TotalPrice,
		"discount_amount": o.DiscountAmount,
		"refunded_amount": o.RefundedAmount,
	}
}

// OrderLineItem has no identity beyond its order.
type OrderLineItem struct {
	shared.BaseEntity
	OrderID           uuid.UUID
	Title             string
	VariantTitle      string
	SKU               string
	Quantity          int
	Price             decimal.NullDecimal
	CompareAtPrice    decimal.NullDecimal
	TotalDiscount     decimal.Decimal
	RequiresShipping  bool
	Taxable           bool
	FulfillmentStatus string
}

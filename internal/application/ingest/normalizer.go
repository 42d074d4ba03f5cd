package ingestapp

import (
	"github.com/shopspring/decimal"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	csvimport "github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/import"
)

// Normalize maps one export row to a Bundle. It never fails: values that
// cannot be coerced are left absent and persistence constraints are checked
// later by the Upserter.
func Normalize(row *csvimport.Row) ingest.Bundle {
	first, last := splitName(row.Get(ColName))

	customer := ingest.Customer{
		ExternalID:       externalOrderID(row.Get(ColID)),
		Email:            row.Get(ColEmail),
		FirstName:        first,
		LastName:         last,
		Phone:            row.Get(ColPhone),
		AcceptsMarketing: parseBool(row.Get(ColAcceptsMarketing)),
	}

	order := ingest.Order{
		ExternalID:        externalOrderID(row.Get(ColID)),
		OrderNumber:       row.Get(ColID),
		SubtotalPrice:     parseMoney(row.Get(ColSubtotal)),
		ShippingPrice:     parseMoney(row.Get(ColShipping)),
		TotalTax:          parseMoney(row.Get(ColTaxes)),
		TotalPrice:        parseMoney(row.Get(ColTotal)),
		DiscountAmount:    parseMoney(row.Get(ColDiscountAmount)),
		RefundedAmount:    parseMoney(row.Get(ColRefundedAmount)),
		Currency:          row.GetOrDefault(ColCurrency, ingest.DefaultCurrency),
		FinancialStatus:   row.Get(ColFinancialStatus),
		FulfillmentStatus: row.Get(ColFulfillmentStatus),
		PaymentMethod:     row.Get(ColPaymentMethod),
		PaymentReference:  row.Get(ColPaymentReference),
		ShippingMethod:    row.Get(ColShippingMethod),
		DiscountCode:      row.Get(ColDiscountCode),
		Tags:              row.Get(ColTags),
		RiskLevel:         row.Get(ColRiskLevel),
		Channel:           row.Get(ColSource),
		Notes:             row.Get(ColNotes),
		PaidAt:            parseTime(row.Get(ColPaidAt)),
		FulfilledAt:       parseTime(row.Get(ColFulfilledAt)),
		CancelledAt:       parseTime(row.Get(ColCancelledAt)),
		OrderDate:         parseTime(row.Get(ColCreatedAt)),
	}

	discount := decimal.Zero
	if d := parseMoney(row.Get(ColLineitemDiscount)); d.Valid {
		discount = d.Decimal
	}
	item := ingest.OrderLineItem{
		Title:             row.Get(ColLineitemName),
		SKU:               row.Get(ColLineitemSKU),
		Quantity:          parseQuantity(row.Get(ColLineitemQuantity)),
		Price:             parseMoney(row.Get(ColLineitemPrice)),
		CompareAtPrice:    parseMoney(row.Get(ColLineitemCompareAtPrice)),
		TotalDiscount:     discount,
		RequiresShipping:  parseBool(row.Get(ColLineitemRequiresShipping)),
		Taxable:           parseBool(row.Get(ColLineitemTaxable)),
		FulfillmentStatus: row.GetOrDefault(ColLineitemFulfillmentStatus, ingest.DefaultLineItemFulfillment),
	}

	return ingest.Bundle{
		Customer:  customer,
		Order:     order,
		LineItems: []ingest.OrderLineItem{item},
		Billing:   normalizeAddress(row, BillingPrefix, ingest.AddressTypeBilling),
		Shipping:  normalizeAddress(row, ShippingPrefix, ingest.AddressTypeShipping),
	}
}

// normalizeAddress returns nil unless "<prefix> Address1" is set.
func normalizeAddress(row *csvimport.Row, prefix string, kind ingest.AddressType) *ingest.Address {
	get := func(field string) string {
		return row.Get(addressColumn(prefix, field))
	}
	if get(addrAddress1) == "" {
		return nil
	}

	first, last := splitName(get(addrName))
	return &ingest.Address{
		Type:         kind,
		FirstName:    first,
		LastName:     last,
		Company:      get(addrCompany),
		Address1:     get(addrAddress1),
		Address2:     get(addrAddress2),
		City:         get(addrCity),
		Province:     get(addrProvince),
		ProvinceName: get(addrProvinceName),
		Country:      get(addrCountry),
		Zip:          get(addrZip),
		Phone:        get(addrPhone),
	}
}

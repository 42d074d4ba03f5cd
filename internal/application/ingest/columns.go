package ingestapp

// Order-export header names. Matching is exact; unknown columns are ignored.
const (
	ColName              = "Name"
	ColEmail             = "Email"
	ColPhone             = "Phone"
	ColAcceptsMarketing  = "Accepts Marketing"
	ColID                = "Id"
	ColFinancialStatus   = "Financial Status"
	ColPaidAt            = "Paid at"
	ColFulfillmentStatus = "Fulfillment Status"
	ColFulfilledAt       = "Fulfilled at"
	ColCurrency          = "Currency"
	ColSubtotal          = "Subtotal"
	ColShipping          = "Shipping"
	ColTaxes             = "Taxes"
	ColTotal             = "Total"
	ColDiscountCode      = "Discount Code"
	ColDiscountAmount    = "Discount Amount"
	ColShippingMethod    = "Shipping Method"
	ColCreatedAt         = "Created at"
	ColNotes             = "Notes"
	ColCancelledAt       = "Cancelled at"
	ColPaymentMethod     = "Payment Method"
	ColPaymentReference  = "Payment Reference"
	ColRefundedAmount    = "Refunded Amount"
	ColTags              = "Tags"
	ColRiskLevel         = "Risk Level"
	ColSource            = "Source"
)

// requiredColumns must be present for any row to be accepted.
var requiredColumns = []string{ColID}

// Line item columns
const (
	ColLineitemQuantity          = "Lineitem quantity"
	ColLineitemName              = "Lineitem name"
	ColLineitemPrice             = "Lineitem price"
	ColLineitemCompareAtPrice    = "Lineitem compare at price"
	ColLineitemSKU               = "Lineitem sku"
	ColLineitemRequiresShipping  = "Lineitem requires shipping"
	ColLineitemTaxable           = "Lineitem taxable"
	ColLineitemFulfillmentStatus = "Lineitem fulfillment status"
	ColLineitemDiscount          = "Lineitem discount"
)

// Address column suffixes; the full header is "<Kind> <suffix>",
// e.g. "Billing Address1".
const (
	addrName         = "Name"
	addrAddress1     = "Address1"
	addrAddress2     = "Address2"
	addrCompany      = "Company"
	addrCity         = "City"
	addrZip          = "Zip"
	addrProvince     = "Province"
	addrCountry      = "Country"
	addrPhone        = "Phone"
	addrProvinceName = "Province Name"
)

// Address column prefixes
const (
	BillingPrefix  = "Billing"
	ShippingPrefix = "Shipping"
)

func addressColumn(prefix, field string) string {
	return prefix + " " + field
}

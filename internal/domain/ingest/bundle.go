package ingest

// Bundle is the normalized shape of one export row.
// Customer is always set; it is only persisted when it carries an email.
type Bundle struct {
	Customer  Customer
	Order     Order
	LineItems []OrderLineItem
	Billing   *Address
	Shipping  *Address
}

// Addresses returns the present addresses in billing, shipping order.
func (b *Bundle) Addresses() []*Address {
	addrs := make([]*Address, 0, 2)
	if b.Billing != nil {
		addrs = append(addrs, b.Billing)
	}
	if b.Shipping != nil {
		addrs = append(addrs, b.Shipping)
	}
	return addrs
}

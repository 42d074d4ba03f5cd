package ingest

import (
	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/shared"
)

// AddressType tags a customer address
type AddressType string

const (
	AddressTypeBilling  AddressType = "billing"
	AddressTypeShipping AddressType = "shipping"
)

// Customer belongs to exactly one source and is identified within it by ExternalID.
type Customer struct {
	shared.BaseEntity
	SourceID         uuid.UUID
	ExternalID       string
	Email            string
	FirstName        string
	LastName         string
	Phone            string
	AcceptsMarketing bool
}

// HasIdentity reports whether the customer carries enough data to be persisted.
// Rows without an email do not produce a customer record.
func (c *Customer) HasIdentity() bool {
	return c != nil && c.Email != ""
}

// Address is a billing or shipping address owned by a customer.
type Address struct {
	shared.BaseEntity
	CustomerID   uuid.UUID
	Type         AddressType
	FirstName    string
	LastName     string
	Company      string
	Address1     string
	Address2     string
	City         string
	Province     string
	ProvinceName string
	Country      string
	Zip          string
	Phone        string
}

package models

import (
	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// CustomerModel is the persistence model for a customer, unique per (shop, external id)
type CustomerModel struct {
	BaseModel
	ShopID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_customers_shop_external,priority:1"`
	ExternalID       string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_customers_shop_external,priority:2"`
	Email            string    `gorm:"type:varchar(255);index"`
	FirstName        string    `gorm:"type:varchar(255)"`
	LastName         string    `gorm:"type:varchar(255)"`
	Phone            string    `gorm:"type:varchar(64)"`
	AcceptsMarketing bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *ingest.Customer {
	return &ingest.Customer{
		BaseEntity:       m.BaseModel.ToDomain(),
		SourceID:         m.ShopID,
		ExternalID:       m.ExternalID,
		Email:            m.Email,
		FirstName:        m.FirstName,
		LastName:         m.LastName,
		Phone:            m.Phone,
		AcceptsMarketing: m.AcceptsMarketing,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *ingest.Customer) *CustomerModel {
	m := &CustomerModel{
		ShopID:           c.SourceID,
		ExternalID:       c.ExternalID,
		Email:            c.Email,
		FirstName:        c.FirstName,
		LastName:         c.LastName,
		Phone:            c.Phone,
		AcceptsMarketing: c.AcceptsMarketing,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// AddressModel is the persistence model for a customer address
type AddressModel struct {
	BaseModel
	CustomerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	AddressType  string    `gorm:"type:varchar(20);not null"`
	FirstName    string    `gorm:"type:varchar(255)"`
	LastName     string    `gorm:"type:varchar(255)"`
	Company      string    `gorm:"type:varchar(255)"`
	Address1     string    `gorm:"type:varchar(255);not null"`
	Address2     string    `gorm:"type:varchar(255)"`
	City         string    `gorm:"type:varchar(255);not null"`
	Province     string    `gorm:"type:varchar(255)"`
	ProvinceName string    `gorm:"type:varchar(255)"`
	Country      string    `gorm:"type:varchar(255);not null"`
	Zip          string    `gorm:"type:varchar(32)"`
	Phone        string    `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "customer_addresses"
}

// ToDomain converts the persistence model to a domain Address
func (m *AddressModel) ToDomain() *ingest.Address {
	return &ingest.Address{
		BaseEntity:   m.BaseModel.ToDomain(),
		CustomerID:   m.CustomerID,
		Type:         ingest.AddressType(m.AddressType),
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Company:      m.Company,
		Address1:     m.Address1,
		Address2:     m.Address2,
		City:         m.City,
		Province:     m.Province,
		ProvinceName: m.ProvinceName,
		Country:      m.Country,
		Zip:          m.Zip,
		Phone:        m.Phone,
	}
}

// AddressModelFromDomain creates a persistence model from a domain Address
func AddressModelFromDomain(a *ingest.Address) *AddressModel {
	m := &AddressModel{
		CustomerID:   a.CustomerID,
		AddressType:  string(a.Type),
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		Address1:     a.Address1,
		Address2:     a.Address2,
		City:         a.City,
		Province:     a.Province,
		ProvinceName: a.ProvinceName,
		Country:      a.Country,
		Zip:          a.Zip,
		Phone:        a.Phone,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

package models

import (
	"time"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// ShopModel is the persistence model for a source
type ShopModel struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_shops_name"`
	DisplayName string     `gorm:"type:varchar(255);not null"`
	LastSync    *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Source
func (m *ShopModel) ToDomain() *ingest.Source {
	return &ingest.Source{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		DisplayName: m.DisplayName,
		LastSync:    m.LastSync,
	}
}

// FromDomain populates the persistence model from a domain Source
func (m *ShopModel) FromDomain(s *ingest.Source) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
	m.DisplayName = s.DisplayName
	m.LastSync = s.LastSync
}

// ShopModelFromDomain creates a new persistence model from a domain Source
func ShopModelFromDomain(s *ingest.Source) *ShopModel {
	m := &ShopModel{}
	m.FromDomain(s)
	return m
}

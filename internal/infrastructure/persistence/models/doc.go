// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// of ORM concerns.
//
// Structure:
// - base.go: BaseModel shared by every identified row
// - shop.go: shops
// - customer.go: customers and customer_addresses
// - order.go: orders and order_line_items
// - csv_file.go: csv_files
// - processing_log.go: processing_logs
//
// The Postgres schema of record lives in migrations/; AutoMigrate over All()
// is used for SQLite and tests.
package models

// All returns every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&ShopModel{},
		&CustomerModel{},
		&AddressModel{},
		&OrderModel{},
		&LineItemModel{},
		&CSVFileModel{},
		&ProcessingLogModel{},
	}
}

package persistence

import "gorm.io/gorm"

// Repositories bundles every persistence port implementation over one connection.
type Repositories struct {
	Shops      *GormShopRepository
	Customers  *GormCustomerRepository
	Orders     *GormOrderRepository
	Files      *GormCSVFileRepository
	Logs       *GormProcessingLogRepository
	Summaries  *GormSummaryReader
	Transactor *GormTransactor
}

// NewRepositories wires the GORM repositories to db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Shops:      NewGormShopRepository(db),
		Customers:  NewGormCustomerRepository(db),
		Orders:     NewGormOrderRepository(db),
		Files:      NewGormCSVFileRepository(db),
		Logs:       NewGormProcessingLogRepository(db),
		Summaries:  NewGormSummaryReader(db),
		Transactor: NewGormTransactor(db),
	}
}

package persistence

import (
	"context"

	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"gorm.io/gorm"
)

// GormTransactor implements ingest.Transactor using GORM transactions
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTx runs fn with repositories bound to one transaction. Any error from fn
// rolls the transaction back.
func (t *GormTransactor) WithinTx(ctx context.Context, fn func(store ingest.RowStore) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{
			customers: NewGormCustomerRepository(tx),
			orders:    NewGormOrderRepository(tx),
		})
	})
	return translateError(err)
}

type txStore struct {
	customers *GormCustomerRepository
	orders    *GormOrderRepository
}

func (s *txStore) Customers() ingest.CustomerRepository { return s.customers }
func (s *txStore) Orders() ingest.OrderRepository       { return s.orders }

package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SourceRepository persists sources
type SourceRepository interface {
	// FindOrCreate returns the source with the given canonical name, creating it if
	// needed. An existing source has its update timestamp refreshed.
	FindOrCreate(ctx context.Context, name string) (*Source, error)
	FindByName(ctx context.Context, name string) (*Source, error)
	// FindAll returns every source ordered by creation time, oldest first.
	FindAll(ctx context.Context) ([]*Source, error)
	Rename(ctx context.Context, id uuid.UUID, name string) (WriteResult, error)
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository persists customers and their addresses
type CustomerRepository interface {
	// Upsert creates or updates by (SourceID, ExternalID) and fills in c.ID.
	Upsert(ctx context.Context, c *Customer) (WriteResult, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByExternalID(ctx context.Context, sourceID uuid.UUID, externalID string) (*Customer, error)
	AddAddress(ctx context.Context, a *Address) error
	ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error)
	// Reassign moves a customer to another source, reporting a conflict instead
	// of failing when the external id is taken there.
	Reassign(ctx context.Context, id, sourceID uuid.UUID) (WriteResult, error)
	// Delete removes the customer and its addresses; its orders keep no customer link.
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository persists orders and their line items
type OrderRepository interface {
	// Upsert creates or updates by (SourceID, ExternalID) and fills in o.ID.
	Upsert(ctx context.Context, o *Order) (WriteResult, error)
	AddLineItem(ctx context.Context, item *OrderLineItem) error
	DeleteLineItems(ctx context.Context, orderID uuid.UUID) error
	ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error)
	Reassign(ctx context.Context, id, sourceID uuid.UUID) (WriteResult, error)
	// RelinkCustomer points every order of one customer at another.
	RelinkCustomer(ctx context.Context, fromCustomerID, toCustomerID uuid.UUID) (int64, error)
	// Delete removes the order and its line items.
	Delete(ctx context.Context, id uuid.UUID) error
}

// IngestedFileRepository persists file records
type IngestedFileRepository interface {
	FindByFingerprint(ctx context.Context, sourceID uuid.UUID, fingerprint string) (*IngestedFile, error)
	// Create inserts a new record; a duplicate (source, fingerprint) is a conflict.
	Create(ctx context.Context, f *IngestedFile) (WriteResult, error)
	Save(ctx context.Context, f *IngestedFile) error
	ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error)
	Reassign(ctx context.Context, id, sourceID uuid.UUID) (WriteResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProcessingLogRepository appends diagnostic entries
type ProcessingLogRepository interface {
	Append(ctx context.Context, entry *ProcessingLogEntry) error
	ReassignSource(ctx context.Context, fromSourceID, toSourceID uuid.UUID) (int64, error)
}

// SummaryReader is the read-only projection used by reporting collaborators.
type SummaryReader interface {
	Summaries(ctx context.Context, recentFiles int) ([]SourceSummary, error)
}

// RowStore is the set of repositories a single row write needs.
type RowStore interface {
	Customers() CustomerRepository
	Orders() OrderRepository
}

// Transactor runs fn with repositories bound to one transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(store RowStore) error) error
}

package ingestapp

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
)

// MockCustomerRepository is a mock implementation of ingest.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Upsert(ctx context.Context, c *ingest.Customer) (ingest.WriteResult, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(ingest.WriteResult), args.Error(1)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingest.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByExternalID(ctx context.Context, sourceID uuid.UUID, externalID string) (*ingest.Customer, error) {
	args := m.Called(ctx, sourceID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.Customer), args.Error(1)
}

func (m *MockCustomerRepository) AddAddress(ctx context.Context, a *ingest.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockCustomerRepository) ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, sourceID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCustomerRepository) Reassign(ctx context.Context, id, sourceID uuid.UUID) (ingest.WriteResult, error) {
	args := m.Called(ctx, id, sourceID)
	return args.Get(0).(ingest.WriteResult), args.Error(1)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of ingest.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Upsert(ctx context.Context, o *ingest.Order) (ingest.WriteResult, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(ingest.WriteResult), args.Error(1)
}

func (m *MockOrderRepository) AddLineItem(ctx context.Context, item *ingest.OrderLineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteLineItems(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, sourceID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockOrderRepository) Reassign(ctx context.Context, id, sourceID uuid.UUID) (ingest.WriteResult, error) {
	args := m.Called(ctx, id, sourceID)
	return args.Get(0).(ingest.WriteResult), args.Error(1)
}

func (m *MockOrderRepository) RelinkCustomer(ctx context.Context, fromCustomerID, toCustomerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, fromCustomerID, toCustomerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFileRepository is a mock implementation of ingest.IngestedFileRepository
type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) FindByFingerprint(ctx context.Context, sourceID uuid.UUID, fingerprint string) (*ingest.IngestedFile, error) {
	args := m.Called(ctx, sourceID, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ingest.IngestedFile), args.Error(1)
}

func (m *MockFileRepository) Create(ctx context.Context, f *ingest.IngestedFile) (ingest.WriteResult, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(ingest.WriteResult), args.Error(1)
}

func (m *MockFileRepository) Save(ctx context.Context, f *ingest.IngestedFile) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockFileRepository) ListIDsBySource(ctx context.Context, sourceID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, sourceID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFileRepository) Reassign(ctx context.Context, id, sourceID uuid.UUID) (ingest.WriteResult, error) {
	args := m.Called(ctx, id, sourceID)
	return args.Get(0).(ingest.WriteResult), args.Error(1)
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeTransactor runs fn directly against the mocks. Rollback is not modelled.
type fakeTransactor struct {
	customers *MockCustomerRepository
	orders    *MockOrderRepository
	err       error
}

func (f *fakeTransactor) WithinTx(_ context.Context, fn func(store ingest.RowStore) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(f)
}

func (f *fakeTransactor) Customers() ingest.CustomerRepository { return f.customers }
func (f *fakeTransactor) Orders() ingest.OrderRepository       { return f.orders }

package ingestapp

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	csvimport "github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/import"
)

// maxMoney is the exclusive bound of a numeric(14,2) column.
var maxMoney = decimal.New(1, 12)

// conflictError carries a unique-key conflict out of a transaction so that
// the row's earlier writes are rolled back.
type conflictError struct {
	key ingest.ConflictKey
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.key)
}

// UpserterOption configures an Upserter
type UpserterOption func(*Upserter)

// WithReplaceLineItems makes updated orders drop their line items before the
// row's items are inserted.
func WithReplaceLineItems(replace bool) UpserterOption {
	return func(u *Upserter) {
		u.replaceLineItems = replace
	}
}

// Upserter persists one Bundle per transaction.
type Upserter struct {
	tx               ingest.Transactor
	replaceLineItems bool
}

// NewUpserter creates a new Upserter
func NewUpserter(tx ingest.Transactor, opts ...UpserterOption) *Upserter {
	u := &Upserter{tx: tx}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Write validates and persists b for the source. Row-level failures come back
// as csvimport.RowError; anything for which ingest.IsFatal holds must abort
// the file.
func (u *Upserter) Write(ctx context.Context, sourceID uuid.UUID, row int, b *ingest.Bundle) (ingest.WriteKind, error) {
	if rowErr := validateBundle(row, b); rowErr != nil {
		return 0, *rowErr
	}

	var kind ingest.WriteKind
	err := u.tx.WithinTx(ctx, func(store ingest.RowStore) error {
		k, err := u.write(ctx, store, sourceID, b)
		kind = k
		return err
	})
	if err == nil {
		return kind, nil
	}

	var conflict *conflictError
	switch {
	case ingest.IsFatal(err):
		return 0, err
	case errors.As(err, &conflict):
		return 0, csvimport.NewRowError(row, "", csvimport.ErrCodeImportDuplicateInDB, conflict.Error())
	default:
		return 0, csvimport.NewRowError(row, "", csvimport.ErrCodeImportPersistence, err.Error())
	}
}

func (u *Upserter) write(ctx context.Context, store ingest.RowStore, sourceID uuid.UUID, b *ingest.Bundle) (ingest.WriteKind, error) {
	order := b.Order
	order.SourceID = sourceID
	order.CustomerID = nil

	if b.Customer.HasIdentity() {
		customer := b.Customer
		customer.SourceID = sourceID
		res, err := store.Customers().Upsert(ctx, &customer)
		if err != nil {
			return 0, err
		}
		if res.IsConflict() {
			return 0, &conflictError{key: res.Conflict}
		}

		for _, addr := range b.Addresses() {
			a := *addr
			a.CustomerID = res.ID
			if err := store.Customers().AddAddress(ctx, &a); err != nil {
				return 0, err
			}
		}
		customerID := res.ID
		order.CustomerID = &customerID
	}

	res, err := store.Orders().Upsert(ctx, &order)
	if err != nil {
		return 0, err
	}
	if res.IsConflict() {
		return 0, &conflictError{key: res.Conflict}
	}

	if res.Kind == ingest.WriteUpdated && u.replaceLineItems {
		if err := store.Orders().DeleteLineItems(ctx, res.ID); err != nil {
			return 0, err
		}
	}
	for i := range b.LineItems {
		item := b.LineItems[i]
		item.OrderID = res.ID
		if err := store.Orders().AddLineItem(ctx, &item); err != nil {
			return 0, err
		}
	}
	return res.Kind, nil
}

// validateBundle checks what the store would reject.
func validateBundle(row int, b *ingest.Bundle) *csvimport.RowError {
	if b.Order.ExternalID == "" {
		e := csvimport.NewRowError(row, ColID, csvimport.ErrCodeImportRequiredField, "order id is required")
		return &e
	}

	amounts := b.Order.Amounts()
	for _, item := range b.LineItems {
		amounts["line_item_price"] = item.Price
		amounts["line_item_compare_at_price"] = item.CompareAtPrice
		amounts["line_item_discount"] = decimal.NewNullDecimal(item.TotalDiscount)
	}
	for _, column := range slices.Sorted(maps.Keys(amounts)) {
		v := amounts[column]
		if v.Valid && v.Decimal.Abs().GreaterThanOrEqual(maxMoney) {
			e := csvimport.NewRowErrorWithValue(row, column, csvimport.ErrCodeImportInvalidRange,
				"value exceeds numeric(14,2)", v.Decimal.String())
			return &e
		}
	}
	return nil
}

package ingest

import "github.com/google/uuid"

// WriteKind is the outcome of a persistence write
type WriteKind int

const (
	WriteCreated WriteKind = iota + 1
	WriteUpdated
	WriteConflict
)

// String returns a readable name for the kind
func (k WriteKind) String() string {
	switch k {
	case WriteCreated:
		return "created"
	case WriteUpdated:
		return "updated"
	case WriteConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// ConflictKey names the natural key a write collided on
type ConflictKey string

const (
	ConflictNone               ConflictKey = ""
	ConflictSourceName         ConflictKey = "source_name"
	ConflictExternalOrderID    ConflictKey = "order_external_id"
	ConflictCustomerExternalID ConflictKey = "customer_external_id"
	ConflictFingerprint        ConflictKey = "file_fingerprint"
)

// WriteResult reports what a write did without exposing driver errors.
type WriteResult struct {
	Kind     WriteKind
	Conflict ConflictKey
	ID       uuid.UUID
}

// Created builds a created result
func Created(id uuid.UUID) WriteResult {
	return WriteResult{Kind: WriteCreated, ID: id}
}

// Updated builds an updated result
func Updated(id uuid.UUID) WriteResult {
	return WriteResult{Kind: WriteUpdated, ID: id}
}

// ConflictOn builds a conflict result for the given key
func ConflictOn(key ConflictKey) WriteResult {
	return WriteResult{Kind: WriteConflict, Conflict: key}
}

// IsConflict reports whether the write was rejected by a unique key
func (r WriteResult) IsConflict() bool {
	return r.Kind == WriteConflict
}

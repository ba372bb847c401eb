// Package tablestore defines the key/attribute table collaborator behind the
// tenant registry and the activity log. The store speaks a textual filter
// language with no parameter binding, so every dynamic value interpolated into
// a filter must be escaped by the caller (see internal/registry/filter).
package tablestore

import (
	"context"
	"time"
)

// Row is a single table entity: a composite (PartitionKey, RowKey) identity
// plus a flat bag of string properties.
type Row struct {
	PartitionKey string
	RowKey       string
	Props        map[string]string
	Timestamp    time.Time
}

// Client is the table collaborator contract. Query results are returned in
// ascending (PartitionKey, RowKey) order, so reverse-chronological row keys
// enumerate newest-first. Implementations must return sentinel.ErrNotFound
// from Get for missing rows and sentinel.ErrAlreadyUsed from Insert on
// duplicate keys.
type Client interface {
	// Query returns every row of table matching the filter expression.
	// An empty filter matches all rows.
	Query(ctx context.Context, table, filter string) ([]Row, error)

	// Insert adds a new row, failing when the (PartitionKey, RowKey) pair
	// already exists.
	Insert(ctx context.Context, table string, row Row) error

	// Upsert inserts or fully replaces a row.
	Upsert(ctx context.Context, table string, row Row) error

	// Get fetches a single row by key.
	Get(ctx context.Context, table, partition, rowKey string) (Row, error)
}

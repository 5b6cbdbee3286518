// Package storage
package storage

import (
	"context"

	"github.com/papercomputeco/bridge/pkg/session"
)

// DefaultListLimit is the number of records List returns when asked for a
// non-positive limit.
const DefaultListLimit = 50

// Driver defines the interface for persisting and retrieving session records
// in a storage backend.
type Driver interface {
	// Put stores a record. Returns true if the record was newly inserted,
	// false if a record with the same ID already exists. If the record already
	// exists, this is a no-op.
	Put(ctx context.Context, rec *session.Record) (bool, error)

	// Get retrieves a record by its message ID.
	Get(ctx context.Context, id string) (*session.Record, error)

	// List returns up to limit records, most recently started first.
	List(ctx context.Context, limit int) ([]*session.Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}

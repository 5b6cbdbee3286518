package inmemory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/papercomputeco/bridge/pkg/session"
	"github.com/papercomputeco/bridge/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of records
	mu sync.RWMutex

	// records is the in memory map of records keyed by message ID
	records map[string]*session.Record
}

// NewDriver creates a new in-memory storer.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]*session.Record),
	}
}

// Put stores a record. Returns true if the record was newly inserted,
// false if it already existed.
func (s *Driver) Put(_ context.Context, rec *session.Record) (bool, error) {
	if rec == nil {
		return false, errors.New("cannot store nil record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return false, nil
	}

	stored := *rec
	s.records[rec.ID] = &stored
	return true, nil
}

// Get retrieves a record by its message ID.
func (s *Driver) Get(_ context.Context, id string) (*session.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	out := *rec
	return &out, nil
}

// List returns up to limit records, most recently started first.
func (s *Driver) List(_ context.Context, limit int) ([]*session.Record, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}

	s.mu.RLock()
	records := make([]*session.Record, 0, len(s.records))
	for _, rec := range s.records {
		out := *rec
		records = append(records, &out)
	}
	s.mu.RUnlock()

	slices.SortFunc(records, func(a, b *session.Record) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count returns the number of records in the store.
func (s *Driver) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Close is a no-op for the in-memory storer.
func (s *Driver) Close() error {
	return nil
}

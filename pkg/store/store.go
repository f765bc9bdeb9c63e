// Package store provides the keyed record storage engine and the per-kind
// query engines layered over it.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/model"
)

// ErrNotFound is returned by mutating operations addressed at an ID that
// does not exist. Plain fetches report absence through their bool result.
var ErrNotFound = errors.New("record not found")

// Store is the storage contract shared by every record kind.
// Implementations must be safe for concurrent use.
type Store[T model.Record[T]] interface {
	// Save inserts or replaces the record at its ID.
	Save(ctx context.Context, record T) error

	// SaveAll saves records in order; a later duplicate ID wins.
	SaveAll(ctx context.Context, records []T) error

	// Fetch returns the current value for id, if present.
	Fetch(ctx context.Context, id uuid.UUID) (T, bool, error)

	// FetchAll returns every stored record, tombstoned ones included, in no
	// particular order.
	FetchAll(ctx context.Context) ([]T, error)

	// Delete physically removes the entry for id. Deleting an absent ID is a no-op.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteAll clears the store.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored entries, tombstoned ones included.
	Count(ctx context.Context) (int, error)
}

// MapStore is an in-memory implementation of Store.
// It uses a map keyed by record ID and provides thread-safe access via RWMutex.
// Records are cloned on the way in and out so callers never share state
// with the stored value.
type MapStore[T model.Record[T]] struct {
	records map[uuid.UUID]T
	mu      sync.RWMutex
}

// NewMapStore creates an empty in-memory store.
func NewMapStore[T model.Record[T]]() *MapStore[T] {
	return &MapStore[T]{
		records: make(map[uuid.UUID]T),
	}
}

// Compile-time interface check
var _ Store[model.Item] = (*MapStore[model.Item])(nil)

// Save inserts or replaces the record at its ID.
func (m *MapStore[T]) Save(ctx context.Context, record T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.RecordID()] = record.Clone()
	return nil
}

// SaveAll saves records in the given order under a single lock.
func (m *MapStore[T]) SaveAll(ctx context.Context, records []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, record := range records {
		m.records[record.RecordID()] = record.Clone()
	}
	return nil
}

// Fetch returns the record stored at id.
func (m *MapStore[T]) Fetch(ctx context.Context, id uuid.UUID) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	return record.Clone(), true, nil
}

// FetchAll returns a copy of every stored record.
func (m *MapStore[T]) FetchAll(ctx context.Context) ([]T, error) {
	return m.filter(func(T) bool { return true }), nil
}

// Delete removes the entry for id.
func (m *MapStore[T]) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, id)
	return nil
}

// DeleteAll removes every entry.
func (m *MapStore[T]) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[uuid.UUID]T)
	return nil
}

// Count returns the number of stored entries.
func (m *MapStore[T]) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records), nil
}

// filter returns clones of the records accepted by keep, taken from a
// single consistent snapshot.
func (m *MapStore[T]) filter(keep func(T) bool) []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]T, 0, len(m.records))
	for _, record := range m.records {
		if keep(record) {
			results = append(results, record.Clone())
		}
	}
	return results
}

// sortByRecency orders records newest first. Equal timestamps fall back to
// ID order so results are deterministic.
func sortByRecency[T model.Record[T]](records []T, at func(T) time.Time) {
	sort.Slice(records, func(i, j int) bool {
		ti, tj := at(records[i]), at(records[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return records[i].RecordID().String() < records[j].RecordID().String()
	})
}

// paginate drops offset leading results and then truncates to limit.
// Values <= 0 are treated as absent.
func paginate[T any](records []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(records) {
			return records[:0]
		}
		records = records[offset:]
	}
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records
}

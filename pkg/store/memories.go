package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/model"
)

// MemoryStore holds memories and answers memory queries.
type MemoryStore struct {
	*MapStore[model.Memory]
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{MapStore: NewMapStore[model.Memory]()}
}

// Query returns the memories matching q, most recently updated first.
// Without an explicit Active=false only active memories are considered.
func (s *MemoryStore) Query(ctx context.Context, q model.MemoryQuery) ([]model.Memory, error) {
	wantActive := q.Active == nil || *q.Active
	search := strings.ToLower(q.Search)

	results := s.filter(func(mem model.Memory) bool {
		if q.UserID != nil && mem.UserID != *q.UserID {
			return false
		}
		if q.Category != nil && mem.Category != *q.Category {
			return false
		}
		if q.MemoryType != nil && mem.MemoryType != *q.MemoryType {
			return false
		}
		if q.Source != nil && mem.Source != *q.Source {
			return false
		}
		if q.RelatedItemID != nil && !mem.RelatesTo(*q.RelatedItemID) {
			return false
		}
		if search != "" && !mem.Matches(search) {
			return false
		}
		return mem.IsActive == wantActive
	})

	sortByRecency(results, func(mem model.Memory) time.Time { return mem.UpdatedAt })
	return paginate(results, q.Offset, q.Limit), nil
}

// FetchByUser returns every memory owned by userID, active or not.
func (s *MemoryStore) FetchByUser(ctx context.Context, userID uuid.UUID) ([]model.Memory, error) {
	results := s.filter(func(mem model.Memory) bool { return mem.UserID == userID })
	sortByRecency(results, func(mem model.Memory) time.Time { return mem.UpdatedAt })
	return results, nil
}

// FetchActive returns the user's active memories.
func (s *MemoryStore) FetchActive(ctx context.Context, userID uuid.UUID) ([]model.Memory, error) {
	return s.Query(ctx, model.MemoryQuery{UserID: &userID})
}

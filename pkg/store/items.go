package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/model"
)

// ItemStore holds items and answers item queries.
type ItemStore struct {
	*MapStore[model.Item]
}

// NewItemStore creates an empty item store.
func NewItemStore() *ItemStore {
	return &ItemStore{MapStore: NewMapStore[model.Item]()}
}

// Query returns the non-deleted items matching q, most recently updated first.
func (s *ItemStore) Query(ctx context.Context, q model.ItemQuery) ([]model.Item, error) {
	search := strings.ToLower(q.Search)

	results := s.filter(func(item model.Item) bool {
		if q.UserID != nil && item.UserID != *q.UserID {
			return false
		}
		if q.Status != nil && item.Status != *q.Status {
			return false
		}
		if q.ItemType != nil && item.ItemType != *q.ItemType {
			return false
		}
		if q.DueBefore != nil && (item.DueDate == nil || !item.DueDate.Before(*q.DueBefore)) {
			return false
		}
		if q.DueAfter != nil && (item.DueDate == nil || !item.DueDate.After(*q.DueAfter)) {
			return false
		}
		if len(q.Tags) > 0 && !item.HasAnyTag(q.Tags) {
			return false
		}
		if search != "" && !item.Matches(search) {
			return false
		}
		return !item.IsDeleted()
	})

	sortByRecency(results, func(item model.Item) time.Time { return item.UpdatedAt })
	return paginate(results, q.Offset, q.Limit), nil
}

// FetchByUser returns the user's non-deleted items.
func (s *ItemStore) FetchByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error) {
	return s.Query(ctx, model.ItemQuery{UserID: &userID})
}

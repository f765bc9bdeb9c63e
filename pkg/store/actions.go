package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/model"
)

// ActionStore holds the activity log and answers action queries.
type ActionStore struct {
	*MapStore[model.Action]
}

// NewActionStore creates an empty action store.
func NewActionStore() *ActionStore {
	return &ActionStore{MapStore: NewMapStore[model.Action]()}
}

// Query returns the actions matching q, newest first.
func (s *ActionStore) Query(ctx context.Context, q model.ActionQuery) ([]model.Action, error) {
	results := s.filter(func(a model.Action) bool {
		if q.UserID != nil && a.UserID != *q.UserID {
			return false
		}
		if len(q.ActionTypes) > 0 && !slices.Contains(q.ActionTypes, a.ActionType) {
			return false
		}
		if len(q.TargetTypes) > 0 && !slices.Contains(q.TargetTypes, a.TargetType) {
			return false
		}
		if q.TargetID != nil && (a.TargetID == nil || *a.TargetID != *q.TargetID) {
			return false
		}
		if q.SessionID != nil && (a.SessionID == nil || *a.SessionID != *q.SessionID) {
			return false
		}
		if q.DeviceID != "" && a.DeviceID != q.DeviceID {
			return false
		}
		if q.StartDate != nil && a.Timestamp.Before(*q.StartDate) {
			return false
		}
		if q.EndDate != nil && a.Timestamp.After(*q.EndDate) {
			return false
		}
		return true
	})

	sortByRecency(results, func(a model.Action) time.Time { return a.Timestamp })
	return paginate(results, q.Offset, q.Limit), nil
}

// FetchRecent returns the user's newest actions, at most limit of them.
func (s *ActionStore) FetchRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.Action, error) {
	return s.Query(ctx, model.ActionQuery{UserID: &userID, Limit: limit})
}

// Package activity records what a user did and summarizes it.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

// DefaultRecentLimit is the number of actions GetRecentActions returns
// when no limit is given.
const DefaultRecentLimit = 50

const storageType = "actions"

// Storage is the subset of the storage engine the service depends on.
type Storage interface {
	store.Store[model.Action]
	Query(ctx context.Context, q model.ActionQuery) ([]model.Action, error)
}

// Entry holds the caller-supplied fields of an action being logged.
type Entry struct {
	UserID      uuid.UUID
	ActionType  model.ActionType
	TargetType  model.TargetType
	TargetID    *uuid.UUID
	Description string
	Metadata    map[string]string
	DeviceID    string
	SessionID   *uuid.UUID
}

// Service appends to and reads from the activity log.
type Service struct {
	store    Storage
	now      func() time.Time
	newID    func() uuid.UUID
	location *time.Location
	logger   *slog.Logger
	metrics  metrics.Collector
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for action timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs sets the identifier source used for new actions.
func WithIDs(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

// WithLocation sets the time zone in which hours of day are read for
// activity summaries. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// New creates an activity service over storage.
func New(storage Storage, opts ...Option) *Service {
	s := &Service{
		store: storage,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.location == nil {
		s.location = time.Local
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoopCollector()
	}
	return s
}

// Log records an action stamped with the current time.
// Storage failures are returned unchanged in meaning, wrapped with context.
func (s *Service) Log(ctx context.Context, e Entry) (_ model.Action, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "log_action", start, err) }()

	action := model.Action{
		ID:          s.newID(),
		UserID:      e.UserID,
		ActionType:  e.ActionType,
		TargetType:  e.TargetType,
		TargetID:    e.TargetID,
		Description: e.Description,
		Metadata:    e.Metadata,
		DeviceID:    e.DeviceID,
		SessionID:   e.SessionID,
		Timestamp:   s.now(),
	}
	if action.Metadata == nil {
		action.Metadata = map[string]string{}
	}
	action = action.Clone()

	if err := action.Validate(); err != nil {
		s.logger.Warn("action rejected", "user_id", e.UserID, "error", err)
		return model.Action{}, err
	}

	if err := s.store.Save(ctx, action); err != nil {
		return model.Action{}, fmt.Errorf("save action %s: %w", action.ID, err)
	}
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetStorageCount(ctx, storageType, int64(n))
	}

	s.logger.Debug("action logged",
		"action_id", action.ID,
		"user_id", action.UserID,
		"action_type", action.ActionType,
		"target_type", action.TargetType,
	)
	return action, nil
}

// LogCreate records the creation of a target.
func (s *Service) LogCreate(ctx context.Context, userID uuid.UUID, targetType model.TargetType, targetID uuid.UUID, description string, metadata map[string]string) (model.Action, error) {
	return s.Log(ctx, Entry{
		UserID:      userID,
		ActionType:  model.ActionCreate,
		TargetType:  targetType,
		TargetID:    &targetID,
		Description: description,
		Metadata:    metadata,
	})
}

// LogUpdate records a change to a target.
func (s *Service) LogUpdate(ctx context.Context, userID uuid.UUID, targetType model.TargetType, targetID uuid.UUID, description string, metadata map[string]string) (model.Action, error) {
	return s.Log(ctx, Entry{
		UserID:      userID,
		ActionType:  model.ActionUpdate,
		TargetType:  targetType,
		TargetID:    &targetID,
		Description: description,
		Metadata:    metadata,
	})
}

// LogDelete records the removal of a target.
func (s *Service) LogDelete(ctx context.Context, userID uuid.UUID, targetType model.TargetType, targetID uuid.UUID, description string) (model.Action, error) {
	return s.Log(ctx, Entry{
		UserID:      userID,
		ActionType:  model.ActionDelete,
		TargetType:  targetType,
		TargetID:    &targetID,
		Description: description,
	})
}

// LogItemComplete records that an item was completed.
func (s *Service) LogItemComplete(ctx context.Context, userID, itemID uuid.UUID, itemTitle string) (model.Action, error) {
	return s.Log(ctx, Entry{
		UserID:      userID,
		ActionType:  model.ActionComplete,
		TargetType:  model.TargetItem,
		TargetID:    &itemID,
		Description: "Completed: " + itemTitle,
		Metadata:    map[string]string{"title": itemTitle},
	})
}

// LogView records that the user looked at something. targetID may be nil.
func (s *Service) LogView(ctx context.Context, userID uuid.UUID, targetType model.TargetType, targetID *uuid.UUID, description string) (model.Action, error) {
	return s.Log(ctx, Entry{
		UserID:      userID,
		ActionType:  model.ActionView,
		TargetType:  targetType,
		TargetID:    targetID,
		Description: description,
	})
}

// LogSearch records a search and how many results it produced.
func (s *Service) LogSearch(ctx context.Context, userID uuid.UUID, query string, resultCount int) (model.Action, error) {
	return s.Log(ctx, Entry{
		UserID:      userID,
		ActionType:  model.ActionSearch,
		TargetType:  model.TargetSystem,
		Description: "Search: " + query,
		Metadata: map[string]string{
			"query":       query,
			"resultCount": strconv.Itoa(resultCount),
		},
	})
}

// GetRecentActions returns the user's newest actions. limit <= 0 selects
// DefaultRecentLimit.
func (s *Service) GetRecentActions(ctx context.Context, userID uuid.UUID, limit int) ([]model.Action, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.GetActions(ctx, model.ActionQuery{UserID: &userID, Limit: limit})
}

// GetActions runs an action query.
func (s *Service) GetActions(ctx context.Context, q model.ActionQuery) (_ []model.Action, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "query_actions", start, err) }()

	results, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	return results, nil
}

// GetActionsForTarget returns the user's actions on one target.
func (s *Service) GetActionsForTarget(ctx context.Context, targetID uuid.UUID, targetType model.TargetType, userID uuid.UUID) ([]model.Action, error) {
	return s.GetActions(ctx, model.ActionQuery{
		UserID:      &userID,
		TargetTypes: []model.TargetType{targetType},
		TargetID:    &targetID,
	})
}

// GetActionsOfType returns the user's newest actions of one type.
// limit <= 0 selects DefaultRecentLimit.
func (s *Service) GetActionsOfType(ctx context.Context, actionType model.ActionType, userID uuid.UUID, limit int) ([]model.Action, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.GetActions(ctx, model.ActionQuery{
		UserID:      &userID,
		ActionTypes: []model.ActionType{actionType},
		Limit:       limit,
	})
}

// GetActionsInRange returns the user's actions with start <= timestamp <= end.
func (s *Service) GetActionsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.Action, error) {
	return s.GetActions(ctx, model.ActionQuery{
		UserID:    &userID,
		StartDate: &start,
		EndDate:   &end,
	})
}

// Package item manages inbox items: creation, whole-value updates,
// completion and soft deletion.
package item

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

const storageType = "items"

// Storage is the subset of the storage engine the service depends on.
type Storage interface {
	store.Store[model.Item]
	Query(ctx context.Context, q model.ItemQuery) ([]model.Item, error)
	FetchByUser(ctx context.Context, userID uuid.UUID) ([]model.Item, error)
}

// NewItem holds the caller-supplied fields of an item being created.
// Zero values select a task in the inbox at medium priority.
type NewItem struct {
	UserID     uuid.UUID
	Title      string
	Content    string
	ItemType   model.ItemType
	Status     model.ItemStatus
	Priority   *model.Priority
	DueDate    *time.Time
	Tags       []string
	ParentID   *uuid.UUID
	SourceID   string
	SourceType model.SourceType
}

// Service owns the item lifecycle. It is safe for concurrent use.
type Service struct {
	store   Storage
	now     func() time.Time
	newID   func() uuid.UUID
	logger  *slog.Logger
	metrics metrics.Collector

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs sets the identifier source used for new items.
func WithIDs(newID func() uuid.UUID) Option {
	return func(s *Service) { s.newID = newID }
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(c metrics.Collector) Option {
	return func(s *Service) { s.metrics = c }
}

// New creates an item service over storage.
func New(storage Storage, opts ...Option) *Service {
	s := &Service{
		store: storage,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoopCollector()
	}
	return s
}

// Create validates and persists a new item.
func (s *Service) Create(ctx context.Context, p NewItem) (_ model.Item, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "create_item", start, err) }()

	now := s.now()
	it := model.Item{
		ID:         s.newID(),
		UserID:     p.UserID,
		Title:      p.Title,
		Content:    p.Content,
		ItemType:   p.ItemType,
		Status:     p.Status,
		Priority:   model.PriorityMedium,
		DueDate:    p.DueDate,
		Tags:       p.Tags,
		ParentID:   p.ParentID,
		SourceID:   p.SourceID,
		SourceType: p.SourceType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if it.ItemType == "" {
		it.ItemType = model.ItemTypeTask
	}
	if it.Status == "" {
		it.Status = model.ItemStatusInbox
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
	if it.SourceType == "" {
		it.SourceType = model.SourceManual
	}
	it = it.Clone()

	if err := it.Validate(); err != nil {
		s.logger.Warn("item rejected", "user_id", p.UserID, "error", err)
		return model.Item{}, err
	}

	if err := s.store.Save(ctx, it); err != nil {
		return model.Item{}, fmt.Errorf("save item %s: %w", it.ID, err)
	}
	s.refreshCount(ctx)

	s.logger.Info("item created", "item_id", it.ID, "user_id", it.UserID, "status", it.Status)
	return it, nil
}

// Get returns the item with id unless it is absent or soft-deleted.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.Item, bool, error) {
	it, ok, err := s.store.Fetch(ctx, id)
	if err != nil {
		return model.Item{}, false, fmt.Errorf("fetch item %s: %w", id, err)
	}
	if !ok || it.IsDeleted() {
		return model.Item{}, false, nil
	}
	return it, true, nil
}

// Update replaces the item with the value fn derives from it. The ID,
// owner, creation time and tombstone cannot be changed through fn;
// UpdatedAt is refreshed.
func (s *Service) Update(ctx context.Context, id uuid.UUID, fn func(model.Item) model.Item) (_ model.Item, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "update_item", start, err) }()

	return s.mutate(ctx, id, func(current model.Item, now time.Time) model.Item {
		next := fn(current.Clone())
		next.ID = current.ID
		next.UserID = current.UserID
		next.CreatedAt = current.CreatedAt
		next.DeletedAt = nil
		next.UpdatedAt = now
		return next
	})
}

// Complete marks the item completed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (_ model.Item, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "complete_item", start, err) }()

	return s.mutate(ctx, id, func(current model.Item, now time.Time) model.Item {
		return current.Completed(now)
	})
}

// Delete soft-deletes the item: it is kept in storage with a tombstone and
// disappears from every query.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "delete_item", start, err) }()

	_, err = s.mutate(ctx, id, func(current model.Item, now time.Time) model.Item {
		return current.SoftDeleted(now)
	})
	if err == nil {
		s.logger.Info("item deleted", "item_id", id)
	}
	return err
}

// mutate applies fn to a live item and saves the validated result while
// holding the service lock.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(model.Item, time.Time) model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok, err := s.store.Fetch(ctx, id)
	if err != nil {
		return model.Item{}, fmt.Errorf("fetch item %s: %w", id, err)
	}
	if !ok || current.IsDeleted() {
		return model.Item{}, fmt.Errorf("item %s: %w", id, store.ErrNotFound)
	}

	next := fn(current, s.now())
	if err := next.Validate(); err != nil {
		return model.Item{}, err
	}
	if err := s.store.Save(ctx, next); err != nil {
		return model.Item{}, fmt.Errorf("save item %s: %w", id, err)
	}
	return next, nil
}

func (s *Service) refreshCount(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetStorageCount(ctx, storageType, int64(n))
	}
}

// Query runs an item query.
func (s *Service) Query(ctx context.Context, q model.ItemQuery) (_ []model.Item, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "query_items", start, err) }()

	results, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	return results, nil
}

// ForUser returns every non-deleted item of the user, most recently
// updated first.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) (_ []model.Item, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "list_items", start, err) }()

	results, err := s.store.FetchByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch items for user %s: %w", userID, err)
	}
	return results, nil
}

// DueBefore returns the user's items due strictly before t.
func (s *Service) DueBefore(ctx context.Context, userID uuid.UUID, t time.Time) ([]model.Item, error) {
	return s.Query(ctx, model.ItemQuery{UserID: &userID, DueBefore: &t})
}

// ByTag returns the user's items carrying tag.
func (s *Service) ByTag(ctx context.Context, userID uuid.UUID, tag string) ([]model.Item, error) {
	return s.Query(ctx, model.ItemQuery{UserID: &userID, Tags: []string{tag}})
}

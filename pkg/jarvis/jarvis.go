// Package jarvis wires the memory-resident data layer of the personal
// assistant: one store per record kind and the item, memory and activity
// services built over them.
package jarvis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/activity"
	"github.com/dan-solli/jarvis-core/pkg/embeddings"
	"github.com/dan-solli/jarvis-core/pkg/item"
	"github.com/dan-solli/jarvis-core/pkg/memory"
	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

// Jarvis is the main entry point for the data layer. Every store and
// service it uses is owned by the value; nothing is shared globally.
type Jarvis struct {
	config Config

	items     *store.ItemStore
	memories  *store.MemoryStore
	actions   *store.ActionStore
	embedder  embeddings.Client
	cache     *embeddings.CachedClient
	collector metrics.Collector
	logger    *slog.Logger

	itemService     *item.Service
	memoryService   *memory.Service
	activityService *activity.Service
}

type options struct {
	logger    *slog.Logger
	now       func() time.Time
	newID     func() uuid.UUID
	embedder  embeddings.Client
	collector metrics.Collector
}

// Option customizes New.
type Option func(*options)

// WithLogger sets the logger shared by all services.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source shared by all services.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDs sets the identifier source shared by all services.
func WithIDs(newID func() uuid.UUID) Option {
	return func(o *options) { o.newID = newID }
}

// WithEmbedder replaces the hash embedder. The client is still wrapped in
// the embedding cache unless the cache is disabled.
func WithEmbedder(e embeddings.Client) Option {
	return func(o *options) { o.embedder = e }
}

// WithMetrics sets the collector, overriding Config.MetricsEnabled.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// New creates a Jarvis instance from cfg. Zero config fields take defaults.
func New(cfg Config, opts ...Option) (*Jarvis, error) {
	cfg.applyDefaults()

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.newID == nil {
		o.newID = uuid.New
	}

	loc, err := cfg.location()
	if err != nil {
		return nil, err
	}

	if o.collector == nil {
		if cfg.MetricsEnabled {
			o.collector = metrics.NewCollector()
		} else {
			o.collector = metrics.NewNoopCollector()
		}
	}

	if o.embedder == nil {
		o.embedder = embeddings.NewHashEmbedder(cfg.EmbeddingDimensions)
	}

	j := &Jarvis{
		config:    cfg,
		items:     store.NewItemStore(),
		memories:  store.NewMemoryStore(),
		actions:   store.NewActionStore(),
		embedder:  o.embedder,
		collector: o.collector,
		logger:    o.logger,
	}

	if cfg.EmbeddingCacheSize > 0 {
		cache, err := embeddings.NewCachedClient(o.embedder, cfg.EmbeddingCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}
		j.cache = cache
		j.embedder = cache
	}

	j.itemService = item.New(j.items,
		item.WithClock(o.now),
		item.WithIDs(o.newID),
		item.WithLogger(o.logger.With("component", "item")),
		item.WithMetrics(o.collector),
	)
	j.memoryService = memory.New(j.memories,
		memory.WithEmbedder(j.embedder),
		memory.WithClock(o.now),
		memory.WithIDs(o.newID),
		memory.WithLogger(o.logger.With("component", "memory")),
		memory.WithMetrics(o.collector),
		memory.WithMinContentLength(cfg.MinContentLength),
		memory.WithSearchLimit(cfg.DefaultSearchLimit),
	)
	j.activityService = activity.New(j.actions,
		activity.WithClock(o.now),
		activity.WithIDs(o.newID),
		activity.WithLocation(loc),
		activity.WithLogger(o.logger.With("component", "activity")),
		activity.WithMetrics(o.collector),
	)

	o.logger.Debug("jarvis initialized",
		"embedding_dimensions", j.embedder.Dimensions(),
		"cache_enabled", j.cache != nil,
		"metrics_enabled", cfg.MetricsEnabled,
		"timezone", loc.String(),
	)
	return j, nil
}

// Config returns the effective configuration with defaults applied.
func (j *Jarvis) Config() Config {
	return j.config
}

// Items returns the item service.
func (j *Jarvis) Items() *item.Service {
	return j.itemService
}

// Memories returns the memory service.
func (j *Jarvis) Memories() *memory.Service {
	return j.memoryService
}

// Activity returns the activity service.
func (j *Jarvis) Activity() *activity.Service {
	return j.activityService
}

// Metrics returns the configured collector.
func (j *Jarvis) Metrics() metrics.Collector {
	return j.collector
}

// Close releases the embedding cache. The stores are memory-resident and
// need no teardown.
func (j *Jarvis) Close() error {
	if j.cache != nil {
		j.cache.Close()
	}
	return nil
}

// CompleteItem completes the item and records the completion in the
// activity log. The two steps are not atomic: if logging fails the item
// stays completed and the logging error is returned.
func (j *Jarvis) CompleteItem(ctx context.Context, id uuid.UUID) (model.Item, error) {
	it, err := j.itemService.Complete(ctx, id)
	if err != nil {
		return model.Item{}, err
	}
	if _, err := j.activityService.LogItemComplete(ctx, it.UserID, it.ID, it.Title); err != nil {
		return it, fmt.Errorf("log completion of item %s: %w", it.ID, err)
	}
	return it, nil
}

// RememberFact stores a new memory and logs its creation.
func (j *Jarvis) RememberFact(ctx context.Context, p memory.NewMemory) (model.Memory, error) {
	mem, err := j.memoryService.CreateMemory(ctx, p)
	if err != nil {
		return model.Memory{}, err
	}
	meta := map[string]string{
		"category": string(mem.Category),
		"type":     string(mem.MemoryType),
	}
	if _, err := j.activityService.LogCreate(ctx, mem.UserID, model.TargetMemory, mem.ID, "Remembered a "+string(mem.MemoryType), meta); err != nil {
		return mem, fmt.Errorf("log creation of memory %s: %w", mem.ID, err)
	}
	return mem, nil
}

// Recall runs a semantic search with the configured limit and relevance
// floor and logs the search with its result count.
func (j *Jarvis) Recall(ctx context.Context, userID uuid.UUID, query string) ([]memory.SearchResult, error) {
	results, err := j.memoryService.SemanticSearch(ctx, query, userID, j.config.DefaultSearchLimit, *j.config.DefaultMinSimilarity)
	if err != nil {
		return nil, err
	}
	if _, err := j.activityService.LogSearch(ctx, userID, query, len(results)); err != nil {
		return results, fmt.Errorf("log search: %w", err)
	}
	return results, nil
}

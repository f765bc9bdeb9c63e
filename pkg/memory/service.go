// Package memory manages the lifecycle of user memories and retrieves them
// either by substring or by embedding similarity.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dan-solli/jarvis-core/pkg/embeddings"
	"github.com/dan-solli/jarvis-core/pkg/metrics"
	"github.com/dan-solli/jarvis-core/pkg/model"
	"github.com/dan-solli/jarvis-core/pkg/store"
)

const (
	// DefaultMinContentLength is the content length, in runes, from which
	// a memory gets an embedding.
	DefaultMinContentLength = 11

	// DefaultSearchLimit caps semantic search results when no limit is given.
	DefaultSearchLimit = 10

	// DefaultMinSimilarity is the usual relevance floor for semantic search.
	DefaultMinSimilarity = 0.5

	storageType = "memories"
)

// Storage is the subset of the storage engine the service depends on.
type Storage interface {
	store.Store[model.Memory]
	Query(ctx context.Context, q model.MemoryQuery) ([]model.Memory, error)
	FetchByUser(ctx context.Context, userID uuid.UUID) ([]model.Memory, error)
	FetchActive(ctx context.Context, userID uuid.UUID) ([]model.Memory, error)
}

// SearchResult pairs a memory with its similarity to the query.
type SearchResult struct {
	Memory model.Memory
	Score  float64
}

// NewMemory holds the caller-supplied fields of a memory being created.
// Zero enum values select fact, general and explicit.
type NewMemory struct {
	UserID         uuid.UUID
	Content        string
	MemoryType     model.MemoryType
	Category       model.MemoryCategory
	Source         model.MemorySource
	RelatedItemIDs []uuid.UUID
}

// Service owns the memory lifecycle. It is safe for concurrent use;
// read-modify-write operations are serialized so access counts are never lost.
type Service struct {
	store            Storage
	embedder         embeddings.Client
	now              func() time.Time
	newID            func() uuid.UUID
	logger           *slog.Logger
	metrics          metrics.Collector
	minContentLength int
	searchLimit      int

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithEmbedder replaces the default hash embedder.
func WithEmbedder(e embeddings.Client) Option {
	return func(s *Service) { s.embedder = e }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDs sets the identifier source used for new memories.
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

// WithMinContentLength sets the rune count from which content is embedded.
func WithMinContentLength(n int) Option {
	return func(s *Service) { s.minContentLength = n }
}

// WithSearchLimit sets the semantic search limit used when callers pass none.
func WithSearchLimit(n int) Option {
	return func(s *Service) { s.searchLimit = n }
}

// New creates a memory service over storage.
func New(storage Storage, opts ...Option) *Service {
	s := &Service{
		store:            storage,
		now:              time.Now,
		newID:            uuid.New,
		minContentLength: DefaultMinContentLength,
		searchLimit:      DefaultSearchLimit,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.embedder == nil {
		s.embedder = embeddings.NewHashEmbedder(embeddings.DefaultDimensions)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoopCollector()
	}
	if s.minContentLength <= 0 {
		s.minContentLength = DefaultMinContentLength
	}
	if s.searchLimit <= 0 {
		s.searchLimit = DefaultSearchLimit
	}
	return s
}

// CreateMemory builds, embeds and persists a new memory.
func (s *Service) CreateMemory(ctx context.Context, p NewMemory) (_ model.Memory, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "create_memory", start, err) }()

	now := s.now()
	mem := model.Memory{
		ID:         s.newID(),
		UserID:     p.UserID,
		Content:    p.Content,
		MemoryType: p.MemoryType,
		Category:   p.Category,
		Confidence: 1.0,
		Source:     p.Source,
		CreatedAt:  now,
		UpdatedAt:  now,
		IsActive:   true,
	}
	if mem.MemoryType == "" {
		mem.MemoryType = model.MemoryTypeFact
	}
	if mem.Category == "" {
		mem.Category = model.CategoryGeneral
	}
	if mem.Source == "" {
		mem.Source = model.SourceExplicit
	}
	if len(p.RelatedItemIDs) > 0 {
		mem.RelatedItemIDs = make([]uuid.UUID, len(p.RelatedItemIDs))
		copy(mem.RelatedItemIDs, p.RelatedItemIDs)
	}

	if err := mem.Validate(); err != nil {
		s.logger.Warn("memory rejected", "user_id", p.UserID, "error", err)
		return model.Memory{}, err
	}

	mem.Embedding, err = s.embedFor(ctx, mem.Content)
	if err != nil {
		return model.Memory{}, err
	}
	if err := mem.ValidateEmbedding(s.embedder.Dimensions()); err != nil {
		return model.Memory{}, err
	}

	if err := s.store.Save(ctx, mem); err != nil {
		return model.Memory{}, fmt.Errorf("save memory %s: %w", mem.ID, err)
	}
	s.refreshCount(ctx)

	s.logger.Info("memory created",
		"memory_id", mem.ID,
		"user_id", mem.UserID,
		"type", mem.MemoryType,
		"embedded", mem.Embedding != nil,
	)
	return mem, nil
}

// GetMemory returns the memory with id and records the access: the
// returned and persisted copy has AccessCount incremented and
// LastAccessedAt set to now. The bool is false when no such memory exists.
func (s *Service) GetMemory(ctx context.Context, id uuid.UUID) (_ model.Memory, _ bool, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "get_memory", start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok, err := s.store.Fetch(ctx, id)
	if err != nil {
		return model.Memory{}, false, fmt.Errorf("fetch memory %s: %w", id, err)
	}
	if !ok {
		s.logger.Debug("memory not found", "memory_id", id)
		return model.Memory{}, false, nil
	}

	mem = mem.WithAccess(s.now())
	if err := s.store.Save(ctx, mem); err != nil {
		return model.Memory{}, false, fmt.Errorf("save memory %s: %w", id, err)
	}

	s.logger.Debug("memory accessed", "memory_id", id, "access_count", mem.AccessCount)
	return mem, true, nil
}

// UpdateConfidence stores a clamped confidence for the memory.
// NaN is rejected as invalid data.
func (s *Service) UpdateConfidence(ctx context.Context, id uuid.UUID, confidence float64) (err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "update_confidence", start, err) }()

	if math.IsNaN(confidence) {
		return fmt.Errorf("%w: confidence for memory %s is NaN", model.ErrInvalidData, id)
	}

	return s.mutate(ctx, id, func(mem model.Memory, now time.Time) (model.Memory, error) {
		return mem.WithConfidence(confidence, now), nil
	})
}

// DeactivateMemory soft-deletes the memory. It stays retrievable by ID but
// drops out of every active query and search.
func (s *Service) DeactivateMemory(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "deactivate_memory", start, err) }()

	err = s.mutate(ctx, id, func(mem model.Memory, now time.Time) (model.Memory, error) {
		return mem.WithActive(false, now), nil
	})
	if err == nil {
		s.logger.Info("memory deactivated", "memory_id", id)
	}
	return err
}

// ReactivateMemory reverses DeactivateMemory.
func (s *Service) ReactivateMemory(ctx context.Context, id uuid.UUID) (err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "reactivate_memory", start, err) }()

	err = s.mutate(ctx, id, func(mem model.Memory, now time.Time) (model.Memory, error) {
		return mem.WithActive(true, now), nil
	})
	if err == nil {
		s.logger.Info("memory reactivated", "memory_id", id)
	}
	return err
}

// UpdateContent replaces the memory's content and recomputes its embedding.
func (s *Service) UpdateContent(ctx context.Context, id uuid.UUID, content string) (_ model.Memory, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "update_content", start, err) }()

	if strings.TrimSpace(content) == "" {
		return model.Memory{}, fmt.Errorf("%w: memory %s content cannot be empty", model.ErrInvalidData, id)
	}

	embedding, err := s.embedFor(ctx, content)
	if err != nil {
		return model.Memory{}, err
	}

	var updated model.Memory
	err = s.mutate(ctx, id, func(mem model.Memory, now time.Time) (model.Memory, error) {
		updated = mem.WithContent(content, embedding, now)
		return updated, updated.ValidateEmbedding(s.embedder.Dimensions())
	})
	if err != nil {
		return model.Memory{}, err
	}
	return updated, nil
}

// mutate applies fn to the stored memory and saves the result, holding the
// service lock for the whole read-modify-write.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(model.Memory, time.Time) (model.Memory, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mem, ok, err := s.store.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch memory %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("memory %s: %w", id, store.ErrNotFound)
	}

	updated, err := fn(mem, s.now())
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, updated); err != nil {
		return fmt.Errorf("save memory %s: %w", id, err)
	}
	return nil
}

// embedFor returns an embedding for content when it is long enough, or nil.
func (s *Service) embedFor(ctx context.Context, content string) ([]float32, error) {
	if utf8.RuneCountInString(content) < s.minContentLength {
		return nil, nil
	}

	vec, err := s.embedder.EmbedOne(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed memory content: %w", err)
	}
	return vec, nil
}

func (s *Service) refreshCount(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetStorageCount(ctx, storageType, int64(n))
	}
}

// Search returns the user's active memories whose content contains query,
// ignoring case. Results are not ranked beyond recency.
func (s *Service) Search(ctx context.Context, query string, userID uuid.UUID) (_ []model.Memory, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "search", start, err) }()

	results, err := s.store.Query(ctx, model.MemoryQuery{UserID: &userID, Search: query})
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}
	s.logger.Debug("memory search", "user_id", userID, "results", len(results))
	return results, nil
}

// SemanticSearch ranks the user's active, embedded memories by cosine
// similarity to query. Only results scoring at least minSimilarity are
// kept, at most limit of them (limit <= 0 selects the service default).
// Equal scores keep recency order.
func (s *Service) SemanticSearch(ctx context.Context, query string, userID uuid.UUID, limit int, minSimilarity float64) (_ []SearchResult, err error) {
	start := time.Now()
	defer func() { metrics.Observe(ctx, s.metrics, "semantic_search", start, err) }()

	if limit <= 0 {
		limit = s.searchLimit
	}

	embedStart := time.Now()
	queryVec, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	s.metrics.RecordStage(ctx, "semantic_search", "embed", time.Since(embedStart))

	memories, err := s.store.FetchActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch active memories: %w", err)
	}

	results := make([]SearchResult, 0, len(memories))
	for _, mem := range memories {
		if mem.Embedding == nil {
			continue
		}
		score := embeddings.CosineSimilarity(queryVec, mem.Embedding)
		if score >= minSimilarity {
			results = append(results, SearchResult{Memory: mem, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit < len(results) {
		results = results[:limit]
	}

	s.logger.Debug("semantic search",
		"user_id", userID,
		"candidates", len(memories),
		"results", len(results),
	)
	return results, nil
}

// Query runs a memory query against the store.
func (s *Service) Query(ctx context.Context, q model.MemoryQuery) ([]model.Memory, error) {
	results, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	return results, nil
}

// GetMemories returns every memory of the user, active or not, most
// recently updated first. The result comes from a single store snapshot.
func (s *Service) GetMemories(ctx context.Context, userID uuid.UUID) ([]model.Memory, error) {
	results, err := s.store.FetchByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch memories for user %s: %w", userID, err)
	}
	return results, nil
}

// GetActiveMemories returns the user's active memories.
func (s *Service) GetActiveMemories(ctx context.Context, userID uuid.UUID) ([]model.Memory, error) {
	results, err := s.store.FetchActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch active memories for user %s: %w", userID, err)
	}
	return results, nil
}

// GetMemoriesByCategory returns the user's active memories in category.
func (s *Service) GetMemoriesByCategory(ctx context.Context, category model.MemoryCategory, userID uuid.UUID) ([]model.Memory, error) {
	return s.Query(ctx, model.MemoryQuery{UserID: &userID, Category: &category})
}

// GetMemoriesByType returns the user's active memories of type t.
func (s *Service) GetMemoriesByType(ctx context.Context, t model.MemoryType, userID uuid.UUID) ([]model.Memory, error) {
	return s.Query(ctx, model.MemoryQuery{UserID: &userID, MemoryType: &t})
}

package embeddings

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// DefaultCacheSize is the number of embeddings a CachedClient keeps.
const DefaultCacheSize = 4096

// CachedClient wraps a Client and memoizes embeddings per input text.
// Admission into the cache is asynchronous and best-effort: a miss simply
// falls through to the underlying client.
type CachedClient struct {
	underlying Client
	cache      *ristretto.Cache
}

// Compile-time interface check
var _ Client = (*CachedClient)(nil)

// NewCachedClient wraps underlying with a cache holding up to size vectors.
func NewCachedClient(underlying Client, size int) (*CachedClient, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,
		// Every entry costs 1, so MaxCost counts vectors rather than bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &CachedClient{
		underlying: underlying,
		cache:      cache,
	}, nil
}

// Embed returns cached vectors where available and embeds the rest in one
// batch through the underlying client.
func (c *CachedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if vec, ok := c.lookup(text); ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.underlying.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedding client returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	for j, vec := range fresh {
		c.store(missTexts[j], vec)
		out[missIdx[j]] = vec
	}
	return out, nil
}

// EmbedOne returns the cached vector for text or computes it.
func (c *CachedClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.lookup(text); ok {
		return vec, nil
	}

	vec, err := c.underlying.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(text, vec)
	return vec, nil
}

// Dimensions returns the underlying client's width.
func (c *CachedClient) Dimensions() int {
	return c.underlying.Dimensions()
}

// Wait blocks until pending cache writes are applied.
func (c *CachedClient) Wait() {
	c.cache.Wait()
}

// Close releases the cache's background goroutines.
func (c *CachedClient) Close() {
	c.cache.Close()
}

func (c *CachedClient) lookup(text string) ([]float32, bool) {
	v, ok := c.cache.Get(text)
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	if !ok {
		return nil, false
	}
	return copyVector(vec), true
}

func (c *CachedClient) store(text string, vec []float32) {
	c.cache.Set(text, copyVector(vec), 1)
}

func copyVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}

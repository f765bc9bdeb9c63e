package embeddings

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultDimensions is the width of HashEmbedder vectors.
const DefaultDimensions = 256

// HashEmbedder is a bag-of-words embedder that needs no model.
// Each lowercased token is hashed into one of a fixed number of buckets;
// the bucket counts are then L2-normalized. Texts sharing words get a
// positive cosine similarity, texts sharing none score (close to) zero.
type HashEmbedder struct {
	dimensions int
}

// NewHashEmbedder creates a hash embedder producing vectors of the given
// width. A width <= 0 selects DefaultDimensions.
func NewHashEmbedder(dimensions int) *HashEmbedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &HashEmbedder{dimensions: dimensions}
}

// Embed generates embeddings for multiple texts.
func (h *HashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = h.embed(text)
	}
	return out, nil
}

// EmbedOne generates an embedding for a single text.
func (h *HashEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return h.embed(text), nil
}

// Dimensions returns the embedding size.
func (h *HashEmbedder) Dimensions() int {
	return h.dimensions
}

func (h *HashEmbedder) embed(text string) []float32 {
	vec := make([]float32, h.dimensions)
	for _, token := range Tokenize(text) {
		idx := xxhash.Sum64String(token) % uint64(h.dimensions)
		vec[idx] += 1.0
	}
	return normalize(vec)
}

// Tokenize lowercases text and splits it on every rune that is neither a
// letter nor a digit. Empty tokens are dropped.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// normalize scales vec to unit length in place.
// A zero vector is returned unchanged.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}

	norm := math.Sqrt(sum)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}

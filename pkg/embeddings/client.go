// Package embeddings turns text into fixed-width vectors for similarity
// ranking. The Client interface is the substitution point for a real
// embedding model; HashEmbedder is the deterministic local default.
package embeddings

import "context"

// Client defines the interface for generating text embeddings.
// Every vector a Client returns has exactly Dimensions() components.
type Client interface {
	// Embed generates embeddings for multiple texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedOne generates an embedding for a single text.
	EmbedOne(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector width.
	Dimensions() int
}

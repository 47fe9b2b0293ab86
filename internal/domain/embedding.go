package domain

import "context"

// KeyPrefix namespaces every Redis key written by this service.
const KeyPrefix = "moavec:"

// Embedder is the shared text vectorization contract between layers.
// Implementations return unit vectors (L2 norm 1) of a fixed dimension.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
	// Dimensions returns the fixed output dimension of this embedder.
	Dimensions() int
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the
// decorator chain. Tokens is 0 on cache hits.
type EmbeddingResult struct {
	Embedding []float32
	Tokens    int
	Truncated bool
}

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/muheun/moaspace-sub000/internal/domain"
	"github.com/muheun/moaspace-sub000/internal/metrics"
)

// DefaultCacheSize is the default number of embeddings kept in memory.
// At 384 dimensions * 4 bytes * 4096 entries this is about 6MB.
const DefaultCacheSize = 4096

// CachedEmbedder wraps an Embedder with in-process LRU caching. Repeated
// queries (the search hot path) skip inference entirely.
type CachedEmbedder struct {
	inner domain.Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder creates a caching decorator around inner.
func NewCachedEmbedder(inner domain.Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Dimensions implements domain.Embedder.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// Embed returns a cached vector or delegates to the inner embedder.
// Cache hits report zero tokens: no inference ran.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := cacheKey(text)

	if vec, ok := c.cache.Get(key); ok {
		metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	c.cache.Add(key, result.Embedding)
	return result, nil
}

func cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

package search

import (
	"context"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// ChunkSearcher runs scoped KNN queries over stored chunks.
type ChunkSearcher interface {
	TopK(ctx context.Context, namespace, entity, fieldName string, vector []float32, k int) ([]domain.ChunkHit, error)
}

// ConfigReader serves the enabled vector configs for one (namespace, entityType) pair.
type ConfigReader interface {
	ListEnabled(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error)
}

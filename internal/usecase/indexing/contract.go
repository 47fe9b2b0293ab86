package indexing

import (
	"context"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// ChunkRepository defines the chunk storage contract for the pipeline.
type ChunkRepository interface {
	WriteBatch(ctx context.Context, chunks []domain.Chunk) error
	DeleteByRecord(ctx context.Context, namespace, entity, recordKey string) (int, error)
	DeleteByField(ctx context.Context, namespace, entity, recordKey, fieldName string) (int, error)
}

// ConfigReader serves the enabled vector configs for one (namespace, entityType) pair.
type ConfigReader interface {
	ListEnabled(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error)
}

package vectorconfig

import (
	"context"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// Repository defines the storage contract for vector configs.
type Repository interface {
	Create(ctx context.Context, cfg domain.VectorConfig) error
	Save(ctx context.Context, cfg domain.VectorConfig) error
	Get(ctx context.Context, namespace, entityType, fieldName string) (domain.VectorConfig, error)
	Delete(ctx context.Context, namespace, entityType, fieldName string) error
	List(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error)
	ListEnabled(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error)
}

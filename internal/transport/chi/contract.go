package chi

import (
	"context"

	"github.com/muheun/moaspace-sub000/internal/domain"
	healthuc "github.com/muheun/moaspace-sub000/internal/usecase/health"
	indexinguc "github.com/muheun/moaspace-sub000/internal/usecase/indexing"
)

// ConfigService manages per-field vector configs.
type ConfigService interface {
	Create(ctx context.Context, namespace, entityType, fieldName string,
		weight, threshold float64, enabled bool) (domain.VectorConfig, error)
	Get(ctx context.Context, namespace, entityType, fieldName string) (domain.VectorConfig, error)
	Update(ctx context.Context, namespace, entityType, fieldName string,
		weight, threshold float64, enabled bool) (domain.VectorConfig, error)
	Delete(ctx context.Context, namespace, entityType, fieldName string) error
	List(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error)
}

// Indexer accepts record indexing work.
type Indexer interface {
	Index(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error)
	Reindex(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error)
	Delete(ctx context.Context, namespace, entity, recordKey string) (int, error)
}

// Searcher runs weighted multi-field similarity queries.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

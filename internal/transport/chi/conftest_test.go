package chi

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/muheun/moaspace-sub000/internal/domain"
	healthuc "github.com/muheun/moaspace-sub000/internal/usecase/health"
	indexinguc "github.com/muheun/moaspace-sub000/internal/usecase/indexing"
)

// --- Function-field mocks ---

type mockConfigService struct {
	createFunc func(ctx context.Context, namespace, entityType, fieldName string,
		weight, threshold float64, enabled bool) (domain.VectorConfig, error)
	getFunc func(ctx context.Context, namespace, entityType, fieldName string) (domain.VectorConfig, error)
	updateFunc func(ctx context.Context, namespace, entityType, fieldName string,
		weight, threshold float64, enabled bool) (domain.VectorConfig, error)
	deleteFunc func(ctx context.Context, namespace, entityType, fieldName string) error
	listFunc   func(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error)
}

func (m *mockConfigService) Create(ctx context.Context, namespace, entityType, fieldName string,
	weight, threshold float64, enabled bool) (domain.VectorConfig, error) {
	return m.createFunc(ctx, namespace, entityType, fieldName, weight, threshold, enabled)
}

func (m *mockConfigService) Get(ctx context.Context, namespace, entityType, fieldName string) (domain.VectorConfig, error) {
	return m.getFunc(ctx, namespace, entityType, fieldName)
}

func (m *mockConfigService) Update(ctx context.Context, namespace, entityType, fieldName string,
	weight, threshold float64, enabled bool) (domain.VectorConfig, error) {
	return m.updateFunc(ctx, namespace, entityType, fieldName, weight, threshold, enabled)
}

func (m *mockConfigService) Delete(ctx context.Context, namespace, entityType, fieldName string) error {
	return m.deleteFunc(ctx, namespace, entityType, fieldName)
}

func (m *mockConfigService) List(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error) {
	return m.listFunc(ctx, namespace, entityType)
}

type mockIndexer struct {
	indexFunc   func(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error)
	reindexFunc func(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error)
	deleteFunc  func(ctx context.Context, namespace, entity, recordKey string) (int, error)
}

func (m *mockIndexer) Index(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error) {
	return m.indexFunc(ctx, req)
}

func (m *mockIndexer) Reindex(ctx context.Context, req domain.IndexRequest) (*indexinguc.Handle, error) {
	return m.reindexFunc(ctx, req)
}

func (m *mockIndexer) Delete(ctx context.Context, namespace, entity, recordKey string) (int, error) {
	return m.deleteFunc(ctx, namespace, entity, recordKey)
}

type mockSearcher struct {
	searchFunc func(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error)
}

func (m *mockSearcher) Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResult, error) {
	return m.searchFunc(ctx, req)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

func newTestRouter(t *testing.T, configs ConfigService, indexer Indexer, search Searcher, health HealthService) http.Handler {
	t.Helper()
	if health == nil {
		health = &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK},
		}}
	}
	s := NewServer(configs, indexer, search, health, zap.NewNop())
	r := chi.NewRouter()
	s.Register(r)
	return r
}

func testConfig(t *testing.T) domain.VectorConfig {
	t.Helper()
	return domain.ReconstructVectorConfig(
		"moa-space", "post", "title",
		2.0, 0.6, true,
		1700000000000, 1700000000000,
	)
}

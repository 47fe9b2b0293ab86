// Package vectorconfig manages per-field vectorization configs and serves the
// enabled-config view consumed on every indexing and search operation.
package vectorconfig

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

// DefaultCacheSize bounds the number of (namespace, entityType) pairs whose
// enabled configs are kept in memory.
const DefaultCacheSize = 1024

// Service handles vector config CRUD. The enabled-config list is the hot read
// path, so it is cached per (namespace, entityType) and invalidated on every
// mutation of that pair.
type Service struct {
	repo  Repository
	cache *lru.Cache[string, []domain.VectorConfig]
}

// New creates a vector config service.
func New(repo Repository) (*Service, error) {
	cache, err := lru.New[string, []domain.VectorConfig](DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create config cache: %w", err)
	}
	return &Service{repo: repo, cache: cache}, nil
}

// Create validates and stores a new config.
func (s *Service) Create(
	ctx context.Context,
	namespace, entityType, fieldName string,
	weight, threshold float64, enabled bool,
) (domain.VectorConfig, error) {
	cfg, err := domain.NewVectorConfig(namespace, entityType, fieldName, weight, threshold, enabled)
	if err != nil {
		return domain.VectorConfig{}, err
	}

	if err := s.repo.Create(ctx, cfg); err != nil {
		return domain.VectorConfig{}, err
	}

	s.invalidate(namespace, entityType)
	return cfg, nil
}

// Get returns one config by key triple.
func (s *Service) Get(ctx context.Context, namespace, entityType, fieldName string) (domain.VectorConfig, error) {
	return s.repo.Get(ctx, namespace, entityType, fieldName)
}

// Update changes the tuning values of an existing config. The key triple is
// immutable.
func (s *Service) Update(
	ctx context.Context,
	namespace, entityType, fieldName string,
	weight, threshold float64, enabled bool,
) (domain.VectorConfig, error) {
	current, err := s.repo.Get(ctx, namespace, entityType, fieldName)
	if err != nil {
		return domain.VectorConfig{}, err
	}

	updated, err := current.Update(weight, threshold, enabled)
	if err != nil {
		return domain.VectorConfig{}, err
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return domain.VectorConfig{}, err
	}

	s.invalidate(namespace, entityType)
	return updated, nil
}

// Delete removes a config. Already-written chunks for the field stay in the
// index until the record is reindexed or deleted.
func (s *Service) Delete(ctx context.Context, namespace, entityType, fieldName string) error {
	if err := s.repo.Delete(ctx, namespace, entityType, fieldName); err != nil {
		return err
	}
	s.invalidate(namespace, entityType)
	return nil
}

// List returns every config for one (namespace, entityType) pair.
func (s *Service) List(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error) {
	return s.repo.List(ctx, namespace, entityType)
}

// ListEnabled returns the enabled configs for one (namespace, entityType)
// pair, served from cache when possible.
func (s *Service) ListEnabled(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error) {
	key := cacheKey(namespace, entityType)

	if configs, ok := s.cache.Get(key); ok {
		return configs, nil
	}

	configs, err := s.repo.ListEnabled(ctx, namespace, entityType)
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, configs)
	return configs, nil
}

func (s *Service) invalidate(namespace, entityType string) {
	s.cache.Remove(cacheKey(namespace, entityType))
}

func cacheKey(namespace, entityType string) string {
	return namespace + ":" + entityType
}

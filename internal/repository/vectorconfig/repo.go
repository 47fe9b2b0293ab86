// Package vectorconfig persists per-field vectorization configs as Redis
// hashes keyed by the (namespace, entityType, fieldName) triple.
package vectorconfig

import (
	"context"
	"fmt"
	"sort"

	"github.com/muheun/moaspace-sub000/internal/domain"
)

const cfgKeyPrefix = domain.KeyPrefix + "cfg:"

// store is the consumer interface for config persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements vector config storage.
type Repo struct {
	store store
}

// New creates a vector config repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new config. Fails with ErrConflict if the key triple is
// already configured.
func (r *Repo) Create(ctx context.Context, cfg domain.VectorConfig) error {
	key := cfgKey(cfg.Namespace(), cfg.EntityType(), cfg.FieldName())

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if exists {
		return fmt.Errorf("config %s/%s/%s already exists: %w",
			cfg.Namespace(), cfg.EntityType(), cfg.FieldName(), domain.ErrConflict)
	}

	return r.save(ctx, key, cfg)
}

// Save overwrites a config unconditionally.
func (r *Repo) Save(ctx context.Context, cfg domain.VectorConfig) error {
	return r.save(ctx, cfgKey(cfg.Namespace(), cfg.EntityType(), cfg.FieldName()), cfg)
}

func (r *Repo) save(ctx context.Context, key string, cfg domain.VectorConfig) error {
	if err := r.store.HSet(ctx, key, buildHashFields(cfg)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Get returns one config by key triple.
func (r *Repo) Get(ctx context.Context, namespace, entityType, fieldName string) (domain.VectorConfig, error) {
	key := cfgKey(namespace, entityType, fieldName)

	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.VectorConfig{}, fmt.Errorf("get %s: %w", key, err)
	}
	// HGETALL on a missing key returns an empty map, not an error.
	if len(m) == 0 {
		return domain.VectorConfig{}, fmt.Errorf("config %s/%s/%s: %w",
			namespace, entityType, fieldName, domain.ErrNotFound)
	}

	return parseConfig(m), nil
}

// Delete removes one config by key triple.
func (r *Repo) Delete(ctx context.Context, namespace, entityType, fieldName string) error {
	key := cfgKey(namespace, entityType, fieldName)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("config %s/%s/%s: %w",
			namespace, entityType, fieldName, domain.ErrNotFound)
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List returns every config for one (namespace, entityType) pair, ordered by
// field name for stable output.
func (r *Repo) List(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error) {
	pattern := fmt.Sprintf("%s%s:%s:*", cfgKeyPrefix, namespace, entityType)

	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load %d configs: %w", len(keys), err)
	}

	configs := make([]domain.VectorConfig, 0, len(maps))
	for _, m := range maps {
		// Deleted between SCAN and HGETALL.
		if len(m) == 0 {
			continue
		}
		configs = append(configs, parseConfig(m))
	}
	return configs, nil
}

// ListEnabled returns only the enabled configs for one (namespace, entityType)
// pair. The indexing pipeline and search engine consume this view.
func (r *Repo) ListEnabled(ctx context.Context, namespace, entityType string) ([]domain.VectorConfig, error) {
	all, err := r.List(ctx, namespace, entityType)
	if err != nil {
		return nil, err
	}

	enabled := all[:0]
	for _, cfg := range all {
		if cfg.Enabled() {
			enabled = append(enabled, cfg)
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}
	return enabled, nil
}

func cfgKey(namespace, entityType, fieldName string) string {
	return fmt.Sprintf("%s%s:%s:%s", cfgKeyPrefix, namespace, entityType, fieldName)
}
